package models

// StaffRole is the role carried by a staff dashboard session
type StaffRole string

const (
	StaffRoleAdmin  StaffRole = "admin"
	StaffRoleLawyer StaffRole = "lawyer"
)

// IsValid reports whether the role grants dashboard access
func (r StaffRole) IsValid() bool {
	return r == StaffRoleAdmin || r == StaffRoleLawyer
}

// AdminSession is the authenticated staff session stored in request context
type AdminSession struct {
	StaffID   string    `json:"staff_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      StaffRole `json:"role"`
	ExpiresAt int64     `json:"expires_at"`
	IssuedAt  int64     `json:"issued_at"`
}

// AdminLoginRequest is the staff dashboard login body
type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AdminLoginResponse acknowledges a successful login; the session itself
// travels in an HTTP-only cookie
type AdminLoginResponse struct {
	Success bool          `json:"success"`
	Session *AdminSession `json:"session,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// UpdateApplicationStatusRequest is the staff status-change body
type UpdateApplicationStatusRequest struct {
	Status ApplicationStatus `json:"status" binding:"required"`
}
