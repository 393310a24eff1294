package models

import "time"

// ApplicationStatus tracks an application through staff processing
type ApplicationStatus string

const (
	ApplicationStatusNew        ApplicationStatus = "new"
	ApplicationStatusInProgress ApplicationStatus = "in_progress"
	ApplicationStatusAwaiting   ApplicationStatus = "awaiting_client"
	ApplicationStatusDone       ApplicationStatus = "done"
	ApplicationStatusRejected   ApplicationStatus = "rejected"
)

// IsValid reports whether the status is one staff may set
func (s ApplicationStatus) IsValid() bool {
	switch s {
	case ApplicationStatusNew, ApplicationStatusInProgress, ApplicationStatusAwaiting,
		ApplicationStatusDone, ApplicationStatusRejected:
		return true
	}
	return false
}

// Application is a submitted intake application as stored in Postgres
type Application struct {
	ID            int64             `json:"id"`
	ClientID      int64             `json:"client_id"`
	CategoryID    int               `json:"category_id"`
	CategoryName  string            `json:"category_name"`
	Subcategory   string            `json:"subcategory,omitempty"`
	Description   string            `json:"description"`
	ContactMethod ContactMethod     `json:"contact_method"`
	ContactTime   ContactTime       `json:"contact_time"`
	Status        ApplicationStatus `json:"status"`
	StartParam    string            `json:"start_param,omitempty"`
	Files         []FileAttachment  `json:"files,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`

	// Denormalized client fields for the staff list view
	ClientName  string `json:"client_name,omitempty"`
	ClientPhone string `json:"client_phone,omitempty"`
	ClientEmail string `json:"client_email,omitempty"`
}

// NewApplication carries everything needed to persist one submission
type NewApplication struct {
	Client        *Client
	CategoryID    int
	CategoryName  string
	Subcategory   string
	Description   string
	ContactMethod ContactMethod
	ContactTime   ContactTime
	StartParam    string
	Files         []FileAttachment
}

// ApplicationFilter narrows staff application listings
type ApplicationFilter struct {
	Status     ApplicationStatus
	CategoryID int
	Limit      int
	Offset     int
}
