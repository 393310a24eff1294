package models

// SubmitRequest is the final submission body. It mirrors the draft the
// wizard built up; attachments staged earlier through the draft endpoints
// are merged in server-side, inline base64 files are accepted as well so
// a plain-browser client can submit in one call.
type SubmitRequest struct {
	CategoryID     int           `json:"category_id" binding:"required"`
	CategoryName   string        `json:"category_name"`
	Subcategory    string        `json:"subcategory"`
	Description    string        `json:"description" binding:"required"`
	Name           string        `json:"name" binding:"required"`
	Phone          string        `json:"phone" binding:"required"`
	Email          string        `json:"email"`
	ContactMethod  ContactMethod `json:"contact_method" binding:"required"`
	ContactTime    ContactTime   `json:"contact_time"`
	Files          []FileUpload  `json:"files"`
	TelegramUserID int64         `json:"telegram_user_id"`
	StartParam     string        `json:"start_param"`
	IdempotencyKey string        `json:"idempotency_key"`
}

// Draft converts the submission body back into the draft shape the
// validators operate on.
func (r *SubmitRequest) Draft() ApplicationDraft {
	categoryID := r.CategoryID
	contactTime := r.ContactTime
	if contactTime == "" {
		contactTime = ContactTimeAny
	}
	return ApplicationDraft{
		CategoryID:     &categoryID,
		CategoryName:   r.CategoryName,
		Subcategory:    r.Subcategory,
		Description:    r.Description,
		Name:           r.Name,
		Phone:          r.Phone,
		Email:          r.Email,
		ContactMethod:  r.ContactMethod,
		ContactTime:    contactTime,
		TelegramUserID: r.TelegramUserID,
		StartParam:     r.StartParam,
	}
}

// SubmitResponse is returned from POST /submit. Status is "ok" on success;
// otherwise Error carries a user-facing message and the draft snapshot is
// left intact so the client can retry.
type SubmitResponse struct {
	Status        string `json:"status"`
	ApplicationID int64  `json:"application_id,omitempty"`
	PaymentURL    string `json:"payment_url,omitempty"`
	Error         string `json:"error,omitempty"`
}

// NotifyClientRequest triggers the best-effort secondary notification
type NotifyClientRequest struct {
	ApplicationID int64  `json:"application_id" binding:"required"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Message       string `json:"message"`
}

// NotifyClientResponse acknowledges the notification attempt
type NotifyClientResponse struct {
	Success bool `json:"success"`
}
