package models

import "time"

// ContactMethod is the channel the client asked to be reached on
type ContactMethod string

const (
	ContactMethodTelegram ContactMethod = "telegram"
	ContactMethodPhone    ContactMethod = "phone"
	ContactMethodWhatsApp ContactMethod = "whatsapp"
	ContactMethodEmail    ContactMethod = "email"
)

// IsValid reports whether the value is one of the supported channels
func (m ContactMethod) IsValid() bool {
	switch m {
	case ContactMethodTelegram, ContactMethodPhone, ContactMethodWhatsApp, ContactMethodEmail:
		return true
	}
	return false
}

// ContactTime is the preferred call-back window
type ContactTime string

const (
	ContactTimeAny       ContactTime = "any"
	ContactTimeMorning   ContactTime = "morning"
	ContactTimeAfternoon ContactTime = "afternoon"
	ContactTimeEvening   ContactTime = "evening"
)

// IsValid reports whether the value is a supported call-back window
func (t ContactTime) IsValid() bool {
	switch t {
	case ContactTimeAny, ContactTimeMorning, ContactTimeAfternoon, ContactTimeEvening:
		return true
	}
	return false
}

// FileAttachment is a staged attachment. The raw bytes live in object
// storage; the draft snapshot only keeps metadata and the storage key.
type FileAttachment struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	SizeBytes  int64  `json:"size_bytes"`
	MimeType   string `json:"mime_type"`
	StorageKey string `json:"-"`
	URL        string `json:"url,omitempty"`
}

// FileUpload is an attachment as received from the Mini App: metadata plus
// base64-encoded content (optionally in data-URI form).
type FileUpload struct {
	Name     string `json:"name" binding:"required"`
	MimeType string `json:"mime_type" binding:"required"`
	Data     string `json:"data" binding:"required"`
}

// FileRejection reports why a single file from a selection was not staged.
// A rejection never affects sibling files.
type FileRejection struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// ApplicationDraft is the single mutable record the wizard builds up
type ApplicationDraft struct {
	CategoryID     *int             `json:"category_id"`
	CategoryName   string           `json:"category_name"`
	Subcategory    string           `json:"subcategory"`
	Description    string           `json:"description"`
	Name           string           `json:"name"`
	Phone          string           `json:"phone"`
	Email          string           `json:"email"`
	ContactMethod  ContactMethod    `json:"contact_method"`
	ContactTime    ContactTime      `json:"contact_time"`
	Files          []FileAttachment `json:"files"`
	TelegramUserID int64            `json:"telegram_user_id,omitempty"`
	StartParam     string           `json:"start_param,omitempty"`
}

// WizardState is a draft plus the wizard position, as persisted between visits
type WizardState struct {
	CurrentStep     int              `json:"current_step"`
	Draft           ApplicationDraft `json:"draft"`
	LastPersistedAt time.Time        `json:"last_persisted_at"`
}

// DraftResponse is returned by the draft endpoints: the state plus a flag
// telling the Mini App whether prior progress was restored, and the review
// summary used by the final confirmation screen.
type DraftResponse struct {
	Restored bool           `json:"restored"`
	State    *WizardState   `json:"state"`
	Review   *ReviewSummary `json:"review,omitempty"`
}

// ReviewSummary is the human-readable projection of a draft shown on the
// confirmation step. Presentation stays client-side; this is only the data.
type ReviewSummary struct {
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory,omitempty"`
	Description string   `json:"description"`
	Name        string   `json:"name"`
	Phone       string   `json:"phone"`
	Email       string   `json:"email,omitempty"`
	Contact     string   `json:"contact"`
	FileNames   []string `json:"file_names,omitempty"`
}

// StepError reports which field kept the wizard from advancing
type StepError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FileStageResult is returned after a file selection is processed: the
// updated state plus per-file rejections for anything that was not staged
type FileStageResult struct {
	State      *WizardState     `json:"state"`
	Accepted   []FileAttachment `json:"accepted"`
	Rejections []FileRejection  `json:"rejections,omitempty"`
}
