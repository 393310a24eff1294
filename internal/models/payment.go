package models

import "time"

// PaymentStatus tracks a consultation payment
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusCanceled PaymentStatus = "canceled"
)

// Payment is a consultation payment linked to an application
type Payment struct {
	ID            int64         `json:"id"`
	ApplicationID int64         `json:"application_id"`
	AmountKopecks int64         `json:"amount_kopecks"`
	Status        PaymentStatus `json:"status"`
	PaymentURL    string        `json:"payment_url,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
