package models

import "time"

// Event types published to the broker after a successful commit.
const (
	EventOrderCreated    = "order_created"
	EventOrderStatus     = "order_status_updated"
	EventPaymentReminder = "payment_reminder"
	EventOtpIssued       = "otp_issued"
)

type OrderEvent struct {
	Type     string      `json:"type"`
	OrderID  int64       `json:"order_id"`
	UserID   int64       `json:"user_id"`
	Status   OrderStatus `json:"status,omitempty"`
	Total    int64       `json:"total,omitempty"`
	Occurred time.Time   `json:"occurred"`
}

// OtpEvent carries the plaintext code to the email consumer. The code is
// never persisted in the clear; this message is the only place it travels.
type OtpEvent struct {
	Type     string     `json:"type"`
	Email    string     `json:"email"`
	Purpose  OtpPurpose `json:"purpose"`
	Code     string     `json:"code"`
	Occurred time.Time  `json:"occurred"`
}
