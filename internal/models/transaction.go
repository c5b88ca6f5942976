package models

import "time"

type TransactionKind string

const (
	TxnCapture TransactionKind = "capture"
	TxnFee     TransactionKind = "fee"
	TxnRefund  TransactionKind = "refund"
)

type TransactionStatus string

const (
	TxnPending   TransactionStatus = "pending"
	TxnCompleted TransactionStatus = "completed"
	TxnFailed    TransactionStatus = "failed"
)

// Transaction records one capture or refund instruction issued to the payment
// gateway, keyed by a uuid that doubles as the gateway idempotency key. A refund
// row left in pending status marks a booking for operational follow-up.
type Transaction struct {
	ID         string            `gorm:"primaryKey;type:varchar(36)" json:"id"`
	BookingID  uint              `gorm:"not null;index" json:"booking_id"`
	Kind       TransactionKind   `gorm:"type:varchar(16);not null" json:"kind"`
	Amount     int64             `gorm:"not null" json:"amount"`
	Status     TransactionStatus `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	GatewayRef string            `json:"gateway_ref,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}
