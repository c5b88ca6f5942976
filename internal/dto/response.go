package dto

import (
	"time"

	"github.com/roomstay/booking-service/internal/models"
)

type BookingResponse struct {
	ID            uint                 `json:"id"`
	RoomID        uint                 `json:"room_id"`
	RenterID      string               `json:"renter_id"`
	MoveInDate    time.Time            `json:"move_in_date"`
	DepositAmount int64                `json:"deposit_amount"`
	TotalPrice    int64                `json:"total_price"`
	Status        models.BookingStatus `json:"status"`
	RejectReason  *string              `json:"reject_reason,omitempty"`
	CancelReason  *string              `json:"cancel_reason,omitempty"`
	RefundPending bool                 `json:"refund_pending"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

type DisputeResponse struct {
	ID                uint                 `json:"id"`
	BookingID         uint                 `json:"booking_id"`
	RenterID          string               `json:"renter_id"`
	Reason            string               `json:"reason"`
	EvidenceImages    []string             `json:"evidence_images,omitempty"`
	AdminDecisionNote string               `json:"admin_decision_note,omitempty"`
	RefundAmount      int64                `json:"refund_amount"`
	Status            models.DisputeStatus `json:"status"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

type TransactionResponse struct {
	ID         string                   `json:"id"`
	BookingID  uint                     `json:"booking_id"`
	Kind       models.TransactionKind   `json:"kind"`
	Amount     int64                    `json:"amount"`
	Status     models.TransactionStatus `json:"status"`
	GatewayRef string                   `json:"gateway_ref,omitempty"`
	CreatedAt  time.Time                `json:"created_at"`
}

// ErrorResponse is the wire shape for every failure: a machine-readable kind
// plus a human-readable message.
type ErrorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func ToBookingResponse(b *models.Booking) BookingResponse {
	return BookingResponse{
		ID:            b.ID,
		RoomID:        b.RoomID,
		RenterID:      b.RenterID,
		MoveInDate:    b.MoveInDate,
		DepositAmount: b.DepositAmount,
		TotalPrice:    b.TotalPrice,
		Status:        b.Status,
		RejectReason:  b.RejectReason,
		CancelReason:  b.CancelReason,
		RefundPending: b.RefundPending,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func ToDisputeResponse(d *models.Dispute) DisputeResponse {
	return DisputeResponse{
		ID:                d.ID,
		BookingID:         d.BookingID,
		RenterID:          d.RenterID,
		Reason:            d.Reason,
		EvidenceImages:    d.EvidenceImages,
		AdminDecisionNote: d.AdminDecisionNote,
		RefundAmount:      d.RefundAmount,
		Status:            d.Status,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

func ToTransactionResponse(t *models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:         t.ID,
		BookingID:  t.BookingID,
		Kind:       t.Kind,
		Amount:     t.Amount,
		Status:     t.Status,
		GatewayRef: t.GatewayRef,
		CreatedAt:  t.CreatedAt,
	}
}
