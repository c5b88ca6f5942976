package dto

import "time"

type CreateBookingRequest struct {
	RoomID        uint      `json:"room_id" validate:"required"`
	RenterID      string    `json:"renter_id" validate:"required"`
	MoveInDate    time.Time `json:"move_in_date" validate:"required"`
	DepositAmount int64     `json:"deposit_amount" validate:"gte=0"`
	TotalPrice    int64     `json:"total_price" validate:"gte=0,gtefield=DepositAmount"`
}

// UpdateBookingRequest patches a booking. Every field is independently
// optional. A status field is accepted but never written raw: the handler
// routes it through the state machine, with Reason feeding the transition's
// required reject/cancel reason.
type UpdateBookingRequest struct {
	ActorID       string     `json:"actor_id" validate:"required"`
	MoveInDate    *time.Time `json:"move_in_date,omitempty"`
	DepositAmount *int64     `json:"deposit_amount,omitempty"`
	TotalPrice    *int64     `json:"total_price,omitempty"`
	Status        *string    `json:"status,omitempty"`
	Reason        string     `json:"reason,omitempty"`
}

// HasFieldEdits reports whether the patch touches any lease-term field.
func (r UpdateBookingRequest) HasFieldEdits() bool {
	return r.MoveInDate != nil || r.DepositAmount != nil || r.TotalPrice != nil
}

// TransitionRequest drives one state-machine edge. Reason feeds reject_reason
// for a rejection and cancel_reason for a cancellation.
type TransitionRequest struct {
	ActorID string `json:"actor_id" validate:"required"`
	Status  string `json:"status" validate:"required"`
	Reason  string `json:"reason,omitempty"`
}

type OpenDisputeRequest struct {
	RenterID       string   `json:"renter_id" validate:"required"`
	Reason         string   `json:"reason" validate:"required"`
	EvidenceImages []string `json:"evidence_images,omitempty"`
}

type ResolveDisputeRequest struct {
	AdminID      string `json:"admin_id" validate:"required"`
	Status       string `json:"status" validate:"required"`
	Note         string `json:"note" validate:"required"`
	RefundAmount int64  `json:"refund_amount" validate:"gte=0"`
}
