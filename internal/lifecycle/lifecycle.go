// Package lifecycle owns the booking state machine. Apply is the only code in
// the service that writes Booking.Status or its reason fields; callers persist
// the mutated booking and execute the returned side-effect instructions.
package lifecycle

import (
	"github.com/roomstay/booking-service/internal/apperr"
	"github.com/roomstay/booking-service/internal/models"
)

// Role identifies which party of a booking drives a transition. The service
// resolves a caller id to a role by matching the room's host and the booking's
// renter — role membership in general grants nothing.
type Role string

const (
	RoleHost   Role = "host"
	RoleRenter Role = "renter"
)

// PaymentOp is a money-moving instruction attached to a transition.
type PaymentOp string

const (
	OpCapture PaymentOp = "capture" // charge the full deposit
	OpFee     PaymentOp = "fee"     // charge a policy fee against the deposit
	OpRefund  PaymentOp = "refund"  // return (part of) the captured deposit
)

// Policy holds the cancellation money rules as basis points of the deposit.
// Defaults: no fee for a renter cancelling an approved booking, full refund
// when a host cancels a confirmed one.
type Policy struct {
	RenterCancelFeeBps  int
	HostCancelRefundBps int
}

func DefaultPolicy() Policy {
	return Policy{RenterCancelFeeBps: 0, HostCancelRefundBps: 10000}
}

// Notification tells the caller to inform the given party of the new status.
type Notification struct {
	Event     string
	Recipient Role
}

// PaymentInstruction tells the caller to move money via the payment gateway.
// Amount is already policy-resolved.
type PaymentInstruction struct {
	Op     PaymentOp
	Amount int64
}

// Outcome lists the side effects the caller must execute for a transition.
// Payment must be attempted before the transition commits; notifications go
// out after.
type Outcome struct {
	Notify   []Notification
	Payment  *PaymentInstruction
	FlagHost bool
}

type effect struct {
	notify    []Notification
	paymentOp PaymentOp // "" for none
	flagHost  bool
}

type transition struct {
	from        models.BookingStatus
	to          models.BookingStatus
	actor       Role
	needsReason bool
	effect      effect
}

var transitions = []transition{
	{
		from: models.StatusPending, to: models.StatusApproved, actor: RoleHost,
		effect: effect{notify: []Notification{{Event: "booking.approved", Recipient: RoleRenter}}},
	},
	{
		from: models.StatusPending, to: models.StatusRejected, actor: RoleHost, needsReason: true,
		effect: effect{notify: []Notification{{Event: "booking.rejected", Recipient: RoleRenter}}},
	},
	{
		from: models.StatusPending, to: models.StatusCancelledByRenter, actor: RoleRenter, needsReason: true,
		effect: effect{},
	},
	{
		from: models.StatusApproved, to: models.StatusConfirmed, actor: RoleRenter,
		effect: effect{
			notify:    []Notification{{Event: "booking.confirmed", Recipient: RoleHost}},
			paymentOp: OpCapture,
		},
	},
	{
		from: models.StatusApproved, to: models.StatusCancelledByRenter, actor: RoleRenter, needsReason: true,
		effect: effect{paymentOp: OpFee},
	},
	{
		from: models.StatusApproved, to: models.StatusCancelledByHost, actor: RoleHost, needsReason: true,
		effect: effect{
			notify:   []Notification{{Event: "booking.cancelled_by_host", Recipient: RoleRenter}},
			flagHost: true,
		},
	},
	{
		from: models.StatusConfirmed, to: models.StatusCancelledByHost, actor: RoleHost, needsReason: true,
		effect: effect{
			notify:    []Notification{{Event: "booking.cancelled_by_host", Recipient: RoleRenter}},
			paymentOp: OpRefund,
			flagHost:  true,
		},
	},
}

func lookup(from, to models.BookingStatus) (transition, bool) {
	for _, tr := range transitions {
		if tr.from == from && tr.to == to {
			return tr, true
		}
	}
	return transition{}, false
}

// CanTransition reports whether any actor may move a booking from one status
// to another. Used by read paths that want to render available actions.
func CanTransition(from, to models.BookingStatus) bool {
	_, ok := lookup(from, to)
	return ok
}

// Apply validates the requested transition against the table and, on success,
// mutates the booking in place and returns the side effects to execute. On any
// error the booking is untouched: the actor and reason checks run before the
// first field write, so a rejected request leaves no partial state.
func (p Policy) Apply(b *models.Booking, actor Role, target models.BookingStatus, reason string) (Outcome, error) {
	tr, ok := lookup(b.Status, target)
	if !ok {
		return Outcome{}, apperr.InvalidTransition("no transition %s -> %s", b.Status, target)
	}
	if tr.actor != actor {
		return Outcome{}, apperr.Unauthorized("transition %s -> %s requires the booking's %s", b.Status, target, tr.actor)
	}
	if tr.needsReason && reason == "" {
		field := "cancel_reason"
		if target == models.StatusRejected {
			field = "reject_reason"
		}
		return Outcome{}, apperr.Validation("%s is required for %s", field, target)
	}

	out := Outcome{Notify: tr.effect.notify, FlagHost: tr.effect.flagHost}
	if instr := p.instruction(tr.effect.paymentOp, b.DepositAmount); instr != nil {
		out.Payment = instr
	}

	b.Status = target
	b.RejectReason = nil
	b.CancelReason = nil
	switch {
	case target == models.StatusRejected:
		b.RejectReason = &reason
	case target.Cancelled():
		b.CancelReason = &reason
	}

	return out, nil
}

func (p Policy) instruction(op PaymentOp, deposit int64) *PaymentInstruction {
	switch op {
	case OpCapture:
		return &PaymentInstruction{Op: OpCapture, Amount: deposit}
	case OpFee:
		fee := deposit * int64(p.RenterCancelFeeBps) / 10000
		if fee <= 0 {
			return nil
		}
		return &PaymentInstruction{Op: OpFee, Amount: fee}
	case OpRefund:
		refund := deposit * int64(p.HostCancelRefundBps) / 10000
		if refund <= 0 {
			return nil
		}
		return &PaymentInstruction{Op: OpRefund, Amount: refund}
	}
	return nil
}
