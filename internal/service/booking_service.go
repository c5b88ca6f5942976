package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/roomstay/booking-service/internal/apperr"
	"github.com/roomstay/booking-service/internal/lifecycle"
	"github.com/roomstay/booking-service/internal/models"
	"github.com/roomstay/booking-service/internal/repository"
	"github.com/roomstay/booking-service/pkg/payment"
	"gorm.io/gorm"
)

// Notifier pushes a status-change event to the notification collaborator.
// Satisfied by rabbitmq.Publisher; nil-able in tests.
type Notifier interface {
	Publish(routingKey string, payload any) error
}

type CreateBookingParams struct {
	RoomID        uint
	RenterID      string
	MoveInDate    time.Time
	DepositAmount int64
	TotalPrice    int64
}

// UpdateBookingParams is a per-field-optional patch. Status is deliberately
// absent: status changes go through Transition, never a raw field write.
type UpdateBookingParams struct {
	MoveInDate    *time.Time
	DepositAmount *int64
	TotalPrice    *int64
}

type BookingService interface {
	CreateBooking(ctx context.Context, p CreateBookingParams) (*models.Booking, error)
	UpdateBooking(ctx context.Context, bookingID uint, actorID string, p UpdateBookingParams) (*models.Booking, error)
	Transition(ctx context.Context, bookingID uint, actorID string, target models.BookingStatus, reason string) (*models.Booking, error)
	GetBooking(ctx context.Context, id uint) (*models.Booking, error)
	ListByRoom(ctx context.Context, roomID uint, status *models.BookingStatus) ([]models.Booking, error)
	ListByRenter(ctx context.Context, renterID string) ([]models.Booking, error)
	RetryPendingRefunds(ctx context.Context) (int, error)
}

type bookingService struct {
	bookingRepo repository.BookingRepository
	roomRepo    repository.RoomRepository
	userRepo    repository.UserRepository
	txnRepo     repository.TransactionRepository
	gateway     payment.Gateway
	notifier    Notifier
	policy      lifecycle.Policy
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	roomRepo repository.RoomRepository,
	userRepo repository.UserRepository,
	txnRepo repository.TransactionRepository,
	gateway payment.Gateway,
	notifier Notifier,
	policy lifecycle.Policy,
) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		roomRepo:    roomRepo,
		userRepo:    userRepo,
		txnRepo:     txnRepo,
		gateway:     gateway,
		notifier:    notifier,
		policy:      policy,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, p CreateBookingParams) (*models.Booking, error) {
	if p.RenterID == "" {
		return nil, apperr.Validation("renter_id is required")
	}
	if p.MoveInDate.IsZero() {
		return nil, apperr.Validation("move_in_date is required")
	}
	if p.DepositAmount < 0 || p.TotalPrice < 0 {
		return nil, apperr.Validation("amounts must be non-negative")
	}
	if p.DepositAmount > p.TotalPrice {
		return nil, apperr.Validation("deposit_amount must not exceed total_price")
	}

	room, err := s.roomRepo.FindByID(ctx, p.RoomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("room %d not found", p.RoomID)
		}
		return nil, err
	}
	if !room.Active {
		return nil, apperr.Validation("room %d is not accepting bookings", p.RoomID)
	}

	booking := &models.Booking{
		RoomID:        p.RoomID,
		RenterID:      p.RenterID,
		MoveInDate:    p.MoveInDate,
		DepositAmount: p.DepositAmount,
		TotalPrice:    p.TotalPrice,
		Status:        models.StatusPending,
	}
	if err := s.bookingRepo.Create(ctx, s.bookingRepo.GetDB(), booking); err != nil {
		return nil, err
	}

	s.notify("booking.requested", booking, room.HostID)
	return booking, nil
}

// UpdateBooking patches the lease-term fields while the booking is still
// PENDING. Once the host has acted the money fields are immutable.
func (s *bookingService) UpdateBooking(ctx context.Context, bookingID uint, actorID string, p UpdateBookingParams) (*models.Booking, error) {
	var result *models.Booking

	err := s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := s.bookingRepo.FindByIDForUpdate(ctx, tx, bookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("booking %d not found", bookingID)
			}
			return err
		}
		if actorID != booking.RenterID {
			return apperr.Unauthorized("only the booking's renter may edit it")
		}
		if booking.Status != models.StatusPending {
			return apperr.InvalidState("booking %d is %s, fields are frozen", bookingID, booking.Status)
		}

		if p.MoveInDate != nil {
			booking.MoveInDate = *p.MoveInDate
		}
		if p.DepositAmount != nil {
			booking.DepositAmount = *p.DepositAmount
		}
		if p.TotalPrice != nil {
			booking.TotalPrice = *p.TotalPrice
		}
		if booking.DepositAmount < 0 || booking.TotalPrice < 0 {
			return apperr.Validation("amounts must be non-negative")
		}
		if booking.DepositAmount > booking.TotalPrice {
			return apperr.Validation("deposit_amount must not exceed total_price")
		}

		if err := s.bookingRepo.Save(ctx, tx, booking); err != nil {
			return err
		}
		result = booking
		return nil
	})

	return result, err
}

// Transition drives the booking state machine under a row lock. The guard
// checks, the payment call and the status write share one transaction: a
// failed capture rolls everything back, and the second of two concurrent
// transitions re-reads the committed status and fails its guard.
func (s *bookingService) Transition(ctx context.Context, bookingID uint, actorID string, target models.BookingStatus, reason string) (*models.Booking, error) {
	var (
		result    *models.Booking
		outcome   lifecycle.Outcome
		hostID    string
		failedTxn *models.Transaction
	)

	err := s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := s.bookingRepo.FindByIDForUpdate(ctx, tx, bookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("booking %d not found", bookingID)
			}
			return err
		}

		room, err := s.roomRepo.FindByID(ctx, booking.RoomID)
		if err != nil {
			return err
		}
		hostID = room.HostID

		role, err := resolveRole(booking, room, actorID)
		if err != nil {
			return err
		}

		outcome, err = s.policy.Apply(booking, role, target, reason)
		if err != nil {
			return err
		}

		if outcome.Payment != nil {
			txn := &models.Transaction{
				ID:        uuid.NewString(),
				BookingID: booking.ID,
				Kind:      txnKind(outcome.Payment.Op),
				Amount:    outcome.Payment.Amount,
				Status:    models.TxnPending,
			}
			instr := payment.Instruction{ID: txn.ID, BookingID: booking.ID, Amount: txn.Amount}

			switch outcome.Payment.Op {
			case lifecycle.OpCapture, lifecycle.OpFee:
				// Charge before commit: a gateway failure aborts the
				// transition and the booking keeps its current status.
				ref, err := s.gateway.Capture(ctx, instr)
				if err != nil {
					txn.Status = models.TxnFailed
					failedTxn = txn
					return apperr.Gateway(err, "deposit %s failed for booking %d", txn.Kind, booking.ID)
				}
				txn.Status = models.TxnCompleted
				txn.GatewayRef = ref
			case lifecycle.OpRefund:
				// The cancellation itself must stand even if the refund call
				// fails; the pending transaction marks it for follow-up.
				ref, err := s.gateway.Refund(ctx, instr)
				if err != nil {
					log.Printf("[BookingService] refund %s deferred for booking %d: %v", txn.ID, booking.ID, err)
					booking.RefundPending = true
				} else {
					txn.Status = models.TxnCompleted
					txn.GatewayRef = ref
				}
			}

			if err := s.txnRepo.Create(ctx, tx, txn); err != nil {
				return err
			}
		}

		if outcome.FlagHost {
			if err := s.userRepo.IncrementCancellationCount(ctx, tx, room.HostID); err != nil {
				return err
			}
		}

		if err := s.bookingRepo.Save(ctx, tx, booking); err != nil {
			return err
		}
		result = booking
		return nil
	})

	if err != nil {
		// Keep a ledger row for the failed capture attempt; the transition
		// transaction itself rolled back.
		if failedTxn != nil {
			if lerr := s.txnRepo.Create(ctx, s.bookingRepo.GetDB(), failedTxn); lerr != nil {
				log.Printf("[BookingService] failed to record %s attempt for booking %d: %v", failedTxn.Kind, bookingID, lerr)
			}
		}
		return nil, err
	}

	for _, n := range outcome.Notify {
		recipient := result.RenterID
		if n.Recipient == lifecycle.RoleHost {
			recipient = hostID
		}
		s.notify(n.Event, result, recipient)
	}

	return result, nil
}

// RetryPendingRefunds re-issues every refund that the gateway rejected at
// cancellation time. Each transaction keeps its original id, so a retry that
// races an earlier in-flight attempt lands on the same idempotency key.
// Returns the number of refunds that went through on this pass.
func (s *bookingService) RetryPendingRefunds(ctx context.Context) (int, error) {
	pending, err := s.txnRepo.FindPendingRefunds(ctx)
	if err != nil {
		return 0, err
	}

	completed := 0
	for _, txn := range pending {
		ref, err := s.gateway.Refund(ctx, payment.Instruction{ID: txn.ID, BookingID: txn.BookingID, Amount: txn.Amount})
		if err != nil {
			log.Printf("[BookingService] refund %s still failing for booking %d: %v", txn.ID, txn.BookingID, err)
			continue
		}

		err = s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := s.txnRepo.UpdateStatus(ctx, tx, txn.ID, models.TxnCompleted, ref); err != nil {
				return err
			}
			return s.bookingRepo.ClearRefundPending(ctx, tx, txn.BookingID)
		})
		if err != nil {
			return completed, err
		}
		completed++
	}
	return completed, nil
}

func (s *bookingService) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	booking, err := s.bookingRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("booking %d not found", id)
		}
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) ListByRoom(ctx context.Context, roomID uint, status *models.BookingStatus) ([]models.Booking, error) {
	return s.bookingRepo.FindByRoomID(ctx, roomID, status)
}

func (s *bookingService) ListByRenter(ctx context.Context, renterID string) ([]models.Booking, error) {
	return s.bookingRepo.FindByRenterID(ctx, renterID)
}

// resolveRole maps a caller id onto the booking's own parties. Being a host
// elsewhere on the platform grants nothing here.
func resolveRole(booking *models.Booking, room *models.Room, actorID string) (lifecycle.Role, error) {
	switch actorID {
	case "":
		return "", apperr.Validation("actor_id is required")
	case room.HostID:
		return lifecycle.RoleHost, nil
	case booking.RenterID:
		return lifecycle.RoleRenter, nil
	default:
		return "", apperr.Unauthorized("actor %s is neither the room's host nor the booking's renter", actorID)
	}
}

func txnKind(op lifecycle.PaymentOp) models.TransactionKind {
	switch op {
	case lifecycle.OpFee:
		return models.TxnFee
	case lifecycle.OpRefund:
		return models.TxnRefund
	default:
		return models.TxnCapture
	}
}

type statusEvent struct {
	BookingID   uint                 `json:"booking_id"`
	RoomID      uint                 `json:"room_id"`
	Status      models.BookingStatus `json:"status"`
	RecipientID string               `json:"recipient_id"`
}

func (s *bookingService) notify(event string, booking *models.Booking, recipientID string) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.Publish(event, statusEvent{
		BookingID:   booking.ID,
		RoomID:      booking.RoomID,
		Status:      booking.Status,
		RecipientID: recipientID,
	})
	if err != nil {
		log.Printf("[BookingService] notify %s for booking %d: %v", event, booking.ID, err)
	}
}
