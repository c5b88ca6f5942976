package service

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/roomstay/booking-service/internal/apperr"
	"github.com/roomstay/booking-service/internal/models"
	"github.com/roomstay/booking-service/internal/repository"
	"github.com/roomstay/booking-service/pkg/payment"
	"gorm.io/gorm"
)

type OpenDisputeParams struct {
	BookingID      uint
	RenterID       string
	Reason         string
	EvidenceImages []string
}

type ResolveDisputeParams struct {
	AdminID      string
	Decision     models.DisputeStatus
	Note         string
	RefundAmount int64
}

type DisputeService interface {
	OpenDispute(ctx context.Context, p OpenDisputeParams) (*models.Dispute, error)
	ResolveDispute(ctx context.Context, disputeID uint, p ResolveDisputeParams) (*models.Dispute, error)
	GetDispute(ctx context.Context, id uint) (*models.Dispute, error)
	ListDisputes(ctx context.Context, status *models.DisputeStatus) ([]models.Dispute, error)
}

type disputeService struct {
	disputeRepo repository.DisputeRepository
	bookingRepo repository.BookingRepository
	userRepo    repository.UserRepository
	txnRepo     repository.TransactionRepository
	gateway     payment.Gateway
	notifier    Notifier
}

func NewDisputeService(
	disputeRepo repository.DisputeRepository,
	bookingRepo repository.BookingRepository,
	userRepo repository.UserRepository,
	txnRepo repository.TransactionRepository,
	gateway payment.Gateway,
	notifier Notifier,
) DisputeService {
	return &disputeService{
		disputeRepo: disputeRepo,
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		txnRepo:     txnRepo,
		gateway:     gateway,
		notifier:    notifier,
	}
}

// OpenDispute lets a renter contest the deposit of their confirmed booking.
// Opening a dispute does not move the booking itself.
func (s *disputeService) OpenDispute(ctx context.Context, p OpenDisputeParams) (*models.Dispute, error) {
	if p.Reason == "" {
		return nil, apperr.Validation("reason is required")
	}

	var result *models.Dispute

	err := s.disputeRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := s.bookingRepo.FindByIDForUpdate(ctx, tx, p.BookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("booking %d not found", p.BookingID)
			}
			return err
		}
		if p.RenterID != booking.RenterID {
			return apperr.Unauthorized("only the booking's renter may open a dispute")
		}
		if booking.Status != models.StatusConfirmed {
			return apperr.InvalidState("booking %d is %s, only confirmed bookings can be disputed", p.BookingID, booking.Status)
		}

		_, err = s.disputeRepo.FindOpenByBookingID(ctx, tx, p.BookingID)
		if err == nil {
			return apperr.InvalidState("booking %d already has an open dispute", p.BookingID)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		dispute := &models.Dispute{
			BookingID:      p.BookingID,
			RenterID:       p.RenterID,
			Reason:         p.Reason,
			EvidenceImages: p.EvidenceImages,
			Status:         models.DisputePending,
		}
		if err := s.disputeRepo.Create(ctx, tx, dispute); err != nil {
			// Backstop for the partial unique index on open disputes.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.InvalidState("booking %d already has an open dispute", p.BookingID)
			}
			return err
		}
		result = dispute
		return nil
	})

	if err != nil {
		return nil, err
	}

	s.notifyDispute("dispute.opened", result)
	return result, nil
}

// ResolveDispute settles a dispute exactly once. The dispute row is locked for
// the duration, so a concurrent resolver blocks and then fails the
// already-resolved check; decisions are final. A refund outcome issues the
// gateway call before commit — a gateway failure aborts the resolution rather
// than leaving a decided-but-unrefunded dispute.
func (s *disputeService) ResolveDispute(ctx context.Context, disputeID uint, p ResolveDisputeParams) (*models.Dispute, error) {
	if p.Decision != models.DisputeResolvedRefund && p.Decision != models.DisputeResolvedDenied {
		return nil, apperr.Validation("decision must be %s or %s", models.DisputeResolvedRefund, models.DisputeResolvedDenied)
	}
	if p.Note == "" {
		return nil, apperr.Validation("admin decision note is required")
	}

	admin, err := s.userRepo.FindByID(ctx, p.AdminID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("dispute resolution requires an administrator")
		}
		return nil, err
	}
	if admin.Role != models.RoleAdmin {
		return nil, apperr.Unauthorized("dispute resolution requires an administrator")
	}

	var result *models.Dispute

	err = s.disputeRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dispute, err := s.disputeRepo.FindByIDForUpdate(ctx, tx, disputeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("dispute %d not found", disputeID)
			}
			return err
		}
		if dispute.Status.Resolved() {
			return apperr.InvalidState("dispute %d already resolved as %s", disputeID, dispute.Status)
		}

		booking, err := s.bookingRepo.FindByID(ctx, dispute.BookingID)
		if err != nil {
			return err
		}

		refund := int64(0)
		if p.Decision == models.DisputeResolvedRefund {
			if p.RefundAmount <= 0 {
				return apperr.Validation("refund_amount must be positive for %s", models.DisputeResolvedRefund)
			}
			if p.RefundAmount > booking.DepositAmount {
				return apperr.Validation("refund_amount %d exceeds captured deposit %d", p.RefundAmount, booking.DepositAmount)
			}
			refund = p.RefundAmount
		}
		// RESOLVED_DENIED forces refund to zero regardless of the request.

		if refund > 0 {
			txn := &models.Transaction{
				ID:        uuid.NewString(),
				BookingID: booking.ID,
				Kind:      models.TxnRefund,
				Amount:    refund,
				Status:    models.TxnPending,
			}
			ref, err := s.gateway.Refund(ctx, payment.Instruction{ID: txn.ID, BookingID: booking.ID, Amount: refund})
			if err != nil {
				return apperr.Gateway(err, "deposit refund failed for dispute %d", disputeID)
			}
			txn.Status = models.TxnCompleted
			txn.GatewayRef = ref
			if err := s.txnRepo.Create(ctx, tx, txn); err != nil {
				return err
			}
		}

		dispute.Status = p.Decision
		dispute.AdminDecisionNote = p.Note
		dispute.RefundAmount = refund
		if err := s.disputeRepo.Save(ctx, tx, dispute); err != nil {
			return err
		}
		result = dispute
		return nil
	})

	if err != nil {
		return nil, err
	}

	s.notifyDispute("dispute.resolved", result)
	return result, nil
}

func (s *disputeService) GetDispute(ctx context.Context, id uint) (*models.Dispute, error) {
	dispute, err := s.disputeRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("dispute %d not found", id)
		}
		return nil, err
	}
	return dispute, nil
}

func (s *disputeService) ListDisputes(ctx context.Context, status *models.DisputeStatus) ([]models.Dispute, error) {
	return s.disputeRepo.FindByStatus(ctx, status)
}

type disputeEvent struct {
	DisputeID    uint                 `json:"dispute_id"`
	BookingID    uint                 `json:"booking_id"`
	Status       models.DisputeStatus `json:"status"`
	RefundAmount int64                `json:"refund_amount"`
}

func (s *disputeService) notifyDispute(event string, d *models.Dispute) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.Publish(event, disputeEvent{
		DisputeID:    d.ID,
		BookingID:    d.BookingID,
		Status:       d.Status,
		RefundAmount: d.RefundAmount,
	})
	if err != nil {
		log.Printf("[DisputeService] notify %s for dispute %d: %v", event, d.ID, err)
	}
}
