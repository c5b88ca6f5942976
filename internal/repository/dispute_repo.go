package repository

import (
	"context"

	"github.com/roomstay/booking-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DisputeRepository interface {
	Create(ctx context.Context, tx *gorm.DB, dispute *models.Dispute) error
	FindByID(ctx context.Context, id uint) (*models.Dispute, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Dispute, error)
	FindOpenByBookingID(ctx context.Context, tx *gorm.DB, bookingID uint) (*models.Dispute, error)
	FindByStatus(ctx context.Context, status *models.DisputeStatus) ([]models.Dispute, error)
	Save(ctx context.Context, tx *gorm.DB, dispute *models.Dispute) error
	GetDB() *gorm.DB
}

type disputeRepository struct {
	db *gorm.DB
}

func NewDisputeRepository(db *gorm.DB) DisputeRepository {
	return &disputeRepository{db: db}
}

func (r *disputeRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *disputeRepository) Create(ctx context.Context, tx *gorm.DB, dispute *models.Dispute) error {
	return tx.WithContext(ctx).Create(dispute).Error
}

func (r *disputeRepository) FindByID(ctx context.Context, id uint) (*models.Dispute, error) {
	var dispute models.Dispute
	if err := r.db.WithContext(ctx).First(&dispute, id).Error; err != nil {
		return nil, err
	}
	return &dispute, nil
}

// FindByIDForUpdate locks the dispute row so resolution runs at most once;
// a concurrent resolver blocks here and then sees the resolved status.
func (r *disputeRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Dispute, error) {
	var dispute models.Dispute
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&dispute, id).Error; err != nil {
		return nil, err
	}
	return &dispute, nil
}

func (r *disputeRepository) FindOpenByBookingID(ctx context.Context, tx *gorm.DB, bookingID uint) (*models.Dispute, error) {
	var dispute models.Dispute
	err := tx.WithContext(ctx).
		Where("booking_id = ? AND status = ?", bookingID, models.DisputePending).
		First(&dispute).Error
	if err != nil {
		return nil, err
	}
	return &dispute, nil
}

func (r *disputeRepository) FindByStatus(ctx context.Context, status *models.DisputeStatus) ([]models.Dispute, error) {
	var disputes []models.Dispute
	q := r.db.WithContext(ctx)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	if err := q.Order("id ASC").Find(&disputes).Error; err != nil {
		return nil, err
	}
	return disputes, nil
}

func (r *disputeRepository) Save(ctx context.Context, tx *gorm.DB, dispute *models.Dispute) error {
	return tx.WithContext(ctx).
		Model(dispute).
		Select("status", "admin_decision_note", "refund_amount", "updated_at").
		Updates(dispute).Error
}
