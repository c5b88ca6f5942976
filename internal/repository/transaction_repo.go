package repository

import (
	"context"

	"github.com/roomstay/booking-service/internal/models"
	"gorm.io/gorm"
)

type TransactionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, txn *models.Transaction) error
	FindByBookingID(ctx context.Context, bookingID uint) ([]models.Transaction, error)
	FindPendingRefunds(ctx context.Context) ([]models.Transaction, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id string, status models.TransactionStatus, gatewayRef string) error
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *gorm.DB, txn *models.Transaction) error {
	return tx.WithContext(ctx).Create(txn).Error
}

func (r *transactionRepository) FindByBookingID(ctx context.Context, bookingID uint) ([]models.Transaction, error) {
	var txns []models.Transaction
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

// FindPendingRefunds lists refund instructions that never reached the gateway,
// for operational follow-up after a host-side cancellation.
func (r *transactionRepository) FindPendingRefunds(ctx context.Context) ([]models.Transaction, error) {
	var txns []models.Transaction
	if err := r.db.WithContext(ctx).
		Where("kind = ? AND status = ?", models.TxnRefund, models.TxnPending).
		Order("created_at ASC").
		Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *transactionRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, id string, status models.TransactionStatus, gatewayRef string) error {
	updates := map[string]any{"status": status}
	if gatewayRef != "" {
		updates["gateway_ref"] = gatewayRef
	}
	return tx.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ?", id).
		Updates(updates).Error
}
