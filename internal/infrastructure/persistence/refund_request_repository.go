package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tiffin/backend/internal/domain/payment"
	"github.com/tiffin/backend/internal/domain/shared"
	"github.com/tiffin/backend/internal/infrastructure/persistence/models"
)

// GormRefundRequestRepository implements payment.RefundRequestRepository using GORM
type GormRefundRequestRepository struct {
	db *gorm.DB
}

// NewGormRefundRequestRepository creates a new GormRefundRequestRepository
func NewGormRefundRequestRepository(db *gorm.DB) *GormRefundRequestRepository {
	return &GormRefundRequestRepository{db: db}
}

// FindByID finds a refund request by ID
func (r *GormRefundRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.RefundRequest, error) {
	var model models.RefundRequestModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("NOT_FOUND", "refund request not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListByCustomer lists refund requests for a customer, newest first
func (r *GormRefundRequestRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*payment.RefundRequest, error) {
	var refundModels []models.RefundRequestModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&refundModels).Error; err != nil {
		return nil, err
	}
	refunds := make([]*payment.RefundRequest, len(refundModels))
	for i := range refundModels {
		refunds[i] = refundModels[i].ToDomain()
	}
	return refunds, nil
}

// Save creates or updates a refund request
func (r *GormRefundRequestRepository) Save(ctx context.Context, rr *payment.RefundRequest) error {
	var model models.RefundRequestModel
	model.FromDomain(rr)
	return r.db.WithContext(ctx).Save(&model).Error
}

// SaveWithLock saves with an optimistic version check
func (r *GormRefundRequestRepository) SaveWithLock(ctx context.Context, rr *payment.RefundRequest, expectedVersion int) error {
	var model models.RefundRequestModel
	model.FromDomain(rr)
	model.Version = expectedVersion + 1

	result := r.db.WithContext(ctx).
		Model(&models.RefundRequestModel{}).
		Where("id = ? AND version = ?", rr.ID, expectedVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	rr.IncrementVersion()
	return nil
}

// Ensure GormRefundRequestRepository implements payment.RefundRequestRepository
var _ payment.RefundRequestRepository = (*GormRefundRequestRepository)(nil)
