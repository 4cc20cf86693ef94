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

// GormPaymentRecordRepository implements payment.PaymentRecordRepository using GORM.
// A payment and its allocation rows are persisted together as one aggregate:
// saves replace the allocation set wholesale.
type GormPaymentRecordRepository struct {
	db *gorm.DB
}

// NewGormPaymentRecordRepository creates a new GormPaymentRecordRepository
func NewGormPaymentRecordRepository(db *gorm.DB) *GormPaymentRecordRepository {
	return &GormPaymentRecordRepository{db: db}
}

// FindByID finds a payment record with its allocations
func (r *GormPaymentRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.PaymentRecord, error) {
	var model models.PaymentRecordModel
	if err := r.db.WithContext(ctx).
		Preload("Allocations", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("NOT_FOUND", "payment not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListByCustomer lists payments for a customer, newest first
func (r *GormPaymentRecordRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*payment.PaymentRecord, error) {
	var paymentModels []models.PaymentRecordModel
	if err := r.db.WithContext(ctx).
		Preload("Allocations", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Where("customer_id = ?", customerID).
		Order("payment_date DESC, created_at DESC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	payments := make([]*payment.PaymentRecord, len(paymentModels))
	for i := range paymentModels {
		payments[i] = paymentModels[i].ToDomain()
	}
	return payments, nil
}

// Save creates or updates a payment record and replaces its allocation rows
func (r *GormPaymentRecordRepository) Save(ctx context.Context, p *payment.PaymentRecord) error {
	var model models.PaymentRecordModel
	model.FromDomain(p)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Allocations").Save(&model).Error; err != nil {
			return err
		}
		return r.replaceAllocations(tx, &model)
	})
}

// SaveWithLock saves with an optimistic version check
func (r *GormPaymentRecordRepository) SaveWithLock(ctx context.Context, p *payment.PaymentRecord, expectedVersion int) error {
	var model models.PaymentRecordModel
	model.FromDomain(p)
	model.Version = expectedVersion + 1

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.
			Model(&models.PaymentRecordModel{}).
			Where("id = ? AND version = ?", p.ID, expectedVersion).
			Select("*").
			Omit("id", "created_at", "Allocations", "deleted_at").
			Updates(&model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		if err := r.replaceAllocations(tx, &model); err != nil {
			return err
		}
		p.IncrementVersion()
		return nil
	})
}

// Delete soft deletes a payment record, stamping the deletion reason for
// audit, and removes its allocation rows.
func (r *GormPaymentRecordRepository) Delete(ctx context.Context, p *payment.PaymentRecord, reason string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PaymentRecordModel{}).
			Where("id = ?", p.ID).
			Update("delete_reason", reason).Error; err != nil {
			return err
		}
		if err := tx.Where("payment_record_id = ?", p.ID).
			Delete(&models.PaymentAllocationModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.PaymentRecordModel{}, "id = ?", p.ID).Error
	})
}

func (r *GormPaymentRecordRepository) replaceAllocations(tx *gorm.DB, model *models.PaymentRecordModel) error {
	if err := tx.Where("payment_record_id = ?", model.ID).
		Delete(&models.PaymentAllocationModel{}).Error; err != nil {
		return err
	}
	if len(model.Allocations) == 0 {
		return nil
	}
	return tx.Create(&model.Allocations).Error
}

// Ensure GormPaymentRecordRepository implements payment.PaymentRecordRepository
var _ payment.PaymentRecordRepository = (*GormPaymentRecordRepository)(nil)
