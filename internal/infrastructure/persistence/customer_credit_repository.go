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

// GormCustomerCreditRepository implements payment.CustomerCreditRepository using GORM
type GormCustomerCreditRepository struct {
	db *gorm.DB
}

// NewGormCustomerCreditRepository creates a new GormCustomerCreditRepository
func NewGormCustomerCreditRepository(db *gorm.DB) *GormCustomerCreditRepository {
	return &GormCustomerCreditRepository{db: db}
}

// FindByID finds a customer credit by ID
func (r *GormCustomerCreditRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.CustomerCredit, error) {
	var model models.CustomerCreditModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("NOT_FOUND", "credit not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListAvailableByCustomer lists available credits oldest first, the order in
// which the allocator draws them down.
func (r *GormCustomerCreditRepository) ListAvailableByCustomer(ctx context.Context, customerID uuid.UUID) ([]*payment.CustomerCredit, error) {
	var creditModels []models.CustomerCreditModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ? AND status = ? AND current_balance > 0", customerID, payment.CreditStatusAvailable).
		Order("created_at ASC, id ASC").
		Find(&creditModels).Error; err != nil {
		return nil, err
	}
	return toDomainCredits(creditModels), nil
}

// ListByCustomer lists all credits for a customer, oldest first
func (r *GormCustomerCreditRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*payment.CustomerCredit, error) {
	var creditModels []models.CustomerCreditModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at ASC, id ASC").
		Find(&creditModels).Error; err != nil {
		return nil, err
	}
	return toDomainCredits(creditModels), nil
}

// FindBySourcePayment finds the credit produced by a payment's excess
func (r *GormCustomerCreditRepository) FindBySourcePayment(ctx context.Context, paymentID uuid.UUID) (*payment.CustomerCredit, error) {
	var model models.CustomerCreditModel
	if err := r.db.WithContext(ctx).
		First(&model, "source_payment_id = ?", paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("NOT_FOUND", "credit not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a customer credit
func (r *GormCustomerCreditRepository) Save(ctx context.Context, c *payment.CustomerCredit) error {
	var model models.CustomerCreditModel
	model.FromDomain(c)
	return r.db.WithContext(ctx).Save(&model).Error
}

// SaveWithLock saves with an optimistic version check
func (r *GormCustomerCreditRepository) SaveWithLock(ctx context.Context, c *payment.CustomerCredit, expectedVersion int) error {
	var model models.CustomerCreditModel
	model.FromDomain(c)
	model.Version = expectedVersion + 1

	result := r.db.WithContext(ctx).
		Model(&models.CustomerCreditModel{}).
		Where("id = ? AND version = ?", c.ID, expectedVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	c.IncrementVersion()
	return nil
}

// Delete removes a customer credit
func (r *GormCustomerCreditRepository) Delete(ctx context.Context, c *payment.CustomerCredit) error {
	return r.db.WithContext(ctx).Delete(&models.CustomerCreditModel{}, "id = ?", c.ID).Error
}

func toDomainCredits(creditModels []models.CustomerCreditModel) []*payment.CustomerCredit {
	credits := make([]*payment.CustomerCredit, len(creditModels))
	for i := range creditModels {
		credits[i] = creditModels[i].ToDomain()
	}
	return credits
}

// Ensure GormCustomerCreditRepository implements payment.CustomerCreditRepository
var _ payment.CustomerCreditRepository = (*GormCustomerCreditRepository)(nil)
