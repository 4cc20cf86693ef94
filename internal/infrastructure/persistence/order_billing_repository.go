package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tiffin/backend/internal/domain/billing"
	"github.com/tiffin/backend/internal/domain/shared"
	"github.com/tiffin/backend/internal/domain/shared/valueobject"
	"github.com/tiffin/backend/internal/infrastructure/persistence/models"
)

// GormOrderBillingRepository implements billing.OrderBillingRepository using GORM
type GormOrderBillingRepository struct {
	db *gorm.DB
}

// NewGormOrderBillingRepository creates a new GormOrderBillingRepository
func NewGormOrderBillingRepository(db *gorm.DB) *GormOrderBillingRepository {
	return &GormOrderBillingRepository{db: db}
}

// FindByID finds an order billing by ID
func (r *GormOrderBillingRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.OrderBilling, error) {
	var model models.OrderBillingModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("NOT_FOUND", "order billing not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrderAndMonth finds the billing snapshot for an order and month
func (r *GormOrderBillingRepository) FindByOrderAndMonth(ctx context.Context, orderID uuid.UUID, month valueobject.BillingMonth) (*billing.OrderBilling, error) {
	var model models.OrderBillingModel
	if err := r.db.WithContext(ctx).
		First(&model, "order_id = ? AND billing_month = ?", orderID, month).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("NOT_FOUND", "order billing not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListByCustomerAndMonth lists billing snapshots for a customer and month
func (r *GormOrderBillingRepository) ListByCustomerAndMonth(ctx context.Context, customerID uuid.UUID, month valueobject.BillingMonth) ([]*billing.OrderBilling, error) {
	var billingModels []models.OrderBillingModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ? AND billing_month = ?", customerID, month).
		Order("created_at ASC").
		Find(&billingModels).Error; err != nil {
		return nil, err
	}
	billings := make([]*billing.OrderBilling, len(billingModels))
	for i := range billingModels {
		billings[i] = billingModels[i].ToDomain()
	}
	return billings, nil
}

// Save creates or updates an order billing
func (r *GormOrderBillingRepository) Save(ctx context.Context, ob *billing.OrderBilling) error {
	var model models.OrderBillingModel
	model.FromDomain(ob)
	return r.db.WithContext(ctx).Save(&model).Error
}

// SaveWithLock saves with an optimistic version check. The stored row must
// still carry expectedVersion or the save is rejected with a conflict.
func (r *GormOrderBillingRepository) SaveWithLock(ctx context.Context, ob *billing.OrderBilling, expectedVersion int) error {
	var model models.OrderBillingModel
	model.FromDomain(ob)
	model.Version = expectedVersion + 1

	result := r.db.WithContext(ctx).
		Model(&models.OrderBillingModel{}).
		Where("id = ? AND version = ?", ob.ID, expectedVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	ob.IncrementVersion()
	return nil
}

// Ensure GormOrderBillingRepository implements billing.OrderBillingRepository
var _ billing.OrderBillingRepository = (*GormOrderBillingRepository)(nil)
