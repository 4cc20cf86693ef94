package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tiffin/backend/internal/domain/billing"
	"github.com/tiffin/backend/internal/domain/shared"
	"github.com/tiffin/backend/internal/infrastructure/persistence/models"
)

// GormOrderRepository implements billing.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("NOT_FOUND", "order not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListActiveByCustomer lists active orders for a customer
func (r *GormOrderRepository) ListActiveByCustomer(ctx context.Context, customerID uuid.UUID) ([]*billing.Order, error) {
	var orderModels []models.OrderModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ? AND active = ?", customerID, true).
		Order("created_at ASC").
		Find(&orderModels).Error; err != nil {
		return nil, err
	}
	orders := make([]*billing.Order, len(orderModels))
	for i := range orderModels {
		orders[i] = orderModels[i].ToDomain()
	}
	return orders, nil
}

// Save creates or updates an order
func (r *GormOrderRepository) Save(ctx context.Context, order *billing.Order) error {
	var model models.OrderModel
	model.FromDomain(order)
	return r.db.WithContext(ctx).Save(&model).Error
}

// Ensure GormOrderRepository implements billing.OrderRepository
var _ billing.OrderRepository = (*GormOrderRepository)(nil)
