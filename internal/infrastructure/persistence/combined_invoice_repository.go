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

// GormCombinedInvoiceRepository implements billing.CombinedInvoiceRepository using GORM
type GormCombinedInvoiceRepository struct {
	db *gorm.DB
}

// NewGormCombinedInvoiceRepository creates a new GormCombinedInvoiceRepository
func NewGormCombinedInvoiceRepository(db *gorm.DB) *GormCombinedInvoiceRepository {
	return &GormCombinedInvoiceRepository{db: db}
}

// FindByID finds a combined invoice by ID
func (r *GormCombinedInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.CombinedInvoice, error) {
	var model models.CombinedInvoiceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("NOT_FOUND", "combined invoice not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCustomerAndMonth finds the combined invoice for a customer and month
func (r *GormCombinedInvoiceRepository) FindByCustomerAndMonth(ctx context.Context, customerID uuid.UUID, month valueobject.BillingMonth) (*billing.CombinedInvoice, error) {
	var model models.CombinedInvoiceModel
	if err := r.db.WithContext(ctx).
		First(&model, "customer_id = ? AND billing_month = ?", customerID, month).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("NOT_FOUND", "combined invoice not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListUnpaidByCustomer lists finalized invoices with a positive balance due,
// oldest billing month first, tie-broken by id. Auto-select allocation walks
// this list in order.
func (r *GormCombinedInvoiceRepository) ListUnpaidByCustomer(ctx context.Context, customerID uuid.UUID) ([]*billing.CombinedInvoice, error) {
	var invoiceModels []models.CombinedInvoiceModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ? AND status = ? AND total_amount > amount_paid + credit_applied",
			customerID, billing.InvoiceStatusFinalized).
		Order("billing_month ASC, id ASC").
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	invoices := make([]*billing.CombinedInvoice, len(invoiceModels))
	for i := range invoiceModels {
		invoices[i] = invoiceModels[i].ToDomain()
	}
	return invoices, nil
}

// Save creates or updates a combined invoice
func (r *GormCombinedInvoiceRepository) Save(ctx context.Context, ci *billing.CombinedInvoice) error {
	var model models.CombinedInvoiceModel
	model.FromDomain(ci)
	return r.db.WithContext(ctx).Save(&model).Error
}

// SaveWithLock saves with an optimistic version check
func (r *GormCombinedInvoiceRepository) SaveWithLock(ctx context.Context, ci *billing.CombinedInvoice, expectedVersion int) error {
	var model models.CombinedInvoiceModel
	model.FromDomain(ci)
	model.Version = expectedVersion + 1

	result := r.db.WithContext(ctx).
		Model(&models.CombinedInvoiceModel{}).
		Where("id = ? AND version = ?", ci.ID, expectedVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	ci.IncrementVersion()
	return nil
}

// Ensure GormCombinedInvoiceRepository implements billing.CombinedInvoiceRepository
var _ billing.CombinedInvoiceRepository = (*GormCombinedInvoiceRepository)(nil)
