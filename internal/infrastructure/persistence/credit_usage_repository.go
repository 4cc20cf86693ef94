package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tiffin/backend/internal/domain/payment"
	"github.com/tiffin/backend/internal/infrastructure/persistence/models"
)

// GormCreditUsageRepository implements payment.CreditUsageRepository using GORM
type GormCreditUsageRepository struct {
	db *gorm.DB
}

// NewGormCreditUsageRepository creates a new GormCreditUsageRepository
func NewGormCreditUsageRepository(db *gorm.DB) *GormCreditUsageRepository {
	return &GormCreditUsageRepository{db: db}
}

// ListByCredit lists usage rows for a credit, oldest first
func (r *GormCreditUsageRepository) ListByCredit(ctx context.Context, creditID uuid.UUID) ([]*payment.CreditUsage, error) {
	var usageModels []models.CreditUsageModel
	if err := r.db.WithContext(ctx).
		Where("credit_id = ?", creditID).
		Order("used_at ASC").
		Find(&usageModels).Error; err != nil {
		return nil, err
	}
	return toDomainUsages(usageModels), nil
}

// ListByPayment lists usage rows written by a payment's allocation
func (r *GormCreditUsageRepository) ListByPayment(ctx context.Context, paymentID uuid.UUID) ([]*payment.CreditUsage, error) {
	var usageModels []models.CreditUsageModel
	if err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("used_at ASC").
		Find(&usageModels).Error; err != nil {
		return nil, err
	}
	return toDomainUsages(usageModels), nil
}

// Save creates a credit usage row
func (r *GormCreditUsageRepository) Save(ctx context.Context, u *payment.CreditUsage) error {
	var model models.CreditUsageModel
	model.FromDomain(u)
	return r.db.WithContext(ctx).Save(&model).Error
}

// DeleteByPayment removes all usage rows written by a payment
func (r *GormCreditUsageRepository) DeleteByPayment(ctx context.Context, paymentID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Delete(&models.CreditUsageModel{}).Error
}

func toDomainUsages(usageModels []models.CreditUsageModel) []*payment.CreditUsage {
	usages := make([]*payment.CreditUsage, len(usageModels))
	for i := range usageModels {
		usages[i] = usageModels[i].ToDomain()
	}
	return usages
}

// Ensure GormCreditUsageRepository implements payment.CreditUsageRepository
var _ payment.CreditUsageRepository = (*GormCreditUsageRepository)(nil)
