package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tiffin/backend/internal/domain/billing"
	"github.com/tiffin/backend/internal/domain/shared/valueobject"
	"github.com/tiffin/backend/internal/infrastructure/persistence/models"
)

// GormCalendarEntryRepository implements billing.CalendarEntryRepository using GORM
type GormCalendarEntryRepository struct {
	db *gorm.DB
}

// NewGormCalendarEntryRepository creates a new GormCalendarEntryRepository
func NewGormCalendarEntryRepository(db *gorm.DB) *GormCalendarEntryRepository {
	return &GormCalendarEntryRepository{db: db}
}

// ListByOrderAndMonth lists calendar entries for an order within a billing month
func (r *GormCalendarEntryRepository) ListByOrderAndMonth(ctx context.Context, orderID uuid.UUID, month valueobject.BillingMonth) ([]*billing.CalendarEntry, error) {
	var entryModels []models.CalendarEntryModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ? AND date >= ? AND date < ?", orderID, month.Start(), month.End()).
		Order("date ASC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}
	entries := make([]*billing.CalendarEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = entryModels[i].ToDomain()
	}
	return entries, nil
}

// Ensure GormCalendarEntryRepository implements billing.CalendarEntryRepository
var _ billing.CalendarEntryRepository = (*GormCalendarEntryRepository)(nil)
