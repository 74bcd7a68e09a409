package broadcast

import (
	"context"

	"gorm.io/gorm"

	"github.com/harborpay/scanpay-backend/pkg/db/models"
)

// Repository handles the append-only broadcast log.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to broadcast log operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Append adds entries to the log. Entries are immutable after this point.
func (r *Repository) Append(ctx context.Context, entries []models.BroadcastEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&entries).Error
}

// All replays the whole log in creation order.
func (r *Repository) All(ctx context.Context) ([]models.BroadcastEntry, error) {
	var entries []models.BroadcastEntry
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
