package merchants

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborpay/scanpay-backend/pkg/db/models"
	"github.com/harborpay/scanpay-backend/pkg/enums"
)

// Repository handles merchant and payment account persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to merchant operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a merchant by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Merchant, error) {
	var merchant models.Merchant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&merchant).Error; err != nil {
		return nil, err
	}
	return &merchant, nil
}

// FindAccounts returns the enabled payment accounts of a merchant for the
// given payment type, highest weight first.
func (r *Repository) FindAccounts(ctx context.Context, merchantID uuid.UUID, paymentType enums.PaymentType) ([]models.PaymentAccount, error) {
	var accounts []models.PaymentAccount
	err := r.db.WithContext(ctx).
		Where("merchant_id = ? AND payment_type = ? AND enabled = ?", merchantID, paymentType, true).
		Order("weight DESC, created_at ASC").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// FindAccountByID loads a payment account by its UUID.
func (r *Repository) FindAccountByID(ctx context.Context, id uuid.UUID) (*models.PaymentAccount, error) {
	var account models.PaymentAccount
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}
