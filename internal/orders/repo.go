package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/harborpay/scanpay-backend/pkg/db/models"
	"github.com/harborpay/scanpay-backend/pkg/enums"
	"github.com/harborpay/scanpay-backend/pkg/types"
)

// Repository handles order persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to order operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new order row. The partial unique index on the
// fingerprint slot makes concurrent duplicate fingerprints fail here.
func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// FindByID loads an order by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByMerchantOrderNo loads an order by its merchant-issued number.
func (r *Repository) FindByMerchantOrderNo(ctx context.Context, merchantID uuid.UUID, merchantOrderNo string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("merchant_id = ? AND merchant_order_no = ?", merchantID, merchantOrderNo).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// PendingFingerprints returns the fingerprints of all pending orders inside
// the given scope.
func (r *Repository) PendingFingerprints(ctx context.Context, scope types.Scope) ([]decimal.Decimal, error) {
	var fingerprints []decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where(
			"account_id = ? AND channel_id = ? AND payment_type = ? AND state = ?",
			scope.AccountID, scope.ChannelID, scope.PaymentType, enums.OrderStatePending,
		).
		Pluck("fingerprint", &fingerprints).Error
	if err != nil {
		return nil, err
	}
	return fingerprints, nil
}

// PendingByScopeAndFingerprint returns pending orders in the scope whose
// fingerprint equals the observed amount, oldest first.
func (r *Repository) PendingByScopeAndFingerprint(ctx context.Context, scope types.Scope, fingerprint decimal.Decimal) ([]models.Order, error) {
	var candidates []models.Order
	err := r.db.WithContext(ctx).
		Where(
			"account_id = ? AND channel_id = ? AND payment_type = ? AND state = ? AND fingerprint = ?",
			scope.AccountID, scope.ChannelID, scope.PaymentType, enums.OrderStatePending, fingerprint,
		).
		Order("created_at ASC").
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

// ActiveOrders returns pending, unexpired orders matching the filter, oldest
// first.
func (r *Repository) ActiveOrders(ctx context.Context, filter ActiveOrderFilter, now time.Time) ([]models.Order, error) {
	q := r.db.WithContext(ctx).
		Where("state = ? AND expires_at > ?", enums.OrderStatePending, now)
	if filter.MerchantID != uuid.Nil {
		q = q.Where("merchant_id = ?", filter.MerchantID)
	}
	if filter.AccountID != uuid.Nil {
		q = q.Where("account_id = ?", filter.AccountID)
	}
	if filter.ChannelID != uuid.Nil {
		q = q.Where("channel_id = ?", filter.ChannelID)
	}
	if filter.PaymentType != "" {
		q = q.Where("payment_type = ?", filter.PaymentType)
	}
	var active []models.Order
	if err := q.Order("created_at ASC").Find(&active).Error; err != nil {
		return nil, err
	}
	return active, nil
}

// MarkPaid settles an order if and only if it is still pending. The state
// guard in the WHERE clause is the race arbiter: exactly one concurrent
// caller sees a non-zero row count. Nulling the fingerprint slot frees the
// amount for reallocation.
func (r *Repository) MarkPaid(ctx context.Context, orderID uuid.UUID, providerTxnRef string, paidAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND state = ?", orderID, enums.OrderStatePending).
		Updates(map[string]any{
			"state":            enums.OrderStatePaid,
			"provider_txn_ref": providerTxnRef,
			"paid_at":          paidAt,
			"fingerprint_slot": nil,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Close transitions a pending order to closed. Returns false when the order
// already left the pending state.
func (r *Repository) Close(ctx context.Context, orderID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND state = ?", orderID, enums.OrderStatePending).
		Updates(map[string]any{
			"state":            enums.OrderStateClosed,
			"fingerprint_slot": nil,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ExpireDue transitions pending orders whose deadline has passed to expired,
// up to limit rows per call. Returns the number of orders expired.
func (r *Repository) ExpireDue(ctx context.Context, now time.Time, limit int) (int64, error) {
	ids := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("id").
		Where("state = ? AND expires_at <= ?", enums.OrderStatePending, now).
		Order("expires_at ASC").
		Limit(limit)
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id IN (?)", ids).
		Updates(map[string]any{
			"state":            enums.OrderStateExpired,
			"fingerprint_slot": nil,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
