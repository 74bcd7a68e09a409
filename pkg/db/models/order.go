package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harborpay/scanpay-backend/pkg/enums"
	"github.com/harborpay/scanpay-backend/pkg/types"
)

// Order is a collection order awaiting (or having received) a payment on a
// third-party account. Fingerprint is the exact amount displayed to the payer
// and acts as the correlation key inside the order's scope.
//
// FingerprintSlot mirrors the fingerprint as text while the order is PENDING
// and is nulled on any transition out of PENDING. The partial-unique index
// uk_orders_scope_fingerprint_slot over (account_id, channel_id, payment_type,
// fingerprint_slot) is what actually enforces fingerprint uniqueness; the
// allocator's read is only an optimization.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MerchantID      uuid.UUID         `gorm:"column:merchant_id;type:uuid;not null;uniqueIndex:uk_orders_merchant_order_no"`
	MerchantOrderNo string            `gorm:"column:merchant_order_no;not null;uniqueIndex:uk_orders_merchant_order_no"`
	AccountID       uuid.UUID         `gorm:"column:account_id;type:uuid;not null;uniqueIndex:uk_orders_scope_fingerprint_slot"`
	ChannelID       uuid.UUID         `gorm:"column:channel_id;type:uuid;not null;uniqueIndex:uk_orders_scope_fingerprint_slot"`
	PaymentType     enums.PaymentType `gorm:"column:payment_type;type:text;not null;uniqueIndex:uk_orders_scope_fingerprint_slot"`
	RequestedAmount decimal.Decimal   `gorm:"column:requested_amount;type:numeric(18,2);not null"`
	Fingerprint     decimal.Decimal   `gorm:"column:fingerprint;type:numeric(18,2);not null"`
	FingerprintSlot *string           `gorm:"column:fingerprint_slot;uniqueIndex:uk_orders_scope_fingerprint_slot"`
	State           enums.OrderState  `gorm:"column:state;type:text;not null;default:'pending'"`
	ProviderTxnRef  *string           `gorm:"column:provider_txn_ref"`
	NotifyURL       string            `gorm:"column:notify_url;not null"`
	ExpiresAt       time.Time         `gorm:"column:expires_at;not null"`
	PaidAt          *time.Time        `gorm:"column:paid_at"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// Scope returns the matching scope the order belongs to.
func (o Order) Scope() types.Scope {
	return types.Scope{
		AccountID:   o.AccountID,
		ChannelID:   o.ChannelID,
		PaymentType: o.PaymentType,
	}
}
