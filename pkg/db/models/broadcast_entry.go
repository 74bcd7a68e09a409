package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harborpay/scanpay-backend/pkg/enums"
	"github.com/harborpay/scanpay-backend/pkg/types"
)

// BroadcastEntry is one record of the append-only active-order log consumed
// by listener agents. Entries are never updated or deleted by the core;
// closure/expiry of an order is not reflected here and consumers must
// cross-reference current order state.
type BroadcastEntry struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID         `gorm:"column:order_id;type:uuid;not null"`
	MerchantID    uuid.UUID         `gorm:"column:merchant_id;type:uuid;not null;index"`
	AccountID     uuid.UUID         `gorm:"column:account_id;type:uuid;not null;index"`
	ChannelID     uuid.UUID         `gorm:"column:channel_id;type:uuid;not null"`
	PaymentType   enums.PaymentType `gorm:"column:payment_type;type:text;not null"`
	Fingerprint   decimal.Decimal   `gorm:"column:fingerprint;type:numeric(18,2);not null"`
	ExpiresAt     time.Time         `gorm:"column:expires_at;not null"`
	ListenPattern enums.ListenMode  `gorm:"column:listen_pattern;type:text;not null"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
}

// Scope returns the matching scope the entry advertises.
func (e BroadcastEntry) Scope() types.Scope {
	return types.Scope{
		AccountID:   e.AccountID,
		ChannelID:   e.ChannelID,
		PaymentType: e.PaymentType,
	}
}
