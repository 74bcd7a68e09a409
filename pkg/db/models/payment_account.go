package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/harborpay/scanpay-backend/pkg/enums"
	"github.com/harborpay/scanpay-backend/pkg/types"
)

// PaymentAccount is a personal or merchant account on a third-party payment
// platform that listener agents watch for incoming transfers. One row per
// (account, channel, payment type) surface.
type PaymentAccount struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MerchantID  uuid.UUID         `gorm:"column:merchant_id;type:uuid;not null;index"`
	ChannelID   uuid.UUID         `gorm:"column:channel_id;type:uuid;not null"`
	PaymentType enums.PaymentType `gorm:"column:payment_type;type:text;not null"`
	ListenMode  enums.ListenMode  `gorm:"column:listen_mode;type:text;not null;default:'active'"`
	Weight      int               `gorm:"column:weight;not null;default:0"`
	Enabled     bool              `gorm:"column:enabled;not null;default:true"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// Scope returns the matching scope new orders on this account land in.
func (a PaymentAccount) Scope() types.Scope {
	return types.Scope{
		AccountID:   a.ID,
		ChannelID:   a.ChannelID,
		PaymentType: a.PaymentType,
	}
}
