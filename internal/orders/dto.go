package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harborpay/scanpay-backend/pkg/db/models"
	"github.com/harborpay/scanpay-backend/pkg/enums"
	"github.com/harborpay/scanpay-backend/pkg/types"
)

// CreateOrderInput captures the data required to open a collection order.
type CreateOrderInput struct {
	MerchantID      uuid.UUID
	MerchantOrderNo string
	Amount          decimal.Decimal
	PaymentType     enums.PaymentType
	NotifyURL       string
}

// ActiveOrderFilter narrows the active-order read for listener agents. Zero
// values mean no filtering on that dimension.
type ActiveOrderFilter struct {
	MerchantID  uuid.UUID
	AccountID   uuid.UUID
	ChannelID   uuid.UUID
	PaymentType enums.PaymentType
}

// OrderDTO is the outward representation of an order.
type OrderDTO struct {
	ID              uuid.UUID        `json:"id"`
	MerchantID      uuid.UUID        `json:"merchant_id"`
	MerchantOrderNo string           `json:"merchant_order_no"`
	Scope           types.Scope      `json:"scope"`
	RequestedAmount decimal.Decimal  `json:"requested_amount"`
	Fingerprint     decimal.Decimal  `json:"fingerprint"`
	State           enums.OrderState `json:"state"`
	ProviderTxnRef  *string          `json:"provider_txn_ref,omitempty"`
	NotifyURL       string           `json:"notify_url"`
	ExpiresAt       time.Time        `json:"expires_at"`
	PaidAt          *time.Time       `json:"paid_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// FromModel maps a persisted order to its DTO.
func FromModel(order *models.Order) *OrderDTO {
	if order == nil {
		return nil
	}
	return &OrderDTO{
		ID:              order.ID,
		MerchantID:      order.MerchantID,
		MerchantOrderNo: order.MerchantOrderNo,
		Scope:           order.Scope(),
		RequestedAmount: order.RequestedAmount,
		Fingerprint:     order.Fingerprint,
		State:           order.State,
		ProviderTxnRef:  order.ProviderTxnRef,
		NotifyURL:       order.NotifyURL,
		ExpiresAt:       order.ExpiresAt,
		PaidAt:          order.PaidAt,
		CreatedAt:       order.CreatedAt,
	}
}
