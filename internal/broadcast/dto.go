package broadcast

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harborpay/scanpay-backend/pkg/db/models"
	"github.com/harborpay/scanpay-backend/pkg/enums"
	"github.com/harborpay/scanpay-backend/pkg/types"
)

// EntryDTO is the outward representation of a broadcast log entry.
type EntryDTO struct {
	ID            uuid.UUID        `json:"id"`
	OrderID       uuid.UUID        `json:"order_id"`
	MerchantID    uuid.UUID        `json:"merchant_id"`
	Scope         types.Scope      `json:"scope"`
	Fingerprint   decimal.Decimal  `json:"fingerprint"`
	ExpiresAt     time.Time        `json:"expires_at"`
	ListenPattern enums.ListenMode `json:"listen_pattern"`
	CreatedAt     time.Time        `json:"created_at"`
}

// EntryFromModel maps a persisted entry to its DTO.
func EntryFromModel(entry models.BroadcastEntry) EntryDTO {
	return EntryDTO{
		ID:            entry.ID,
		OrderID:       entry.OrderID,
		MerchantID:    entry.MerchantID,
		Scope:         entry.Scope(),
		Fingerprint:   entry.Fingerprint,
		ExpiresAt:     entry.ExpiresAt,
		ListenPattern: entry.ListenPattern,
		CreatedAt:     entry.CreatedAt,
	}
}
