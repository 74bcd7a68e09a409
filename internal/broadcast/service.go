package broadcast

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/harborpay/scanpay-backend/pkg/db/models"
	"github.com/harborpay/scanpay-backend/pkg/enums"
	pkgerrors "github.com/harborpay/scanpay-backend/pkg/errors"
)

type entryLog interface {
	Append(ctx context.Context, entries []models.BroadcastEntry) error
	All(ctx context.Context) ([]models.BroadcastEntry, error)
}

// Filter narrows a broadcast read. Zero values mean no filtering on that
// dimension.
type Filter struct {
	MerchantID  uuid.UUID
	AccountID   uuid.UUID
	ChannelID   uuid.UUID
	PaymentType enums.PaymentType
	Limit       int
}

// Service exposes the active-order broadcast log.
type Service interface {
	PublishOrder(ctx context.Context, order *models.Order, listenMode enums.ListenMode) error
	Read(ctx context.Context, filter Filter) ([]models.BroadcastEntry, error)
}

type service struct {
	log entryLog
}

// NewService builds the broadcast service over the append-only log.
func NewService(log entryLog) (Service, error) {
	if log == nil {
		return nil, fmt.Errorf("entry log required")
	}
	return &service{log: log}, nil
}

// PublishOrder appends the advertisement for a freshly created order.
func (s *service) PublishOrder(ctx context.Context, order *models.Order, listenMode enums.ListenMode) error {
	if order == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order is required")
	}
	entry := models.BroadcastEntry{
		OrderID:       order.ID,
		MerchantID:    order.MerchantID,
		AccountID:     order.AccountID,
		ChannelID:     order.ChannelID,
		PaymentType:   order.PaymentType,
		Fingerprint:   order.Fingerprint,
		ExpiresAt:     order.ExpiresAt,
		ListenPattern: listenMode,
	}
	if err := s.log.Append(ctx, []models.BroadcastEntry{entry}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append broadcast entry")
	}
	return nil
}

// Read replays the whole log in creation order and filters client-side. The
// log is small by construction (one row per order) and consumers tolerate
// stale entries, so no cursoring is done.
func (s *service) Read(ctx context.Context, filter Filter) ([]models.BroadcastEntry, error) {
	entries, err := s.log.All(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read broadcast log")
	}
	out := make([]models.BroadcastEntry, 0, len(entries))
	for _, entry := range entries {
		if filter.MerchantID != uuid.Nil && entry.MerchantID != filter.MerchantID {
			continue
		}
		if filter.AccountID != uuid.Nil && entry.AccountID != filter.AccountID {
			continue
		}
		if filter.ChannelID != uuid.Nil && entry.ChannelID != filter.ChannelID {
			continue
		}
		if filter.PaymentType != "" && entry.PaymentType != filter.PaymentType {
			continue
		}
		out = append(out, entry)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}
