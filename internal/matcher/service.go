package matcher

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harborpay/scanpay-backend/pkg/db/models"
	"github.com/harborpay/scanpay-backend/pkg/enums"
	pkgerrors "github.com/harborpay/scanpay-backend/pkg/errors"
	"github.com/harborpay/scanpay-backend/pkg/logger"
	"github.com/harborpay/scanpay-backend/pkg/metrics"
	"github.com/harborpay/scanpay-backend/pkg/types"
)

const (
	resultMatched   = "matched"
	resultUnmatched = "unmatched"
	resultError     = "error"
)

type orderStore interface {
	PendingByScopeAndFingerprint(ctx context.Context, scope types.Scope, fingerprint decimal.Decimal) ([]models.Order, error)
	MarkPaid(ctx context.Context, orderID uuid.UUID, providerTxnRef string, paidAt time.Time) (bool, error)
}

// Notifier delivers the settlement callback to the merchant.
type Notifier interface {
	NotifyPaid(ctx context.Context, order *models.Order) error
}

// Service settles pending orders against observed payments.
type Service interface {
	Match(ctx context.Context, scope types.Scope, observedAmount decimal.Decimal, providerTxnRef string) (*models.Order, error)
}

type service struct {
	store    orderStore
	notifier Notifier
	metrics  *metrics.MatchMetrics
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds a matcher over the provided order store and notifier.
func NewService(store orderStore, notifier Notifier, m *metrics.MatchMetrics, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("order store required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	return &service{
		store:    store,
		notifier: notifier,
		metrics:  m,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// Match finds the oldest pending order in scope whose fingerprint equals the
// observed amount and settles it. The conditional update arbitrates between
// concurrent observers: a loser moves on to the next candidate. No candidate
// surviving the update means there is nothing to settle.
func (s *service) Match(ctx context.Context, scope types.Scope, observedAmount decimal.Decimal, providerTxnRef string) (*models.Order, error) {
	start := s.now()

	order, err := s.match(ctx, scope, observedAmount, providerTxnRef)
	switch {
	case err == nil:
		s.metrics.Observe(resultMatched, s.now().Sub(start))
	case pkgerrors.IsCode(err, pkgerrors.CodeNotFound):
		s.metrics.Observe(resultUnmatched, s.now().Sub(start))
	default:
		s.metrics.Observe(resultError, s.now().Sub(start))
	}
	if err != nil {
		return nil, err
	}

	// Notification failures never unwind a settled order; the merchant can
	// reconcile via the order query API.
	if notifyErr := s.notifier.NotifyPaid(ctx, order); notifyErr != nil && s.logg != nil {
		logCtx := s.logg.WithOrderID(ctx, order.ID.String())
		logCtx = s.logg.WithMerchantID(logCtx, order.MerchantID.String())
		s.logg.Error(logCtx, "merchant notification failed", notifyErr)
	}

	return order, nil
}

func (s *service) match(ctx context.Context, scope types.Scope, observedAmount decimal.Decimal, providerTxnRef string) (*models.Order, error) {
	if err := scope.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if observedAmount.IsNegative() || observedAmount.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "observed amount must be positive")
	}

	candidates, err := s.store.PendingByScopeAndFingerprint(ctx, scope, observedAmount)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load candidate orders")
	}

	paidAt := s.now()
	for i := range candidates {
		won, markErr := s.store.MarkPaid(ctx, candidates[i].ID, providerTxnRef, paidAt)
		if markErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, markErr, "settle order")
		}
		if !won {
			continue
		}
		order := candidates[i]
		order.State = enums.OrderStatePaid
		order.ProviderTxnRef = &providerTxnRef
		order.PaidAt = &paidAt
		order.FingerprintSlot = nil
		return &order, nil
	}

	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no pending order matches observation")
}
