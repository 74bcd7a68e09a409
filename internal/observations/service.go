package observations

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/harborpay/scanpay-backend/pkg/db/models"
	pkgerrors "github.com/harborpay/scanpay-backend/pkg/errors"
	"github.com/harborpay/scanpay-backend/pkg/logger"
	"github.com/harborpay/scanpay-backend/pkg/types"
)

// Observation is a payment event reported by a listener agent.
type Observation struct {
	Scope          types.Scope
	Amount         decimal.Decimal
	ProviderTxnID  string
	ProviderDetail string
}

// DedupStore tracks which provider transaction ids have already been
// processed to completion.
type DedupStore interface {
	Seen(ctx context.Context, providerTxnID string) (bool, error)
	Mark(ctx context.Context, providerTxnID string) error
}

type orderMatcher interface {
	Match(ctx context.Context, scope types.Scope, observedAmount decimal.Decimal, providerTxnRef string) (*models.Order, error)
}

// Service is the ingress for listener-agent payment observations.
type Service interface {
	Handle(ctx context.Context, obs Observation) (*models.Order, error)
}

type service struct {
	dedup   DedupStore
	matcher orderMatcher
	logg    *logger.Logger
}

// NewService builds the observation gateway.
func NewService(dedup DedupStore, m orderMatcher, logg *logger.Logger) (Service, error) {
	if dedup == nil {
		return nil, fmt.Errorf("dedup store required")
	}
	if m == nil {
		return nil, fmt.Errorf("matcher required")
	}
	return &service{dedup: dedup, matcher: m, logg: logg}, nil
}

// Handle settles one observation. Observations carrying a provider txn id are
// processed at most once; the processed mark is written only after the matcher
// succeeded, so a failed attempt stays retryable until it lands.
func (s *service) Handle(ctx context.Context, obs Observation) (*models.Order, error) {
	txnID := strings.TrimSpace(obs.ProviderTxnID)

	if txnID != "" {
		seen, err := s.dedup.Seen(ctx, txnID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check dedup mark")
		}
		if seen {
			// Redelivery of a finished observation is a success no-op.
			return nil, nil
		}
	}

	order, err := s.matcher.Match(ctx, obs.Scope, obs.Amount, txnID)
	if err != nil {
		return nil, err
	}

	if txnID != "" {
		if markErr := s.dedup.Mark(ctx, txnID); markErr != nil && s.logg != nil {
			// The order is settled; a lost mark only risks one extra matcher
			// round on redelivery, which the state guard absorbs.
			logCtx := s.logg.WithOrderID(ctx, order.ID.String())
			s.logg.Error(logCtx, "write dedup mark failed", markErr)
		}
	}

	return order, nil
}
