package fingerprint

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/harborpay/scanpay-backend/pkg/errors"
	"github.com/harborpay/scanpay-backend/pkg/types"
)

// minorUnit is the smallest currency step used to perturb a requested amount
// into a free fingerprint. All supported currencies use two decimal places.
var minorUnit = decimal.New(1, -2)

// PendingStore exposes the fingerprints currently held by pending orders in
// a scope.
type PendingStore interface {
	PendingFingerprints(ctx context.Context, scope types.Scope) ([]decimal.Decimal, error)
}

// Allocator derives the unique display amount for a new order.
type Allocator struct {
	store PendingStore
}

// NewAllocator builds an allocator over the provided pending-order view.
func NewAllocator(store PendingStore) (*Allocator, error) {
	if store == nil {
		return nil, errors.New("pending store is required")
	}
	return &Allocator{store: store}, nil
}

// Allocate returns the first amount >= requested, stepped by the minor unit,
// that no pending order in scope currently holds. The result is only
// guaranteed free at the instant of the read; the caller must rely on the
// store's uniqueness constraint at insert time and retry on conflict.
func (a *Allocator) Allocate(ctx context.Context, scope types.Scope, requested decimal.Decimal) (decimal.Decimal, error) {
	if requested.IsNegative() || requested.IsZero() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "requested amount must be positive")
	}
	if requested.Exponent() < -2 {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "requested amount exceeds minor unit precision")
	}

	taken, err := a.store.PendingFingerprints(ctx, scope)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read pending fingerprints")
	}

	held := make(map[string]struct{}, len(taken))
	for _, fp := range taken {
		held[Canonical(fp)] = struct{}{}
	}

	candidate := requested
	for {
		if _, clash := held[Canonical(candidate)]; !clash {
			return candidate, nil
		}
		candidate = candidate.Add(minorUnit)
	}
}

// Canonical renders an amount in the fixed two-decimal form used for slot
// comparison and storage keys.
func Canonical(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
