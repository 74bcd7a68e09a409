package observations

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harborpay/scanpay-backend/pkg/db/models"
	"github.com/harborpay/scanpay-backend/pkg/enums"
	pkgerrors "github.com/harborpay/scanpay-backend/pkg/errors"
	"github.com/harborpay/scanpay-backend/pkg/types"
)

type fakeDedup struct {
	seen    map[string]bool
	seenErr error
	markErr error
	marked  []string
}

func (f *fakeDedup) Seen(_ context.Context, providerTxnID string) (bool, error) {
	if f.seenErr != nil {
		return false, f.seenErr
	}
	return f.seen[providerTxnID], nil
}

func (f *fakeDedup) Mark(_ context.Context, providerTxnID string) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.marked = append(f.marked, providerTxnID)
	return nil
}

type fakeMatcher struct {
	order *models.Order
	err   error
	calls int
}

func (f *fakeMatcher) Match(_ context.Context, _ types.Scope, _ decimal.Decimal, _ string) (*models.Order, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.order, nil
}

func testObservation(txnID string) Observation {
	return Observation{
		Scope: types.Scope{
			AccountID:   uuid.New(),
			ChannelID:   uuid.New(),
			PaymentType: enums.PaymentTypeAlipayQR,
		},
		Amount:        decimal.RequireFromString("100.02"),
		ProviderTxnID: txnID,
	}
}

func newTestService(t *testing.T, dedup *fakeDedup, m *fakeMatcher) Service {
	t.Helper()
	svc, err := NewService(dedup, m, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestHandleMatchesAndMarks(t *testing.T) {
	dedup := &fakeDedup{}
	m := &fakeMatcher{order: &models.Order{ID: uuid.New()}}
	svc := newTestService(t, dedup, m)

	order, err := svc.Handle(context.Background(), testObservation("txn-1"))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if order == nil {
		t.Fatal("expected settled order")
	}
	if len(dedup.marked) != 1 || dedup.marked[0] != "txn-1" {
		t.Fatalf("expected dedup mark for txn-1, got %v", dedup.marked)
	}
}

func TestHandleRedeliveryIsNoop(t *testing.T) {
	dedup := &fakeDedup{seen: map[string]bool{"txn-1": true}}
	m := &fakeMatcher{order: &models.Order{ID: uuid.New()}}
	svc := newTestService(t, dedup, m)

	order, err := svc.Handle(context.Background(), testObservation("txn-1"))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if order != nil {
		t.Fatal("expected no-op on redelivery")
	}
	if m.calls != 0 {
		t.Fatalf("matcher invoked on redelivery: %d calls", m.calls)
	}
}

func TestHandleUnmatchedLeavesNoMark(t *testing.T) {
	dedup := &fakeDedup{}
	m := &fakeMatcher{err: pkgerrors.New(pkgerrors.CodeNotFound, "no pending order matches observation")}
	svc := newTestService(t, dedup, m)

	_, err := svc.Handle(context.Background(), testObservation("txn-1"))
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(dedup.marked) != 0 {
		t.Fatal("unmatched observation must not be marked processed")
	}
}

func TestHandleMatcherFailureStaysRetryable(t *testing.T) {
	dedup := &fakeDedup{}
	m := &fakeMatcher{err: pkgerrors.New(pkgerrors.CodeDependency, "db down")}
	svc := newTestService(t, dedup, m)

	_, err := svc.Handle(context.Background(), testObservation("txn-1"))
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if len(dedup.marked) != 0 {
		t.Fatal("failed observation must not be marked processed")
	}

	// A later redelivery reaches the matcher again.
	m.err = nil
	m.order = &models.Order{ID: uuid.New()}
	if _, err := svc.Handle(context.Background(), testObservation("txn-1")); err != nil {
		t.Fatalf("retry Handle: %v", err)
	}
	if len(dedup.marked) != 1 {
		t.Fatalf("expected mark after successful retry, got %v", dedup.marked)
	}
}

func TestHandleWithoutTxnIDSkipsDedup(t *testing.T) {
	dedup := &fakeDedup{seenErr: errors.New("must not be called")}
	m := &fakeMatcher{order: &models.Order{ID: uuid.New()}}
	svc := newTestService(t, dedup, m)

	order, err := svc.Handle(context.Background(), testObservation(""))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if order == nil {
		t.Fatal("expected settled order")
	}
	if len(dedup.marked) != 0 {
		t.Fatal("observations without txn id must not write marks")
	}
}

func TestHandleDedupReadFailure(t *testing.T) {
	dedup := &fakeDedup{seenErr: errors.New("redis down")}
	m := &fakeMatcher{order: &models.Order{ID: uuid.New()}}
	svc := newTestService(t, dedup, m)

	_, err := svc.Handle(context.Background(), testObservation("txn-1"))
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if m.calls != 0 {
		t.Fatal("matcher must not run when dedup read fails")
	}
}

func TestHandleMarkFailureStillSucceeds(t *testing.T) {
	dedup := &fakeDedup{markErr: errors.New("redis down")}
	m := &fakeMatcher{order: &models.Order{ID: uuid.New()}}
	svc := newTestService(t, dedup, m)

	order, err := svc.Handle(context.Background(), testObservation("txn-1"))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if order == nil {
		t.Fatal("expected settled order despite mark failure")
	}
}
