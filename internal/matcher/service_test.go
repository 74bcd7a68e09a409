package matcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harborpay/scanpay-backend/pkg/db/models"
	"github.com/harborpay/scanpay-backend/pkg/enums"
	pkgerrors "github.com/harborpay/scanpay-backend/pkg/errors"
	"github.com/harborpay/scanpay-backend/pkg/types"
)

type fakeOrderStore struct {
	candidates []models.Order
	loadErr    error
	// settled maps order id to whether MarkPaid should report a win.
	winners  map[uuid.UUID]bool
	markErr  error
	markLog  []uuid.UUID
	markRefs []string
}

func (f *fakeOrderStore) PendingByScopeAndFingerprint(_ context.Context, _ types.Scope, _ decimal.Decimal) ([]models.Order, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.candidates, nil
}

func (f *fakeOrderStore) MarkPaid(_ context.Context, orderID uuid.UUID, providerTxnRef string, _ time.Time) (bool, error) {
	f.markLog = append(f.markLog, orderID)
	f.markRefs = append(f.markRefs, providerTxnRef)
	if f.markErr != nil {
		return false, f.markErr
	}
	if f.winners == nil {
		return true, nil
	}
	return f.winners[orderID], nil
}

type fakeNotifier struct {
	notified []uuid.UUID
	err      error
}

func (f *fakeNotifier) NotifyPaid(_ context.Context, order *models.Order) error {
	f.notified = append(f.notified, order.ID)
	return f.err
}

func matchScope() types.Scope {
	return types.Scope{
		AccountID:   uuid.New(),
		ChannelID:   uuid.New(),
		PaymentType: enums.PaymentTypeWechatQR,
	}
}

func pendingOrder(created time.Time) models.Order {
	return models.Order{
		ID:         uuid.New(),
		MerchantID: uuid.New(),
		State:      enums.OrderStatePending,
		CreatedAt:  created,
	}
}

func newTestService(t *testing.T, store *fakeOrderStore, notifier *fakeNotifier) Service {
	t.Helper()
	svc, err := NewService(store, notifier, nil, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestMatchSettlesOldestCandidate(t *testing.T) {
	now := time.Now()
	oldest := pendingOrder(now.Add(-time.Hour))
	newest := pendingOrder(now)
	store := &fakeOrderStore{candidates: []models.Order{oldest, newest}}
	notifier := &fakeNotifier{}
	svc := newTestService(t, store, notifier)

	order, err := svc.Match(context.Background(), matchScope(), decimal.RequireFromString("100.02"), "txn-9")
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if order.ID != oldest.ID {
		t.Fatalf("expected oldest candidate settled, got %s", order.ID)
	}
	if order.State != enums.OrderStatePaid {
		t.Fatalf("expected paid state, got %s", order.State)
	}
	if order.ProviderTxnRef == nil || *order.ProviderTxnRef != "txn-9" {
		t.Fatalf("provider txn ref not carried: %v", order.ProviderTxnRef)
	}
	if len(store.markLog) != 1 {
		t.Fatalf("expected a single settle attempt, got %d", len(store.markLog))
	}
	if len(notifier.notified) != 1 || notifier.notified[0] != oldest.ID {
		t.Fatalf("expected notification for settled order, got %v", notifier.notified)
	}
}

func TestMatchFallsThroughToNextCandidate(t *testing.T) {
	now := time.Now()
	taken := pendingOrder(now.Add(-time.Hour))
	free := pendingOrder(now)
	store := &fakeOrderStore{
		candidates: []models.Order{taken, free},
		winners:    map[uuid.UUID]bool{free.ID: true},
	}
	svc := newTestService(t, store, &fakeNotifier{})

	order, err := svc.Match(context.Background(), matchScope(), decimal.RequireFromString("100.02"), "txn-9")
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if order.ID != free.ID {
		t.Fatalf("expected second candidate to win, got %s", order.ID)
	}
	if len(store.markLog) != 2 {
		t.Fatalf("expected two settle attempts, got %d", len(store.markLog))
	}
}

func TestMatchNoCandidates(t *testing.T) {
	store := &fakeOrderStore{}
	notifier := &fakeNotifier{}
	svc := newTestService(t, store, notifier)

	_, err := svc.Match(context.Background(), matchScope(), decimal.RequireFromString("1.00"), "txn-9")
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(notifier.notified) != 0 {
		t.Fatal("expected no notification on unmatched observation")
	}
}

func TestMatchAllCandidatesAlreadySettled(t *testing.T) {
	now := time.Now()
	a := pendingOrder(now.Add(-time.Hour))
	b := pendingOrder(now)
	store := &fakeOrderStore{
		candidates: []models.Order{a, b},
		winners:    map[uuid.UUID]bool{},
	}
	svc := newTestService(t, store, &fakeNotifier{})

	_, err := svc.Match(context.Background(), matchScope(), decimal.RequireFromString("1.00"), "txn-9")
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMatchNotifyFailureDoesNotPropagate(t *testing.T) {
	store := &fakeOrderStore{candidates: []models.Order{pendingOrder(time.Now())}}
	notifier := &fakeNotifier{err: errors.New("merchant endpoint down")}
	svc := newTestService(t, store, notifier)

	if _, err := svc.Match(context.Background(), matchScope(), decimal.RequireFromString("1.00"), "txn-9"); err != nil {
		t.Fatalf("Match: %v", err)
	}
}

func TestMatchStoreFailures(t *testing.T) {
	t.Run("load", func(t *testing.T) {
		store := &fakeOrderStore{loadErr: errors.New("connection refused")}
		svc := newTestService(t, store, &fakeNotifier{})
		_, err := svc.Match(context.Background(), matchScope(), decimal.RequireFromString("1.00"), "txn-9")
		if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
			t.Fatalf("expected dependency error, got %v", err)
		}
	})

	t.Run("settle", func(t *testing.T) {
		store := &fakeOrderStore{
			candidates: []models.Order{pendingOrder(time.Now())},
			markErr:    errors.New("connection refused"),
		}
		svc := newTestService(t, store, &fakeNotifier{})
		_, err := svc.Match(context.Background(), matchScope(), decimal.RequireFromString("1.00"), "txn-9")
		if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
			t.Fatalf("expected dependency error, got %v", err)
		}
	})
}

func TestMatchValidation(t *testing.T) {
	svc := newTestService(t, &fakeOrderStore{}, &fakeNotifier{})

	_, err := svc.Match(context.Background(), types.Scope{}, decimal.RequireFromString("1.00"), "txn-9")
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for empty scope, got %v", err)
	}

	_, err = svc.Match(context.Background(), matchScope(), decimal.Zero, "txn-9")
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for zero amount, got %v", err)
	}
}
