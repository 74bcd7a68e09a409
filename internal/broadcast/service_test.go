package broadcast

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
)

type fakeEntryLog struct {
	entries   []models.BroadcastEntry
	appendErr error
	allErr    error
}

func (f *fakeEntryLog) Append(_ context.Context, entries []models.BroadcastEntry) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.entries = append(f.entries, entries...)
	return nil
}

func (f *fakeEntryLog) All(_ context.Context) ([]models.BroadcastEntry, error) {
	if f.allErr != nil {
		return nil, f.allErr
	}
	return f.entries, nil
}

func testOrder() *models.Order {
	return &models.Order{
		ID:          uuid.New(),
		MerchantID:  uuid.New(),
		AccountID:   uuid.New(),
		ChannelID:   uuid.New(),
		PaymentType: enums.PaymentTypeAlipayQR,
		Fingerprint: decimal.RequireFromString("100.02"),
		ExpiresAt:   time.Now().Add(30 * time.Minute),
	}
}

func TestPublishOrderAppendsEntry(t *testing.T) {
	log := &fakeEntryLog{}
	svc, err := NewService(log)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	order := testOrder()
	if err := svc.PublishOrder(context.Background(), order, enums.ListenModeActive); err != nil {
		t.Fatalf("PublishOrder: %v", err)
	}
	if len(log.entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(log.entries))
	}
	entry := log.entries[0]
	if entry.OrderID != order.ID {
		t.Fatalf("entry order id mismatch: %s", entry.OrderID)
	}
	if entry.Scope() != order.Scope() {
		t.Fatalf("entry scope mismatch: %+v", entry.Scope())
	}
	if entry.ListenPattern != enums.ListenModeActive {
		t.Fatalf("unexpected listen pattern %s", entry.ListenPattern)
	}
}

func TestPublishOrderAppendFailure(t *testing.T) {
	log := &fakeEntryLog{appendErr: errors.New("insert failed")}
	svc, _ := NewService(log)

	err := svc.PublishOrder(context.Background(), testOrder(), enums.ListenModeActive)
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestReadFilters(t *testing.T) {
	merchantA := uuid.New()
	merchantB := uuid.New()
	account := uuid.New()
	log := &fakeEntryLog{entries: []models.BroadcastEntry{
		{OrderID: uuid.New(), MerchantID: merchantA, AccountID: account, PaymentType: enums.PaymentTypeAlipayQR},
		{OrderID: uuid.New(), MerchantID: merchantA, AccountID: uuid.New(), PaymentType: enums.PaymentTypeWechatQR},
		{OrderID: uuid.New(), MerchantID: merchantB, AccountID: account, PaymentType: enums.PaymentTypeAlipayQR},
	}}
	svc, _ := NewService(log)

	byMerchant, err := svc.Read(context.Background(), Filter{MerchantID: merchantA})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(byMerchant) != 2 {
		t.Fatalf("expected 2 merchant entries, got %d", len(byMerchant))
	}

	byAccountAndType, err := svc.Read(context.Background(), Filter{
		AccountID:   account,
		PaymentType: enums.PaymentTypeAlipayQR,
	})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(byAccountAndType) != 2 {
		t.Fatalf("expected 2 account entries, got %d", len(byAccountAndType))
	}

	all, err := svc.Read(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected full replay, got %d", len(all))
	}

	capped, err := svc.Read(context.Background(), Filter{Limit: 2})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(capped) != 2 {
		t.Fatalf("expected capped replay, got %d", len(capped))
	}
}

func TestReadLogFailure(t *testing.T) {
	log := &fakeEntryLog{allErr: errors.New("connection refused")}
	svc, _ := NewService(log)

	_, err := svc.Read(context.Background(), Filter{})
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
