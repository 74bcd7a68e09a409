package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harborpay/scanpay-backend/internal/broadcast"
	"github.com/harborpay/scanpay-backend/pkg/db/models"
	"github.com/harborpay/scanpay-backend/pkg/enums"
)

type testBroadcastService struct {
	readFn func(ctx context.Context, filter broadcast.Filter) ([]models.BroadcastEntry, error)
}

func (s *testBroadcastService) PublishOrder(_ context.Context, _ *models.Order, _ enums.ListenMode) error {
	return nil
}

func (s *testBroadcastService) Read(ctx context.Context, filter broadcast.Filter) ([]models.BroadcastEntry, error) {
	return s.readFn(ctx, filter)
}

func TestReadBroadcastFilterCarried(t *testing.T) {
	accountID := uuid.New()
	var captured broadcast.Filter
	svc := &testBroadcastService{
		readFn: func(_ context.Context, filter broadcast.Filter) ([]models.BroadcastEntry, error) {
			captured = filter
			return []models.BroadcastEntry{
				{
					ID:            uuid.New(),
					OrderID:       uuid.New(),
					MerchantID:    uuid.New(),
					AccountID:     accountID,
					ChannelID:     uuid.New(),
					PaymentType:   enums.PaymentTypeAlipayQR,
					Fingerprint:   decimal.RequireFromString("100.02"),
					ListenPattern: enums.ListenModeActive,
				},
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/broadcast?account_id="+accountID.String()+"&payment_type=alipay_qr", nil)
	resp := httptest.NewRecorder()
	ReadBroadcast(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if captured.AccountID != accountID {
		t.Fatal("account filter not carried")
	}
	if captured.PaymentType != enums.PaymentTypeAlipayQR {
		t.Fatalf("payment type filter not carried: %q", captured.PaymentType)
	}

	var envelope struct {
		Data []broadcast.EntryDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(envelope.Data))
	}
	if envelope.Data[0].Scope.AccountID != accountID {
		t.Fatal("scope account id missing from entry")
	}
}

func TestReadBroadcastBadFilter(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/broadcast?payment_type=cash", nil)
	resp := httptest.NewRecorder()
	ReadBroadcast(&testBroadcastService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}
