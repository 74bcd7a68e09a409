package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harborpay/scanpay-backend/internal/gate"
	"github.com/harborpay/scanpay-backend/pkg/config"
	"github.com/harborpay/scanpay-backend/pkg/db/models"
	pkgerrors "github.com/harborpay/scanpay-backend/pkg/errors"
)

type credentialSource interface {
	SecretFor(ctx context.Context, merchantID uuid.UUID) (string, error)
}

// Sender posts settlement callbacks to merchant notify URLs. The payload is
// signed with the same canonical-string scheme merchants use on requests, so
// they verify it symmetrically. Delivery is single-shot; retrying is the
// caller's business.
type Sender struct {
	creds  credentialSource
	client *http.Client
	now    func() time.Time
}

// NewSender builds a notification sender with the configured timeout.
func NewSender(creds credentialSource, cfg config.NotifyConfig) (*Sender, error) {
	if creds == nil {
		return nil, fmt.Errorf("credential source required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Sender{
		creds:  creds,
		client: &http.Client{Timeout: timeout},
		now:    time.Now,
	}, nil
}

// NotifyPaid delivers the paid callback for a settled order.
func (s *Sender) NotifyPaid(ctx context.Context, order *models.Order) error {
	if order == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order is required")
	}
	if strings.TrimSpace(order.NotifyURL) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order has no notify url")
	}

	secret, err := s.creds.SecretFor(ctx, order.MerchantID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve merchant secret")
	}

	params := map[string]string{
		"order_id":          order.ID.String(),
		"merchant_order_no": order.MerchantOrderNo,
		"amount":            order.Fingerprint.StringFixed(2),
		"state":             order.State.String(),
		"timestamp":         strconv.FormatInt(s.now().Unix(), 10),
		"nonce":             uuid.NewString(),
	}
	if order.ProviderTxnRef != nil {
		params["provider_txn_ref"] = *order.ProviderTxnRef
	}
	if order.PaidAt != nil {
		params["paid_at"] = strconv.FormatInt(order.PaidAt.Unix(), 10)
	}
	params["sign"] = gate.Sign(params, secret)

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, order.NotifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build notify request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "post merchant notification")
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("merchant notification rejected with status %d", resp.StatusCode))
	}
	return nil
}
