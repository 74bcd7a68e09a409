package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harborpay/scanpay-backend/api/responses"
	"github.com/harborpay/scanpay-backend/api/validators"
	"github.com/harborpay/scanpay-backend/internal/gate"
	"github.com/harborpay/scanpay-backend/internal/orders"
	"github.com/harborpay/scanpay-backend/pkg/enums"
	pkgerrors "github.com/harborpay/scanpay-backend/pkg/errors"
	"github.com/harborpay/scanpay-backend/pkg/logger"
)

// CreateOrder is the signature-gated order creation ingress.
func CreateOrder(g *gate.Gate, svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.DecodeSignedBody(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		merchantID, err := validators.ParseUUIDField(params, "merchant_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithMerchantID(ctx, merchantID.String())
		}

		if err := g.Verify(ctx, merchantID, params); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input, err := buildCreateInput(merchantID, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.Create(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func buildCreateInput(merchantID uuid.UUID, params map[string]string) (orders.CreateOrderInput, error) {
	amountRaw := strings.TrimSpace(params["amount"])
	if amountRaw == "" {
		return orders.CreateOrderInput{}, pkgerrors.New(pkgerrors.CodeValidation, "missing required field").
			WithDetails(map[string]any{"field": "amount"})
	}
	amount, err := decimal.NewFromString(amountRaw)
	if err != nil {
		return orders.CreateOrderInput{}, pkgerrors.New(pkgerrors.CodeValidation, "amount must be a decimal").
			WithDetails(map[string]any{"field": "amount"})
	}

	paymentType, err := enums.ParsePaymentType(strings.TrimSpace(params["payment_type"]))
	if err != nil {
		return orders.CreateOrderInput{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment type").
			WithDetails(map[string]any{"field": "payment_type"})
	}

	return orders.CreateOrderInput{
		MerchantID:      merchantID,
		MerchantOrderNo: validators.SanitizeString(params["merchant_order_no"], 64),
		Amount:          amount,
		PaymentType:     paymentType,
		NotifyURL:       validators.SanitizeString(params["notify_url"], 512),
	}, nil
}

// GetOrder returns one order; ownership is proven by the query signature.
func GetOrder(g *gate.Gate, svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := validators.SignedQuery(r)

		merchantID, err := validators.ParseUUIDField(params, "merchant_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithMerchantID(ctx, merchantID.String())
			ctx = logg.WithOrderID(ctx, orderID.String())
		}

		if err := g.Verify(ctx, merchantID, params); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.Get(ctx, merchantID, orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// CloseOrder administratively cancels a pending order.
func CloseOrder(g *gate.Gate, svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.DecodeSignedBody(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		merchantID, err := validators.ParseUUIDField(params, "merchant_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithMerchantID(ctx, merchantID.String())
			ctx = logg.WithOrderID(ctx, orderID.String())
		}

		if err := g.Verify(ctx, merchantID, params); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.Close(ctx, merchantID, orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// ActiveOrders lists pending unexpired orders for listener agents.
func ActiveOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := buildActiveOrderFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		active, err := svc.ActiveOrders(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, active)
	}
}

func buildActiveOrderFilter(r *http.Request) (orders.ActiveOrderFilter, error) {
	var filter orders.ActiveOrderFilter
	var err error

	if filter.MerchantID, err = optionalQueryUUID(r, "merchant_id"); err != nil {
		return filter, err
	}
	if filter.AccountID, err = optionalQueryUUID(r, "account_id"); err != nil {
		return filter, err
	}
	if filter.ChannelID, err = optionalQueryUUID(r, "channel_id"); err != nil {
		return filter, err
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("payment_type")); raw != "" {
		paymentType, parseErr := enums.ParsePaymentType(raw)
		if parseErr != nil {
			return filter, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment type").
				WithDetails(map[string]any{"field": "payment_type"})
		}
		filter.PaymentType = paymentType
	}
	return filter, nil
}

func optionalQueryUUID(r *http.Request, key string) (uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a uuid").
			WithDetails(map[string]any{"field": key})
	}
	return id, nil
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderID"))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id must be a uuid")
	}
	return id, nil
}
