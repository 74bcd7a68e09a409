package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harborpay/scanpay-backend/api/responses"
	"github.com/harborpay/scanpay-backend/api/validators"
	"github.com/harborpay/scanpay-backend/internal/observations"
	"github.com/harborpay/scanpay-backend/pkg/enums"
	pkgerrors "github.com/harborpay/scanpay-backend/pkg/errors"
	"github.com/harborpay/scanpay-backend/pkg/logger"
	"github.com/harborpay/scanpay-backend/pkg/types"
)

// ObservationRequest is the payload listener agents post when they see an
// incoming payment.
type ObservationRequest struct {
	AccountID      string `json:"account_id" validate:"required,uuid"`
	ChannelID      string `json:"channel_id" validate:"required,uuid"`
	PaymentType    string `json:"payment_type" validate:"required"`
	Amount         string `json:"amount" validate:"required"`
	ProviderTxnID  string `json:"provider_txn_id,omitempty"`
	ProviderDetail string `json:"provider_detail,omitempty"`
}

// IngestObservation matches a payment observation against pending orders.
func IngestObservation(svc observations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ObservationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		obs, err := buildObservation(req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithScope(ctx, obs.Scope.String())
		}

		order, err := svc.Handle(ctx, obs)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if order == nil {
			// Redelivery of an already-processed observation.
			responses.WriteSuccess(w, map[string]string{"status": "duplicate"})
			return
		}
		responses.WriteSuccess(w, map[string]string{
			"status":   "matched",
			"order_id": order.ID.String(),
		})
	}
}

func buildObservation(req ObservationRequest) (observations.Observation, error) {
	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		return observations.Observation{}, pkgerrors.New(pkgerrors.CodeValidation, "account_id must be a uuid")
	}
	channelID, err := uuid.Parse(req.ChannelID)
	if err != nil {
		return observations.Observation{}, pkgerrors.New(pkgerrors.CodeValidation, "channel_id must be a uuid")
	}
	paymentType, err := enums.ParsePaymentType(req.PaymentType)
	if err != nil {
		return observations.Observation{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment type").
			WithDetails(map[string]any{"field": "payment_type"})
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return observations.Observation{}, pkgerrors.New(pkgerrors.CodeValidation, "amount must be a decimal").
			WithDetails(map[string]any{"field": "amount"})
	}

	return observations.Observation{
		Scope: types.Scope{
			AccountID:   accountID,
			ChannelID:   channelID,
			PaymentType: paymentType,
		},
		Amount:         amount,
		ProviderTxnID:  req.ProviderTxnID,
		ProviderDetail: req.ProviderDetail,
	}, nil
}
