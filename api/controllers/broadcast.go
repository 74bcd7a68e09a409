package controllers

import (
	"net/http"
	"strings"

	"github.com/harborpay/scanpay-backend/api/responses"
	"github.com/harborpay/scanpay-backend/api/validators"
	"github.com/harborpay/scanpay-backend/internal/broadcast"
	"github.com/harborpay/scanpay-backend/pkg/enums"
	pkgerrors "github.com/harborpay/scanpay-backend/pkg/errors"
	"github.com/harborpay/scanpay-backend/pkg/logger"
)

// ReadBroadcast replays the active-order broadcast log for listener agents.
func ReadBroadcast(svc broadcast.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := buildBroadcastFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.Read(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]broadcast.EntryDTO, 0, len(entries))
		for _, entry := range entries {
			out = append(out, broadcast.EntryFromModel(entry))
		}
		responses.WriteSuccess(w, out)
	}
}

func buildBroadcastFilter(r *http.Request) (broadcast.Filter, error) {
	var filter broadcast.Filter
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
	if filter.Limit, err = validators.ParseQueryInt(r, "limit", 0, 0, 10000); err != nil {
		return filter, err
	}
	return filter, nil
}
