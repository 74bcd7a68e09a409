package validators

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"

	pkgerrors "github.com/harborpay/scanpay-backend/pkg/errors"
)

// DecodeSignedBody reads a signed request body: a flat JSON object of string
// fields, the shape the canonical-string signature is computed over.
func DecodeSignedBody(r *http.Request) (map[string]string, error) {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	defer func() {
		io.Copy(io.Discard, body)
	}()
	params := map[string]string{}
	decoder := json.NewDecoder(body)
	if err := decoder.Decode(&params); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").
			WithDetails(map[string]any{"error": "body must be a flat JSON object of strings"})
	}
	return params, nil
}

// SignedQuery flattens the query string into the parameter map the signature
// is computed over. Repeated keys keep the first value.
func SignedQuery(r *http.Request) map[string]string {
	params := map[string]string{}
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	return params
}

// ParseUUIDField extracts and parses a required uuid parameter.
func ParseUUIDField(params map[string]string, field string) (uuid.UUID, error) {
	raw, ok := params[field]
	if !ok || raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "missing required field").
			WithDetails(map[string]any{"field": field})
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "field must be a uuid").
			WithDetails(map[string]any{"field": field})
	}
	return id, nil
}
