package types

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/harborpay/scanpay-backend/pkg/enums"
)

// Scope identifies the payment surface a pending order is collectable on.
// Fingerprint uniqueness is enforced within a scope, never across scopes.
type Scope struct {
	AccountID   uuid.UUID         `json:"account_id"`
	ChannelID   uuid.UUID         `json:"channel_id"`
	PaymentType enums.PaymentType `json:"payment_type"`
}

// String renders the scope as a stable log/key token.
func (s Scope) String() string {
	return fmt.Sprintf("%s/%s/%s", s.AccountID, s.ChannelID, s.PaymentType)
}

// Validate reports whether all three scope components are present.
func (s Scope) Validate() error {
	if s.AccountID == uuid.Nil {
		return fmt.Errorf("scope: account id is required")
	}
	if s.ChannelID == uuid.Nil {
		return fmt.Errorf("scope: channel id is required")
	}
	if !s.PaymentType.IsValid() {
		return fmt.Errorf("scope: invalid payment type %q", s.PaymentType)
	}
	return nil
}
