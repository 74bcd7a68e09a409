package enums

import "fmt"

// OrderState tracks the lifecycle of a collection order. PENDING is the only
// state the matcher will settle against.
type OrderState string

const (
	OrderStatePending OrderState = "pending"
	OrderStatePaid    OrderState = "paid"
	OrderStateClosed  OrderState = "closed"
	OrderStateExpired OrderState = "expired"
)

var validOrderStates = []OrderState{
	OrderStatePending,
	OrderStatePaid,
	OrderStateClosed,
	OrderStateExpired,
}

// String implements fmt.Stringer.
func (o OrderState) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderState.
func (o OrderState) IsValid() bool {
	for _, candidate := range validOrderStates {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrderState converts raw input into an OrderState.
func ParseOrderState(value string) (OrderState, error) {
	for _, candidate := range validOrderStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order state %q", value)
}
