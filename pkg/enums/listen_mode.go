package enums

import "fmt"

// ListenMode tells a listener agent how a payment account is observed: the
// agent either polls the platform (active) or relies on the platform's own
// push channel (passive). The matching core never interprets it.
type ListenMode string

const (
	ListenModeActive  ListenMode = "active"
	ListenModePassive ListenMode = "passive"
)

// IsValid reports whether the value is a known ListenMode.
func (l ListenMode) IsValid() bool {
	return l == ListenModeActive || l == ListenModePassive
}

// ParseListenMode converts raw input into a ListenMode.
func ParseListenMode(value string) (ListenMode, error) {
	candidate := ListenMode(value)
	if !candidate.IsValid() {
		return "", fmt.Errorf("invalid listen mode %q", value)
	}
	return candidate, nil
}
