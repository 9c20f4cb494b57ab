package gateway

import (
	"strings"
	"time"
)

// New picks the adapter for the configured environment and normalizes it.
// Environment "offline" needs no credentials.
func New(cfg BraintreeConfig, timeout time.Duration) (Gateway, error) {
	if strings.EqualFold(strings.TrimSpace(cfg.Environment), "offline") {
		return Normalize(Offline{}, timeout), nil
	}
	bt, err := NewBraintree(cfg)
	if err != nil {
		return nil, err
	}
	return Normalize(bt, timeout), nil
}
