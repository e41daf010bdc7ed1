package payment

import (
	"context"
	"errors"
)

// ErrProvider marks a charge the provider rejected or timed out. It is
// retryable by the user; the core never retries on its own.
var ErrProvider = errors.New("payment provider error")

type ChargeRequest struct {
	AmountCents  int64
	Currency     string
	PaymentToken string
	Email        string
	OrderID      uint
}

type ChargeResult struct {
	ProviderChargeID string
}

// Gateway is the only capability the core needs from a payment provider:
// charge an amount and get back a reference id or a failure.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}
