package payment

import (
	"context"
	"fmt"

	"freshmart-backend/internal/domain"
)

// Gateway isolates all calls to the external payment processor.
type Gateway interface {
	InitializeTransaction(ctx context.Context, email string, amount float64, metadata Metadata) (*InitializeData, error)
	VerifyTransaction(ctx context.Context, reference string) (*VerifyData, error)
}

// Metadata is attached to a transaction at initialization so the hosted
// payment page carries the order context.
type Metadata struct {
	CustomerName string            `json:"customer_name"`
	Address      string            `json:"address"`
	Cart         []domain.CartItem `json:"cart"`
}

// InitializeData is the processor's response to a transaction initialization.
type InitializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// VerifyData is the processor's authoritative record of a transaction.
// Amount is in minor units (kobo/cents).
type VerifyData struct {
	Status          string `json:"status"`
	Reference       string `json:"reference"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	GatewayResponse string `json:"gateway_response"`
}

// StatusSuccess is the only gateway status that allows a paid order.
const StatusSuccess = "success"

// WebhookEvent is an asynchronous notification from the processor.
type WebhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
		Amount    int64  `json:"amount"`
	} `json:"data"`
}

// EventChargeSuccess is the webhook event type that triggers reconciliation.
const EventChargeSuccess = "charge.success"

// GatewayError wraps any network failure or non-2xx response from the
// processor. Callers map it to a generic server error, never exposing
// processor internals to the client.
type GatewayError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *GatewayError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("payment gateway %s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("payment gateway %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }
