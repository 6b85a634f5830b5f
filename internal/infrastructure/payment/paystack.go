package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultTimeout = 10 * time.Second

// PaystackClient talks to the Paystack transaction API. It carries no
// business logic; verification decisions belong to the order service.
type PaystackClient struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewPaystackClient(baseURL, secretKey string, logger *zap.Logger) *PaystackClient {
	return &PaystackClient{
		baseURL:   baseURL,
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

type initializeRequest struct {
	Email    string   `json:"email"`
	Amount   int64    `json:"amount"`
	Metadata Metadata `json:"metadata"`
}

type initializeEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    *InitializeData `json:"data"`
}

type verifyEnvelope struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    *VerifyData `json:"data"`
}

// MinorUnits converts a major-unit amount to the processor's integer minor
// units, rounding to the nearest integer.
func MinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func (c *PaystackClient) InitializeTransaction(ctx context.Context, email string, amount float64, metadata Metadata) (*InitializeData, error) {
	payload, err := json.Marshal(initializeRequest{
		Email:    email,
		Amount:   MinorUnits(amount),
		Metadata: metadata,
	})
	if err != nil {
		return nil, &GatewayError{Op: "initialize", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/transaction/initialize", bytes.NewReader(payload))
	if err != nil {
		return nil, &GatewayError{Op: "initialize", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	var env initializeEnvelope
	if err := c.do(req, "initialize", &env); err != nil {
		return nil, err
	}
	if !env.Status || env.Data == nil {
		return nil, &GatewayError{Op: "initialize", Err: fmt.Errorf("gateway rejected request: %s", env.Message)}
	}
	return env.Data, nil
}

func (c *PaystackClient) VerifyTransaction(ctx context.Context, reference string) (*VerifyData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, &GatewayError{Op: "verify", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	var env verifyEnvelope
	if err := c.do(req, "verify", &env); err != nil {
		return nil, err
	}
	if !env.Status || env.Data == nil {
		return nil, &GatewayError{Op: "verify", Err: fmt.Errorf("gateway rejected request: %s", env.Message)}
	}
	return env.Data, nil
}

func (c *PaystackClient) do(req *http.Request, op string, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("paystack request failed", zap.String("op", op), zap.Error(err))
		return &GatewayError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("paystack returned non-2xx",
			zap.String("op", op), zap.Int("status", resp.StatusCode))
		return &GatewayError{Op: op, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &GatewayError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
