package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"freshmart-backend/internal/domain"
)

const emailJSEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

// Notifier sends a best-effort order confirmation. Callers must treat
// failures as non-fatal.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, order *domain.Order) error
}

// NoopNotifier is used when EmailJS credentials are not configured.
type NoopNotifier struct{}

func (NoopNotifier) SendOrderConfirmation(context.Context, *domain.Order) error { return nil }

type EmailJSClient struct {
	serviceID  string
	templateID string
	publicKey  string
	endpoint   string
	httpClient *http.Client
}

func NewEmailJSClient(serviceID, templateID, publicKey string) *EmailJSClient {
	return &EmailJSClient{
		serviceID:  serviceID,
		templateID: templateID,
		publicKey:  publicKey,
		endpoint:   emailJSEndpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type emailJSRequest struct {
	ServiceID      string         `json:"service_id"`
	TemplateID     string         `json:"template_id"`
	PublicKey      string         `json:"public_key"`
	TemplateParams templateParams `json:"template_params"`
}

type templateParams struct {
	CustomerName     string `json:"customer_name"`
	CustomerEmail    string `json:"customer_email"`
	Address          string `json:"address"`
	Total            string `json:"total"`
	PaymentReference string `json:"payment_reference"`
	Cart             string `json:"cart"`
}

func (c *EmailJSClient) SendOrderConfirmation(ctx context.Context, order *domain.Order) error {
	cartJSON, err := json.MarshalIndent(order.Cart, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cart for email: %w", err)
	}

	payload, err := json.Marshal(emailJSRequest{
		ServiceID:  c.serviceID,
		TemplateID: c.templateID,
		PublicKey:  c.publicKey,
		TemplateParams: templateParams{
			CustomerName:     order.CustomerName,
			CustomerEmail:    order.CustomerEmail,
			Address:          order.Address,
			Total:            order.Total,
			PaymentReference: order.PaymentReference,
			Cart:             string(cartJSON),
		},
	})
	if err != nil {
		return fmt.Errorf("marshal email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("email service returned status %d", resp.StatusCode)
	}
	return nil
}
