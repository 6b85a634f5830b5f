package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"freshmart-backend/internal/domain"
	"freshmart-backend/internal/infrastructure/email"
	"freshmart-backend/internal/infrastructure/payment"
	"freshmart-backend/internal/repo"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderInput is a client-submitted order. Free-text fields are taken as-is;
// only the payment reference and cart shape are validated.
type OrderInput struct {
	CustomerName     string
	CustomerEmail    string
	Address          string
	Cart             []domain.CartItem
	Total            string
	PaymentReference string
}

type OrderService interface {
	// SaveOrder persists an order without gateway verification. The order
	// stays unpaid until the webhook or the reconciliation sweep confirms it.
	SaveOrder(ctx context.Context, in OrderInput) (*domain.Order, error)

	// VerifyAndSaveOrder re-verifies the payment with the gateway and only
	// then persists the order as paid.
	VerifyAndSaveOrder(ctx context.Context, in OrderInput) (*domain.Order, error)

	// HandleWebhookEvent applies an authenticated gateway notification.
	HandleWebhookEvent(ctx context.Context, event payment.WebhookEvent) error

	ListOrders(ctx context.Context) ([]domain.Order, error)
}

type orderService struct {
	orderRepo repo.OrderRepo
	gateway   payment.Gateway
	notifier  email.Notifier
	logger    *zap.Logger
}

func NewOrderService(orderRepo repo.OrderRepo, gateway payment.Gateway, notifier email.Notifier, logger *zap.Logger) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		gateway:   gateway,
		notifier:  notifier,
		logger:    logger,
	}
}

func validateInput(in OrderInput) error {
	if in.PaymentReference == "" || len(in.Cart) == 0 {
		return ErrInvalidOrderData
	}
	return nil
}

func newOrder(in OrderInput, paid bool, origin domain.OrderOrigin) *domain.Order {
	return &domain.Order{
		ID:               uuid.New(),
		CustomerName:     in.CustomerName,
		CustomerEmail:    in.CustomerEmail,
		Address:          in.Address,
		Cart:             in.Cart,
		Total:            in.Total,
		PaymentReference: in.PaymentReference,
		Paid:             paid,
		Origin:           origin,
		CreatedAt:        time.Now().UTC(),
	}
}

func (s *orderService) SaveOrder(ctx context.Context, in OrderInput) (*domain.Order, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	order := newOrder(in, false, domain.OriginUnverified)
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	// Email is optional, the order is already saved.
	if err := s.notifier.SendOrderConfirmation(ctx, order); err != nil {
		s.logger.Warn("order confirmation email failed",
			zap.String("reference", order.PaymentReference), zap.Error(err))
	}

	return order, nil
}

func (s *orderService) VerifyAndSaveOrder(ctx context.Context, in OrderInput) (*domain.Order, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	data, err := s.gateway.VerifyTransaction(ctx, in.PaymentReference)
	if err != nil {
		return nil, fmt.Errorf("verify transaction %s: %w", in.PaymentReference, err)
	}

	if data.Status != payment.StatusSuccess {
		return nil, ErrPaymentNotSuccessful
	}

	if !amountMatches(in.Total, data.Amount) {
		s.logger.Warn("order total does not match gateway amount",
			zap.String("reference", in.PaymentReference),
			zap.String("total", in.Total),
			zap.Int64("gateway_amount", data.Amount))
		return nil, ErrAmountMismatch
	}

	order := newOrder(in, true, domain.OriginVerified)
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// amountMatches compares the claimed total with the gateway's minor-unit
// amount: round(total * 100) must equal it exactly. An unparsable total can
// never match.
func amountMatches(total string, gatewayAmount int64) bool {
	d, err := decimal.NewFromString(total)
	if err != nil {
		return false
	}
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart() == gatewayAmount
}

func (s *orderService) HandleWebhookEvent(ctx context.Context, event payment.WebhookEvent) error {
	if event.Event != payment.EventChargeSuccess {
		return nil
	}

	reference := event.Data.Reference
	if _, err := s.orderRepo.FindByReference(ctx, reference); err != nil {
		if errors.Is(err, repo.ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("find order %s: %w", reference, err)
	}

	if err := s.orderRepo.MarkPaid(ctx, reference); err != nil {
		return fmt.Errorf("mark order %s paid: %w", reference, err)
	}

	s.logger.Info("order paid", zap.String("reference", reference))
	return nil
}

func (s *orderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.orderRepo.ListAll(ctx)
}
