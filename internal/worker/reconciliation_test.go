package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"freshmart-backend/internal/domain"
	"freshmart-backend/internal/infrastructure/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockOrderRepo implements repo.OrderRepo for testing
type MockOrderRepo struct {
	Unpaid    []domain.Order
	UnpaidErr error

	PaidReferences []string
	MarkPaidErr    error
}

func (m *MockOrderRepo) Create(context.Context, *domain.Order) error { return nil }

func (m *MockOrderRepo) FindByReference(context.Context, string) (*domain.Order, error) {
	return nil, nil
}

func (m *MockOrderRepo) MarkPaid(_ context.Context, reference string) error {
	if m.MarkPaidErr != nil {
		return m.MarkPaidErr
	}
	m.PaidReferences = append(m.PaidReferences, reference)
	return nil
}

func (m *MockOrderRepo) ListAll(context.Context) ([]domain.Order, error) { return nil, nil }

func (m *MockOrderRepo) FindUnpaidBefore(_ context.Context, _ time.Time, _ int) ([]domain.Order, error) {
	return m.Unpaid, m.UnpaidErr
}

// MockGateway implements payment.Gateway for testing
type MockGateway struct {
	Results map[string]*payment.VerifyData
	Errs    map[string]error
}

func (m *MockGateway) InitializeTransaction(context.Context, string, float64, payment.Metadata) (*payment.InitializeData, error) {
	return nil, errors.New("not implemented")
}

func (m *MockGateway) VerifyTransaction(_ context.Context, reference string) (*payment.VerifyData, error) {
	if err, ok := m.Errs[reference]; ok {
		return nil, err
	}
	return m.Results[reference], nil
}

func newTestWorker(orderRepo *MockOrderRepo, gateway *MockGateway) *ReconciliationWorker {
	return NewReconciliationWorker(orderRepo, gateway, time.Second, time.Minute, zap.NewNop())
}

func TestProcess_MarksConfirmedPayments(t *testing.T) {
	orderRepo := &MockOrderRepo{Unpaid: []domain.Order{
		{PaymentReference: "ref-paid"},
		{PaymentReference: "ref-abandoned"},
	}}
	gateway := &MockGateway{Results: map[string]*payment.VerifyData{
		"ref-paid":      {Status: "success", Amount: 10050},
		"ref-abandoned": {Status: "abandoned"},
	}}

	err := newTestWorker(orderRepo, gateway).process(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"ref-paid"}, orderRepo.PaidReferences)
}

func TestProcess_SkipsGatewayFailures(t *testing.T) {
	orderRepo := &MockOrderRepo{Unpaid: []domain.Order{
		{PaymentReference: "ref-broken"},
		{PaymentReference: "ref-paid"},
	}}
	gateway := &MockGateway{
		Results: map[string]*payment.VerifyData{"ref-paid": {Status: "success"}},
		Errs:    map[string]error{"ref-broken": &payment.GatewayError{Op: "verify", StatusCode: 502}},
	}

	err := newTestWorker(orderRepo, gateway).process(context.Background())

	// One broken reference must not stop the rest of the sweep.
	require.NoError(t, err)
	assert.Equal(t, []string{"ref-paid"}, orderRepo.PaidReferences)
}

func TestProcess_NoUnpaidOrders(t *testing.T) {
	orderRepo := &MockOrderRepo{}
	gateway := &MockGateway{}

	require.NoError(t, newTestWorker(orderRepo, gateway).process(context.Background()))
	assert.Empty(t, orderRepo.PaidReferences)
}

func TestProcess_StoreScanFailure(t *testing.T) {
	orderRepo := &MockOrderRepo{UnpaidErr: errors.New("connection reset")}

	err := newTestWorker(orderRepo, &MockGateway{}).process(context.Background())
	assert.Error(t, err)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	orderRepo := &MockOrderRepo{}
	worker := NewReconciliationWorker(orderRepo, &MockGateway{}, 10*time.Millisecond, time.Minute, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
}
