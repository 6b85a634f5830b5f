package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"freshmart-backend/internal/database"
	"freshmart-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) OrderRepo {
	if testing.Short() {
		t.Skip("skipping container-backed repository test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.NewPostgres(connStr)
	require.NoError(t, err)

	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		db.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	return NewOrderRepo(db)
}

func newTestOrder(reference string) *domain.Order {
	return &domain.Order{
		ID:               uuid.New(),
		CustomerName:     "Ada Obi",
		CustomerEmail:    "ada@example.com",
		Address:          "12 Market Road, Lagos",
		Cart:             []domain.CartItem{{Name: "Whole Chicken", Price: 45.00, Quantity: 2}},
		Total:            "100.50",
		PaymentReference: reference,
		Paid:             false,
		Origin:           domain.OriginUnverified,
		CreatedAt:        time.Now().UTC(),
	}
}

func TestCreateAndFindByReference(t *testing.T) {
	orderRepo := setupTestDB(t)
	ctx := context.Background()

	order := newTestOrder("ref-roundtrip")
	require.NoError(t, orderRepo.Create(ctx, order))

	fetched, err := orderRepo.FindByReference(ctx, "ref-roundtrip")
	require.NoError(t, err)
	assert.Equal(t, order.ID, fetched.ID)
	assert.Equal(t, order.CustomerName, fetched.CustomerName)
	assert.Equal(t, order.Total, fetched.Total)
	assert.Equal(t, domain.OriginUnverified, fetched.Origin)
	assert.False(t, fetched.Paid)
	require.Len(t, fetched.Cart, 1)
	assert.Equal(t, "Whole Chicken", fetched.Cart[0].Name)
}

func TestCreate_DuplicateReference(t *testing.T) {
	orderRepo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, orderRepo.Create(ctx, newTestOrder("ref-dup")))

	err := orderRepo.Create(ctx, newTestOrder("ref-dup"))
	assert.ErrorIs(t, err, ErrDuplicateReference)

	// The winner's record is untouched.
	fetched, err := orderRepo.FindByReference(ctx, "ref-dup")
	require.NoError(t, err)
	assert.NotNil(t, fetched)
}

func TestCreate_ConcurrentDuplicates(t *testing.T) {
	orderRepo := setupTestDB(t)
	ctx := context.Background()

	const attempts = 8
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			errs <- orderRepo.Create(ctx, newTestOrder("ref-race"))
		}()
	}

	var created, rejected int
	for i := 0; i < attempts; i++ {
		switch err := <-errs; {
		case err == nil:
			created++
		default:
			require.ErrorIs(t, err, ErrDuplicateReference)
			rejected++
		}
	}

	assert.Equal(t, 1, created)
	assert.Equal(t, attempts-1, rejected)
}

func TestFindByReference_NotFound(t *testing.T) {
	orderRepo := setupTestDB(t)

	_, err := orderRepo.FindByReference(context.Background(), "no-such-ref")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestMarkPaid_Idempotent(t *testing.T) {
	orderRepo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, orderRepo.Create(ctx, newTestOrder("ref-paid")))

	require.NoError(t, orderRepo.MarkPaid(ctx, "ref-paid"))
	require.NoError(t, orderRepo.MarkPaid(ctx, "ref-paid"))

	fetched, err := orderRepo.FindByReference(ctx, "ref-paid")
	require.NoError(t, err)
	assert.True(t, fetched.Paid)
}

func TestMarkPaid_UnknownReference(t *testing.T) {
	orderRepo := setupTestDB(t)

	err := orderRepo.MarkPaid(context.Background(), "no-such-ref")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestListAll_NewestFirst(t *testing.T) {
	orderRepo := setupTestDB(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	// Insert out of chronological order.
	for i, offset := range []time.Duration{10 * time.Minute, 30 * time.Minute, 20 * time.Minute} {
		order := newTestOrder(fmt.Sprintf("ref-list-%d", i))
		order.CreatedAt = base.Add(offset)
		require.NoError(t, orderRepo.Create(ctx, order))
	}

	orders, err := orderRepo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, "ref-list-1", orders[0].PaymentReference)
	assert.Equal(t, "ref-list-2", orders[1].PaymentReference)
	assert.Equal(t, "ref-list-0", orders[2].PaymentReference)
}

func TestFindUnpaidBefore(t *testing.T) {
	orderRepo := setupTestDB(t)
	ctx := context.Background()

	old := newTestOrder("ref-old-unpaid")
	old.CreatedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, orderRepo.Create(ctx, old))

	oldPaid := newTestOrder("ref-old-paid")
	oldPaid.CreatedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, orderRepo.Create(ctx, oldPaid))
	require.NoError(t, orderRepo.MarkPaid(ctx, "ref-old-paid"))

	fresh := newTestOrder("ref-fresh-unpaid")
	require.NoError(t, orderRepo.Create(ctx, fresh))

	cutoff := time.Now().UTC().Add(-10 * time.Minute)
	orders, err := orderRepo.FindUnpaidBefore(ctx, cutoff, 50)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "ref-old-unpaid", orders[0].PaymentReference)
}
