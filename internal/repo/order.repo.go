package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"freshmart-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

type OrderRepo interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByReference(ctx context.Context, reference string) (*domain.Order, error)
	MarkPaid(ctx context.Context, reference string) error
	ListAll(ctx context.Context) ([]domain.Order, error)
	FindUnpaidBefore(ctx context.Context, before time.Time, limit int) ([]domain.Order, error)
}

type orderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) OrderRepo {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, order *domain.Order) error {
	cartJSON, err := json.Marshal(order.Cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	query := `INSERT INTO orders (id, customer_name, customer_email, address, cart, total, payment_reference, paid, origin, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = r.db.ExecContext(ctx, query,
		order.ID,
		order.CustomerName,
		order.CustomerEmail,
		order.Address,
		cartJSON,
		order.Total,
		order.PaymentReference,
		order.Paid,
		order.Origin,
		order.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateReference
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *orderRepo) FindByReference(ctx context.Context, reference string) (*domain.Order, error) {
	query := `SELECT id, customer_name, customer_email, address, cart, total, payment_reference, paid, origin, created_at
	          FROM orders WHERE payment_reference = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, reference))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by reference: %w", err)
	}
	return order, nil
}

// MarkPaid flips paid to true. Re-applying to an already paid order is a
// no-op and still succeeds.
func (r *orderRepo) MarkPaid(ctx context.Context, reference string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET paid = TRUE WHERE payment_reference = $1`, reference)
	if err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *orderRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	query := `SELECT id, customer_name, customer_email, address, cart, total, payment_reference, paid, origin, created_at
	          FROM orders ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

func (r *orderRepo) FindUnpaidBefore(ctx context.Context, before time.Time, limit int) ([]domain.Order, error) {
	query := `SELECT id, customer_name, customer_email, address, cart, total, payment_reference, paid, origin, created_at
	          FROM orders WHERE NOT paid AND created_at < $1 ORDER BY created_at LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, before, limit)
	if err != nil {
		return nil, fmt.Errorf("query unpaid orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var cartJSON []byte
	if err := row.Scan(
		&order.ID,
		&order.CustomerName,
		&order.CustomerEmail,
		&order.Address,
		&cartJSON,
		&order.Total,
		&order.PaymentReference,
		&order.Paid,
		&order.Origin,
		&order.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(cartJSON, &order.Cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	return &order, nil
}

func collectOrders(rows *sql.Rows) ([]domain.Order, error) {
	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return orders, nil
}
