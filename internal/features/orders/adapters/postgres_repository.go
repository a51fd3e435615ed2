package adapters

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/features/orders/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

//go:embed schema.sql
var schemaSQL string

const uniqueViolation = "23505"

const selectOrder = `SELECT id, status, items::text, shipping::text, total::text,
	COALESCE(payment_session_id, ''), payment_status, created_at, updated_at,
	completed_at IS NOT NULL, COALESCE(completed_at, updated_at)
	FROM orders`

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresOrderRepository implements ports.OrderRepository on PostgreSQL.
type PostgresOrderRepository struct {
	pool DBPool
}

// NewPostgresOrderRepository creates a new PostgresOrderRepository.
func NewPostgresOrderRepository(pool DBPool) *PostgresOrderRepository {
	return &PostgresOrderRepository{pool: pool}
}

// Migrate creates the orders table when missing.
func (r *PostgresOrderRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply orders schema: %w", err)
	}
	return nil
}

func (r *PostgresOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	items, shipping, err := encodeDocuments(order)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO orders (id, status, items, shipping, total, payment_session_id, payment_status, created_at, updated_at, completed_at)
		VALUES ($1, $2, $3::jsonb, $4::jsonb, $5::numeric, NULLIF($6, ''), $7, $8, $9, $10)
	`, order.ID, string(order.Status), items, shipping, order.Total.String(),
		order.PaymentSessionID, order.PaymentStatus, order.CreatedAt, order.UpdatedAt, order.CompletedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", domain.ErrOrderExists, order.ID)
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

// Update writes the mutable lifecycle columns. Items, shipping and total are fixed at creation.
func (r *PostgresOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders
		SET status = $2, payment_session_id = NULLIF($3, ''), payment_status = $4, updated_at = $5, completed_at = $6
		WHERE id = $1
	`, order.ID, string(order.Status), order.PaymentSessionID, order.PaymentStatus, order.UpdatedAt, order.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, order.ID)
	}
	return nil
}

// Complete moves a pending row to completed. Zero affected rows means the order is missing or already completed.
func (r *PostgresOrderRepository) Complete(ctx context.Context, order *domain.Order) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders
		SET status = $2, payment_status = $3, updated_at = $4, completed_at = $5
		WHERE id = $1 AND status = $6
	`, order.ID, string(order.Status), order.PaymentStatus, order.UpdatedAt, order.CompletedAt, string(domain.OrderStatusPending))
	if err != nil {
		return fmt.Errorf("failed to complete order: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	if _, err := r.Get(ctx, order.ID); err != nil {
		return err
	}
	return fmt.Errorf("%w: %s", domain.ErrOrderNotPending, order.ID)
}

func (r *PostgresOrderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	order, err := scanOrder(r.pool.QueryRow(ctx, selectOrder+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return order, nil
}

func (r *PostgresOrderRepository) GetByPaymentSession(ctx context.Context, sessionID string) (*domain.Order, error) {
	order, err := scanOrder(r.pool.QueryRow(ctx, selectOrder+` WHERE payment_session_id = $1`, sessionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: session %s", domain.ErrOrderNotFound, sessionID)
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return order, nil
}

func (r *PostgresOrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, selectOrder+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		order               domain.Order
		status, items, ship string
		total               string
		completed           bool
		completedAt         time.Time
	)

	if err := row.Scan(&order.ID, &status, &items, &ship, &total,
		&order.PaymentSessionID, &order.PaymentStatus, &order.CreatedAt, &order.UpdatedAt,
		&completed, &completedAt); err != nil {
		return nil, err
	}

	order.Status = domain.OrderStatus(status)
	if err := json.Unmarshal([]byte(items), &order.Items); err != nil {
		return nil, fmt.Errorf("failed to decode items of %s: %w", order.ID, err)
	}
	if err := json.Unmarshal([]byte(ship), &order.Shipping); err != nil {
		return nil, fmt.Errorf("failed to decode shipping of %s: %w", order.ID, err)
	}

	amount, err := decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("failed to decode total of %s: %w", order.ID, err)
	}
	order.Total = amount

	if completed {
		order.CompletedAt = &completedAt
	}
	return &order, nil
}

func encodeDocuments(order *domain.Order) (string, string, error) {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode items: %w", err)
	}
	shipping, err := json.Marshal(order.Shipping)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode shipping: %w", err)
	}
	return string(items), string(shipping), nil
}
