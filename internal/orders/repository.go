package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian-erp/internal/platform/db"
)

var (
	// ErrNotFound indicates the order does not exist.
	ErrNotFound = errors.New("orders: record not found")
	// ErrConcurrentModification indicates the order status changed between
	// validation and commit. Safe to retry once after re-reading the status.
	ErrConcurrentModification = errors.New("orders: status changed concurrently")
)

// Repository provides storage access for the order status facet and the
// transition audit log.
type Repository interface {
	Get(ctx context.Context, id int64) (*Order, error)
	// ApplyTransition persists entry.ToStatus on the order identified by
	// entry.OrderID and appends the audit entry, atomically. The status
	// write is a compare-and-swap against entry.FromStatus; if the stored
	// status no longer matches, ErrConcurrentModification is returned and
	// nothing is written.
	ApplyTransition(ctx context.Context, entry AuditEntry) (*Order, error)
	AuditEntries(ctx context.Context, orderID int64) ([]AuditEntry, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Postgres-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Get(ctx context.Context, id int64) (*Order, error) {
	const query = `SELECT id, dealer_id, status, created_at, updated_at FROM orders WHERE id = $1`
	var o Order
	err := r.pool.QueryRow(ctx, query, id).Scan(&o.ID, &o.DealerID, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("orders: get order: %w", err)
	}
	return &o, nil
}

func (r *repository) ApplyTransition(ctx context.Context, entry AuditEntry) (*Order, error) {
	var updated Order
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		const update = `
			UPDATE orders
			SET status = $1, updated_at = NOW()
			WHERE id = $2 AND status = $3
			RETURNING id, dealer_id, status, created_at, updated_at`
		err := tx.QueryRow(ctx, update, entry.ToStatus, entry.OrderID, entry.FromStatus).
			Scan(&updated.ID, &updated.DealerID, &updated.Status, &updated.CreatedAt, &updated.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return r.classifyMissedUpdate(ctx, tx, entry.OrderID)
			}
			return fmt.Errorf("orders: update status: %w", err)
		}

		const insert = `
			INSERT INTO order_status_log (id, order_id, actor_id, actor_role, from_status, to_status, occurred_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`
		if _, err := tx.Exec(ctx, insert,
			entry.ID, entry.OrderID, entry.ActorID, entry.ActorRole,
			entry.FromStatus, entry.ToStatus, entry.OccurredAt); err != nil {
			var pgErr *pgconn.PgError
			// A duplicate entry id means this exact write already landed,
			// typically a replay after a dropped response.
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return ErrConcurrentModification
			}
			return fmt.Errorf("orders: append audit entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// classifyMissedUpdate decides whether a zero-row CAS update means the order
// is gone or its status moved underneath us.
func (r *repository) classifyMissedUpdate(ctx context.Context, tx pgx.Tx, orderID int64) error {
	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&exists); err != nil {
		return fmt.Errorf("orders: check order exists: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrConcurrentModification
}

func (r *repository) AuditEntries(ctx context.Context, orderID int64) ([]AuditEntry, error) {
	const query = `
		SELECT id, order_id, actor_id, actor_role, from_status, to_status, occurred_at
		FROM order_status_log
		WHERE order_id = $1
		ORDER BY occurred_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("orders: list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.OrderID, &e.ActorID, &e.ActorRole, &e.FromStatus, &e.ToStatus, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("orders: scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("orders: iterate audit entries: %w", err)
	}
	return entries, nil
}
