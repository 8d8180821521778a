package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TimelineQuery is the storage-level window request built by the service.
type TimelineQuery struct {
	Filters TimelineFilters
	Offset  int
	Limit   int
}

// Repository provides windowed reads over the transition log.
type Repository interface {
	TimelineWindow(ctx context.Context, q TimelineQuery) ([]TimelineRow, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Postgres-backed timeline repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) TimelineWindow(ctx context.Context, q TimelineQuery) ([]TimelineRow, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	appendCond := func(cond string, value interface{}) {
		conditions = append(conditions, fmt.Sprintf(cond, argPos))
		args = append(args, value)
		argPos++
	}

	if !q.Filters.From.IsZero() {
		appendCond("occurred_at >= $%d", q.Filters.From)
	}
	if !q.Filters.To.IsZero() {
		appendCond("occurred_at <= $%d", q.Filters.To)
	}
	if q.Filters.ActorID != 0 {
		appendCond("actor_id = $%d", q.Filters.ActorID)
	}
	if q.Filters.Role != "" {
		appendCond("actor_role = $%d", q.Filters.Role)
	}
	if q.Filters.OrderID != 0 {
		appendCond("order_id = $%d", q.Filters.OrderID)
	}

	query := `SELECT occurred_at, order_id, actor_id, actor_role, from_status, to_status FROM order_status_log`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY occurred_at DESC OFFSET $%d LIMIT $%d", argPos, argPos+1)
	args = append(args, q.Offset, q.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("audit: timeline window: %w", err)
	}
	defer rows.Close()

	var result []TimelineRow
	for rows.Next() {
		var row TimelineRow
		if err := rows.Scan(&row.At, &row.OrderID, &row.ActorID, &row.ActorRole, &row.FromStatus, &row.ToStatus); err != nil {
			return nil, fmt.Errorf("audit: scan timeline row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit: iterate timeline rows: %w", err)
	}
	return result, nil
}
