// Package integration fans committed lifecycle transitions out to downstream
// collaborators: the notification queue and the stock subsystem. Hook
// failures are logged and counted, never propagated back into the
// transition result.
package integration

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/meridian-erp/meridian-erp/internal/lifecycle"
	"github.com/meridian-erp/meridian-erp/internal/notify"
	"github.com/meridian-erp/meridian-erp/internal/orders"
)

// Notifier enqueues status-change notifications.
type Notifier interface {
	EnqueueStatusChanged(ctx context.Context, payload notify.StatusChangedPayload) (*asynq.TaskInfo, error)
}

// StockAdjuster reacts to shipment and return events. Stock bookkeeping is
// owned by the inventory subsystem; the lifecycle core only signals it.
type StockAdjuster interface {
	OrderShipped(ctx context.Context, orderID int64) error
	OrderReturned(ctx context.Context, orderID int64) error
}

// NoopStockAdjuster satisfies StockAdjuster for deployments where inventory
// consumes the notification stream instead.
type NoopStockAdjuster struct{}

func (NoopStockAdjuster) OrderShipped(ctx context.Context, orderID int64) error  { return nil }
func (NoopStockAdjuster) OrderReturned(ctx context.Context, orderID int64) error { return nil }

// FailureMetrics counts hook failures for observability.
type FailureMetrics interface {
	RecordNotificationFailure()
}

// Hooks implements orders.TransitionHooks.
type Hooks struct {
	notifier Notifier
	stock    StockAdjuster
	metrics  FailureMetrics
	logger   *slog.Logger
}

// NewHooks constructs the hook fan-out. notifier, stock and metrics may each
// be nil; absent collaborators are skipped.
func NewHooks(notifier Notifier, stock StockAdjuster, metrics FailureMetrics, logger *slog.Logger) *Hooks {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hooks{notifier: notifier, stock: stock, metrics: metrics, logger: logger}
}

// StatusChanged runs after a transition commits. Errors are swallowed here;
// a lifecycle transition is never invalidated by a downstream outage.
func (h *Hooks) StatusChanged(ctx context.Context, event orders.StatusChangedEvent) {
	if h == nil {
		return
	}
	if h.notifier != nil {
		_, err := h.notifier.EnqueueStatusChanged(ctx, notify.StatusChangedPayload{
			OrderID:    event.OrderID,
			FromStatus: event.FromStatus.String(),
			ToStatus:   event.ToStatus.String(),
			OccurredAt: event.OccurredAt,
		})
		if err != nil {
			if h.metrics != nil {
				h.metrics.RecordNotificationFailure()
			}
			h.logger.Warn("enqueue status notification",
				slog.Int64("order_id", event.OrderID),
				slog.Any("error", err))
		}
	}
	if h.stock != nil {
		if err := h.adjustStock(ctx, event); err != nil {
			h.logger.Warn("stock adjustment hook",
				slog.Int64("order_id", event.OrderID),
				slog.String("to", event.ToStatus.String()),
				slog.Any("error", err))
		}
	}
}

func (h *Hooks) adjustStock(ctx context.Context, event orders.StatusChangedEvent) error {
	switch event.ToStatus {
	case lifecycle.StatusShipped:
		return h.stock.OrderShipped(ctx, event.OrderID)
	case lifecycle.StatusReturned:
		return h.stock.OrderReturned(ctx, event.OrderID)
	default:
		return nil
	}
}
