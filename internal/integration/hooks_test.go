package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"

	"github.com/meridian-erp/meridian-erp/internal/lifecycle"
	"github.com/meridian-erp/meridian-erp/internal/notify"
	"github.com/meridian-erp/meridian-erp/internal/orders"
)

type stubNotifier struct {
	payloads []notify.StatusChangedPayload
	err      error
}

func (s *stubNotifier) EnqueueStatusChanged(ctx context.Context, payload notify.StatusChangedPayload) (*asynq.TaskInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.payloads = append(s.payloads, payload)
	return &asynq.TaskInfo{}, nil
}

type stubStock struct {
	shipped  []int64
	returned []int64
}

func (s *stubStock) OrderShipped(ctx context.Context, orderID int64) error {
	s.shipped = append(s.shipped, orderID)
	return nil
}

func (s *stubStock) OrderReturned(ctx context.Context, orderID int64) error {
	s.returned = append(s.returned, orderID)
	return nil
}

type failureCounter struct {
	count int
}

func (f *failureCounter) RecordNotificationFailure() { f.count++ }

func event(orderID int64, from, to lifecycle.Status) orders.StatusChangedEvent {
	return orders.StatusChangedEvent{
		OrderID:    orderID,
		ActorID:    1,
		ActorRole:  lifecycle.RoleAdmin,
		FromStatus: from,
		ToStatus:   to,
		OccurredAt: time.Now().UTC(),
	}
}

func TestHooksEnqueueNotification(t *testing.T) {
	notifier := &stubNotifier{}
	hooks := NewHooks(notifier, nil, nil, nil)

	hooks.StatusChanged(context.Background(), event(7, lifecycle.StatusCreated, lifecycle.StatusConfirmed))

	assert.Len(t, notifier.payloads, 1)
	assert.Equal(t, int64(7), notifier.payloads[0].OrderID)
	assert.Equal(t, "confirmed", notifier.payloads[0].ToStatus)
}

func TestHooksSwallowNotifierFailure(t *testing.T) {
	notifier := &stubNotifier{err: errors.New("redis down")}
	metrics := &failureCounter{}
	hooks := NewHooks(notifier, nil, metrics, nil)

	// Must not panic or propagate; only counted.
	hooks.StatusChanged(context.Background(), event(8, lifecycle.StatusPacked, lifecycle.StatusShipped))
	assert.Equal(t, 1, metrics.count)
}

func TestHooksSignalStockOnShipmentAndReturn(t *testing.T) {
	stock := &stubStock{}
	hooks := NewHooks(nil, stock, nil, nil)

	hooks.StatusChanged(context.Background(), event(9, lifecycle.StatusPacked, lifecycle.StatusShipped))
	hooks.StatusChanged(context.Background(), event(9, lifecycle.StatusShipped, lifecycle.StatusReturned))
	hooks.StatusChanged(context.Background(), event(9, lifecycle.StatusCreated, lifecycle.StatusConfirmed))

	assert.Equal(t, []int64{9}, stock.shipped)
	assert.Equal(t, []int64{9}, stock.returned)
}
