// Package notify delivers order status-change notifications through an Asynq
// queue. Delivery is decoupled from the transition transaction: a failed or
// slow notification never rolls back a committed transition.
package notify

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the queue used for notification jobs.
	QueueDefault = "default"
	// TaskStatusChanged is the task type for order status-change notifications.
	TaskStatusChanged = "order:status_changed"
)

// StatusChangedPayload is the notification body: which order moved, from
// where to where, and when. DeliveryID makes redeliveries traceable.
type StatusChangedPayload struct {
	DeliveryID string    `json:"delivery_id"`
	OrderID    int64     `json:"order_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewStatusChangedTask constructs an Asynq task for the payload. A fresh
// delivery ID is assigned when the payload carries none.
func NewStatusChangedTask(payload StatusChangedPayload) (*asynq.Task, error) {
	if payload.DeliveryID == "" {
		payload.DeliveryID = uuid.NewString()
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStatusChanged, data), nil
}
