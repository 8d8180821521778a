package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/meridian-erp/meridian-erp/internal/lifecycle"
)

// Order is the status-relevant facet of a dealer order. The rest of the order
// document (lines, amounts, delivery details) is owned by the order-management
// subsystem; this core only ever mutates Status, and only through the
// transition service.
type Order struct {
	ID        int64            `json:"id" db:"id"`
	DealerID  int64            `json:"dealer_id" db:"dealer_id"`
	Status    lifecycle.Status `json:"status" db:"status"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" db:"updated_at"`
}

// AuditEntry is the immutable record of one executed transition. Entries are
// created exactly once per successful transition and never updated or deleted.
type AuditEntry struct {
	ID         uuid.UUID        `json:"id" db:"id"`
	OrderID    int64            `json:"order_id" db:"order_id"`
	ActorID    int64            `json:"actor_id" db:"actor_id"`
	ActorRole  lifecycle.Role   `json:"actor_role" db:"actor_role"`
	FromStatus lifecycle.Status `json:"from_status" db:"from_status"`
	ToStatus   lifecycle.Status `json:"to_status" db:"to_status"`
	OccurredAt time.Time        `json:"occurred_at" db:"occurred_at"`
}

// StatusChangedEvent is handed to post-transition hooks after the new status
// has been committed.
type StatusChangedEvent struct {
	OrderID    int64
	ActorID    int64
	ActorRole  lifecycle.Role
	FromStatus lifecycle.Status
	ToStatus   lifecycle.Status
	OccurredAt time.Time
}

// StatusOption is one selectable target status, shaped for UI controls.
type StatusOption struct {
	Status lifecycle.Status `json:"status"`
	Label  string           `json:"label"`
}
