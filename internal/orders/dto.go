package orders

import "time"

// TransitionRequest is the body of POST /api/orders/{id}/status.
type TransitionRequest struct {
	TargetStatus string `json:"target_status" validate:"required,oneof=created confirmed packed shipped delivered returned cancelled"`
}

// TransitionResponse returns the updated order plus audit metadata.
type TransitionResponse struct {
	Order *Order         `json:"order"`
	Audit *AuditEntryDTO `json:"audit"`
}

// AuditEntryDTO is the wire shape of one audit entry.
type AuditEntryDTO struct {
	ID         string    `json:"id"`
	OrderID    int64     `json:"order_id"`
	ActorID    int64     `json:"actor_id"`
	ActorRole  string    `json:"actor_role"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// StatusOptionsResponse lists the statuses currently selectable by the actor.
type StatusOptionsResponse struct {
	OrderID int64          `json:"order_id"`
	Status  string         `json:"status"`
	Options []StatusOption `json:"options"`
}

// HistoryResponse is the ordered transition history of one order.
type HistoryResponse struct {
	OrderID int64           `json:"order_id"`
	Entries []AuditEntryDTO `json:"entries"`
}

func toAuditDTO(e AuditEntry) AuditEntryDTO {
	return AuditEntryDTO{
		ID:         e.ID.String(),
		OrderID:    e.OrderID,
		ActorID:    e.ActorID,
		ActorRole:  string(e.ActorRole),
		FromStatus: e.FromStatus.String(),
		ToStatus:   e.ToStatus.String(),
		OccurredAt: e.OccurredAt,
	}
}
