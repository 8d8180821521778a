// Package audit exposes read access to the order transition log: the
// per-order history lives in the orders vertical, this package serves the
// cross-order timeline used by back-office monitoring screens.
package audit

import "time"

// TimelineFilters narrows the audit timeline.
type TimelineFilters struct {
	From     time.Time
	To       time.Time
	ActorID  int64
	Role     string
	OrderID  int64
	Page     int
	PageSize int
}

// TimelineRow is one transition in the cross-order timeline.
type TimelineRow struct {
	At         time.Time `json:"at"`
	OrderID    int64     `json:"order_id"`
	ActorID    int64     `json:"actor_id"`
	ActorRole  string    `json:"actor_role"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
}

// PagingInfo carries pagination metadata.
type PagingInfo struct {
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasNext  bool `json:"has_next"`
	PrevPage int  `json:"prev_page,omitempty"`
	NextPage int  `json:"next_page,omitempty"`
}
