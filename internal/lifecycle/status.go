// Package lifecycle defines the order status vocabulary, the global
// transition table and the per-role transition policies. The tables are
// immutable after process start; every status mutation in the system is
// validated against them.
package lifecycle

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Status is one value from the closed order lifecycle vocabulary.
type Status string

const (
	StatusCreated   Status = "created"
	StatusConfirmed Status = "confirmed"
	StatusPacked    Status = "packed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusReturned  Status = "returned"
	StatusCancelled Status = "cancelled"
)

// Statuses lists the full vocabulary in lifecycle order.
func Statuses() []Status {
	return []Status{
		StatusCreated,
		StatusConfirmed,
		StatusPacked,
		StatusShipped,
		StatusDelivered,
		StatusReturned,
		StatusCancelled,
	}
}

// transitions is the global transition table: for each status, the set of
// statuses reachable in one step regardless of actor. Terminal statuses map
// to an empty slice.
var transitions = map[Status][]Status{
	StatusCreated:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPacked, StatusCancelled},
	StatusPacked:    {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered, StatusReturned, StatusCancelled},
	StatusDelivered: {StatusReturned},
	StatusReturned:  {},
	StatusCancelled: {},
}

var titleCaser = cases.Title(language.English)

// Valid reports whether s belongs to the vocabulary.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether s has no outgoing edges in the global table.
func (s Status) Terminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// String returns the wire value of the status.
func (s Status) String() string {
	return string(s)
}

// DisplayName returns the human-readable label used by selection controls.
func (s Status) DisplayName() string {
	return titleCaser.String(string(s))
}

// NextStatuses returns the global-table successors of from. The returned
// slice is a copy; callers may mutate it freely. An unknown status yields nil.
func NextStatuses(from Status) []Status {
	next, ok := transitions[from]
	if !ok || len(next) == 0 {
		return nil
	}
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether from -> to is an edge of the global table.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
