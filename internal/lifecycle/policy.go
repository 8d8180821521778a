package lifecycle

import (
	"fmt"
	"sort"
)

// Role identifies an actor role known to the lifecycle policy. Roles are
// resolved by the surrounding authentication layer; anything outside this
// set resolves to an empty allowed set.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleFinance   Role = "finance"
	RoleDealer    Role = "dealer"
	RoleWarehouse Role = "warehouse"
)

type policyKind int

const (
	// policyFull grants the full global-table edge set for any status.
	policyFull policyKind = iota
	// policyOwnerFull grants the full edge set only when the actor owns
	// the order, otherwise nothing.
	policyOwnerFull
	// policyPipeline grants at most one fixed next status per status.
	policyPipeline
)

// rolePolicy narrows the global table for one role. Policies are data, not
// branching code: adding a role means adding an entry to policies below.
type rolePolicy struct {
	kind     policyKind
	pipeline map[Status]Status
}

// warehousePipeline is the strict walk the warehouse role drives. Statuses
// missing from the map (created, cancelled, returned) cannot be advanced by
// the warehouse at all.
var warehousePipeline = map[Status]Status{
	StatusConfirmed: StatusPacked,
	StatusPacked:    StatusShipped,
	StatusShipped:   StatusDelivered,
	StatusDelivered: StatusReturned,
}

var policies = map[Role]rolePolicy{
	RoleAdmin:     {kind: policyFull},
	RoleFinance:   {kind: policyFull},
	RoleDealer:    {kind: policyOwnerFull},
	RoleWarehouse: {kind: policyPipeline, pipeline: warehousePipeline},
}

// Roles lists every role covered by a policy, sorted for stable iteration.
func Roles() []Role {
	out := make([]Role, 0, len(policies))
	for role := range policies {
		out = append(out, role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AllowedNext returns the statuses the given role may move an order to from
// current. owner reports whether the actor owns the order in question.
// Unknown roles and uncovered (role, status) pairs yield nil: default-deny.
func AllowedNext(role Role, current Status, owner bool) []Status {
	policy, ok := policies[role]
	if !ok {
		return nil
	}
	switch policy.kind {
	case policyFull:
		return NextStatuses(current)
	case policyOwnerFull:
		if !owner {
			return nil
		}
		return NextStatuses(current)
	case policyPipeline:
		next, ok := policy.pipeline[current]
		if !ok {
			return nil
		}
		return []Status{next}
	}
	return nil
}

// RoleAllows reports whether role may execute current -> target.
func RoleAllows(role Role, current, target Status, owner bool) bool {
	for _, next := range AllowedNext(role, current, owner) {
		if next == target {
			return true
		}
	}
	return false
}

// ValidatePolicies verifies that every role policy is a subset of the global
// transition table. A pipeline entry pointing outside the global table is a
// configuration bug; callers run this at startup and fail fast.
func ValidatePolicies() error {
	for role, policy := range policies {
		if policy.kind != policyPipeline {
			// Full policies delegate to the global table and cannot widen it.
			continue
		}
		for from, to := range policy.pipeline {
			if !from.Valid() {
				return fmt.Errorf("lifecycle: role %s pipeline: %w: %s", role, ErrUnknownStatus, from)
			}
			if !CanTransition(from, to) {
				return fmt.Errorf("lifecycle: role %s pipeline widens global table: %s -> %s", role, from, to)
			}
		}
	}
	return nil
}
