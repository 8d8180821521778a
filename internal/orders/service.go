package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-erp/meridian-erp/internal/lifecycle"
	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// TransitionHooks receives post-commit side effects. Implementations must not
// fail the transition: delivery problems are theirs to log and observe.
type TransitionHooks interface {
	StatusChanged(ctx context.Context, event StatusChangedEvent)
}

// TransitionMetrics records transition outcomes for observability.
type TransitionMetrics interface {
	RecordTransition(from, to, outcome string)
}

// Service is the only code path permitted to mutate an order's status. It
// validates a requested transition against the global table and the acting
// role's policy, persists the change atomically with its audit entry, and
// invokes post-commit hooks.
type Service struct {
	repo    Repository
	hooks   TransitionHooks
	metrics TransitionMetrics
	logger  *slog.Logger
}

// NewService constructs the transition service. hooks and metrics may be nil.
func NewService(repo Repository, hooks TransitionHooks, metrics TransitionMetrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, hooks: hooks, metrics: metrics, logger: logger}
}

// Transition attempts to move the order to target on behalf of actor.
// Validation rejections are returned verbatim; a compare-and-swap miss is
// retried exactly once against the re-read status before surfacing
// ErrConcurrentModification.
func (s *Service) Transition(ctx context.Context, orderID int64, actor shared.Actor, target lifecycle.Status) (*Order, *AuditEntry, error) {
	const attempts = 2

	var (
		lastErr  error
		lastFrom lifecycle.Status
	)
	for attempt := 0; attempt < attempts; attempt++ {
		order, err := s.repo.Get(ctx, orderID)
		if err != nil {
			return nil, nil, err
		}
		lastFrom = order.Status

		if err := checkTransition(order.Status, target, actor); err != nil {
			s.record(order.Status, target, "rejected")
			return nil, nil, err
		}

		entry := AuditEntry{
			ID:         uuid.New(),
			OrderID:    order.ID,
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			FromStatus: order.Status,
			ToStatus:   target,
			OccurredAt: time.Now().UTC(),
		}

		updated, err := s.repo.ApplyTransition(ctx, entry)
		if err != nil {
			if errors.Is(err, ErrConcurrentModification) {
				lastErr = err
				continue
			}
			return nil, nil, err
		}

		s.record(entry.FromStatus, entry.ToStatus, "committed")
		s.logger.Info("order transition committed",
			slog.Int64("order_id", order.ID),
			slog.String("from", entry.FromStatus.String()),
			slog.String("to", entry.ToStatus.String()),
			slog.String("actor_role", string(actor.Role)),
			slog.Int64("actor_id", actor.ID))

		if s.hooks != nil {
			s.hooks.StatusChanged(ctx, StatusChangedEvent{
				OrderID:    order.ID,
				ActorID:    actor.ID,
				ActorRole:  actor.Role,
				FromStatus: entry.FromStatus,
				ToStatus:   entry.ToStatus,
				OccurredAt: entry.OccurredAt,
			})
		}
		return updated, &entry, nil
	}

	s.record(lastFrom, target, "contention")
	return nil, nil, lastErr
}

// ReachableStatuses returns the statuses actor may currently move the order
// to, computed with the same lookups Transition uses. The handler renders
// these as the option list; the service re-validates anyway.
func (s *Service) ReachableStatuses(ctx context.Context, orderID int64, actor shared.Actor) ([]StatusOption, error) {
	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	options := make([]StatusOption, 0, 3)
	for _, next := range lifecycle.AllowedNext(actor.Role, order.Status, actor.Owner) {
		// Policies are validated as subsets at startup; the global check
		// here mirrors the service path rather than trusting that.
		if !lifecycle.CanTransition(order.Status, next) {
			continue
		}
		options = append(options, StatusOption{Status: next, Label: next.DisplayName()})
	}
	return options, nil
}

// History returns the order's transition audit entries, oldest first.
func (s *Service) History(ctx context.Context, orderID int64) ([]AuditEntry, error) {
	if _, err := s.repo.Get(ctx, orderID); err != nil {
		return nil, err
	}
	return s.repo.AuditEntries(ctx, orderID)
}

// Get returns the status facet of a single order.
func (s *Service) Get(ctx context.Context, orderID int64) (*Order, error) {
	return s.repo.Get(ctx, orderID)
}

// checkTransition applies the two validation layers in order: global table
// first, then role policy. The returned error identifies the rejecting layer.
func checkTransition(current, target lifecycle.Status, actor shared.Actor) error {
	if !target.Valid() {
		return fmt.Errorf("%w: %s", lifecycle.ErrUnknownStatus, target)
	}
	if !lifecycle.CanTransition(current, target) {
		return fmt.Errorf("%w: %s -> %s", lifecycle.ErrIllegalTransition, current, target)
	}
	if !lifecycle.RoleAllows(actor.Role, current, target, actor.Owner) {
		return fmt.Errorf("%w: role %s: %s -> %s", lifecycle.ErrForbiddenForRole, actor.Role, current, target)
	}
	return nil
}

func (s *Service) record(from, to lifecycle.Status, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordTransition(from.String(), to.String(), outcome)
	}
}
