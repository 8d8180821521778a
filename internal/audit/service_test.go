package audit

import (
	"context"
	"testing"
	"time"
)

type stubTimelineRepo struct {
	rows     []TimelineRow
	lastCall TimelineQuery
}

func (s *stubTimelineRepo) TimelineWindow(ctx context.Context, q TimelineQuery) ([]TimelineRow, error) {
	s.lastCall = q
	return s.rows, nil
}

func mockRow(at string, orderID int64) TimelineRow {
	ts, _ := time.Parse(time.RFC3339, at)
	return TimelineRow{
		At:         ts,
		OrderID:    orderID,
		ActorID:    1,
		ActorRole:  "admin",
		FromStatus: "created",
		ToStatus:   "confirmed",
	}
}

func TestServiceTimelinePaging(t *testing.T) {
	repo := &stubTimelineRepo{
		rows: []TimelineRow{
			mockRow("2026-03-10T10:00:00Z", 1),
			mockRow("2026-03-09T09:00:00Z", 2),
			mockRow("2026-03-08T08:00:00Z", 3),
		},
	}
	svc := NewService(repo)
	result, err := svc.Timeline(context.Background(), TimelineFilters{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(result.Rows))
	}
	if !result.Paging.HasNext {
		t.Fatalf("expected hasNext true")
	}
	if result.Paging.NextPage != 2 {
		t.Fatalf("expected next page 2, got %d", result.Paging.NextPage)
	}
	if repo.lastCall.Limit != 3 {
		t.Fatalf("expected limit 3, got %d", repo.lastCall.Limit)
	}
	if repo.lastCall.Offset != 0 {
		t.Fatalf("expected offset 0, got %d", repo.lastCall.Offset)
	}
}

func TestServiceTimelineClampsPageSize(t *testing.T) {
	repo := &stubTimelineRepo{}
	svc := NewService(repo)

	if _, err := svc.Timeline(context.Background(), TimelineFilters{Page: 3, PageSize: 500}); err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if repo.lastCall.Limit != 51 {
		t.Fatalf("expected limit 51, got %d", repo.lastCall.Limit)
	}
	if repo.lastCall.Offset != 100 {
		t.Fatalf("expected offset 100, got %d", repo.lastCall.Offset)
	}
}

func TestServiceTimelineDefaults(t *testing.T) {
	repo := &stubTimelineRepo{}
	svc := NewService(repo)

	result, err := svc.Timeline(context.Background(), TimelineFilters{})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if result.Paging.Page != 1 || result.Paging.PageSize != 20 {
		t.Fatalf("unexpected paging defaults: %+v", result.Paging)
	}
	if result.Paging.HasNext {
		t.Fatalf("expected hasNext false for empty result")
	}
}

func TestServiceTimelineRequiresRepository(t *testing.T) {
	svc := NewService(nil)
	if _, err := svc.Timeline(context.Background(), TimelineFilters{}); err == nil {
		t.Fatalf("expected error for missing repository")
	}
}
