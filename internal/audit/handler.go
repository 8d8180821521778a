package audit

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/singleflight"

	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
)

// Handler serves the audit timeline endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
	group   singleflight.Group
}

// NewHandler constructs the audit HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches the audit routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/audit/timeline", h.Timeline)
}

// TimelineResponse is the wire shape of one timeline page.
type TimelineResponse struct {
	Rows   []TimelineRow `json:"rows"`
	Paging PagingInfo    `json:"paging"`
}

// Timeline handles GET /audit/timeline. Identical concurrent queries are
// collapsed into a single repository read.
func (h *Handler) Timeline(w http.ResponseWriter, r *http.Request) {
	filters := parseFilters(r)

	key := fmt.Sprintf("%d|%d|%d|%s|%d|%d|%d",
		filters.From.Unix(), filters.To.Unix(), filters.ActorID,
		filters.Role, filters.OrderID, filters.Page, filters.PageSize)

	resultCh := h.group.DoChan(key, func() (interface{}, error) {
		return h.service.Timeline(r.Context(), filters)
	})
	select {
	case <-r.Context().Done():
		httpx.Problem(w, http.StatusRequestTimeout, "Request Cancelled", "")
		return
	case res := <-resultCh:
		if res.Err != nil {
			h.logger.Error("audit timeline failed", slog.Any("error", res.Err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}
		result := res.Val.(Result)
		rows := result.Rows
		if rows == nil {
			rows = []TimelineRow{}
		}
		httpx.JSON(w, http.StatusOK, TimelineResponse{Rows: rows, Paging: result.Paging})
	}
}

func parseFilters(r *http.Request) TimelineFilters {
	q := r.URL.Query()
	filters := TimelineFilters{
		Role: q.Get("role"),
	}
	if v, err := strconv.ParseInt(q.Get("actor_id"), 10, 64); err == nil {
		filters.ActorID = v
	}
	if v, err := strconv.ParseInt(q.Get("order_id"), 10, 64); err == nil {
		filters.OrderID = v
	}
	if v, err := strconv.Atoi(q.Get("page")); err == nil {
		filters.Page = v
	}
	if v, err := strconv.Atoi(q.Get("page_size")); err == nil {
		filters.PageSize = v
	}
	if t, err := time.Parse(time.RFC3339, q.Get("from")); err == nil {
		filters.From = t
	}
	if t, err := time.Parse(time.RFC3339, q.Get("to")); err == nil {
		filters.To = t
	}
	return filters
}
