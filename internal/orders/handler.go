package orders

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-erp/meridian-erp/internal/lifecycle"
	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
	"github.com/meridian-erp/meridian-erp/internal/shared"
)

const idempotencyModule = "orders"

// Handler exposes the lifecycle operations over HTTP.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	validate    *validator.Validate
	idempotency *shared.IdempotencyStore
}

// NewHandler constructs the orders HTTP handler. idempotency may be nil, in
// which case Idempotency-Key headers are ignored.
func NewHandler(logger *slog.Logger, service *Service, idempotency *shared.IdempotencyStore) *Handler {
	return &Handler{
		logger:      logger,
		service:     service,
		validate:    validator.New(),
		idempotency: idempotency,
	}
}

// Transition handles POST /orders/{id}/status.
func (h *Handler) Transition(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.orderID(w, r)
	if !ok {
		return
	}
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "actor headers missing")
		return
	}

	var req TransitionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	idemKey := r.Header.Get("Idempotency-Key")
	if idemKey != "" && h.idempotency != nil {
		if err := h.idempotency.CheckAndInsert(r.Context(), idemKey, idempotencyModule); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				httpx.Problem(w, http.StatusConflict, "Duplicate Request", "this transition was already submitted")
				return
			}
			h.logger.Error("idempotency check failed", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}
	}

	order, entry, err := h.service.Transition(r.Context(), orderID, actor, lifecycle.Status(req.TargetStatus))
	if err != nil {
		// A rejected attempt did not consume the idempotency key.
		if idemKey != "" && h.idempotency != nil {
			if delErr := h.idempotency.Delete(r.Context(), idemKey, idempotencyModule); delErr != nil {
				h.logger.Warn("release idempotency key", slog.Any("error", delErr))
			}
		}
		h.respondTransitionError(w, err)
		return
	}

	dto := toAuditDTO(*entry)
	httpx.JSON(w, http.StatusOK, TransitionResponse{Order: order, Audit: &dto})
}

// StatusOptions handles GET /orders/{id}/status/options.
func (h *Handler) StatusOptions(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.orderID(w, r)
	if !ok {
		return
	}
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "actor headers missing")
		return
	}

	order, err := h.service.Get(r.Context(), orderID)
	if err != nil {
		h.respondTransitionError(w, err)
		return
	}
	options, err := h.service.ReachableStatuses(r.Context(), orderID, actor)
	if err != nil {
		h.respondTransitionError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, StatusOptionsResponse{
		OrderID: order.ID,
		Status:  order.Status.String(),
		Options: options,
	})
}

// History handles GET /orders/{id}/history.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.orderID(w, r)
	if !ok {
		return
	}
	entries, err := h.service.History(r.Context(), orderID)
	if err != nil {
		h.respondTransitionError(w, err)
		return
	}
	dtos := make([]AuditEntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, toAuditDTO(e))
	}
	httpx.JSON(w, http.StatusOK, HistoryResponse{OrderID: orderID, Entries: dtos})
}

func (h *Handler) orderID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "order id must be a positive integer")
		return 0, false
	}
	return id, true
}

// respondTransitionError maps the lifecycle error taxonomy onto distinct HTTP
// responses so the UI can render an accurate, role-aware message.
func (h *Handler) respondTransitionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrIllegalTransition), errors.Is(err, lifecycle.ErrUnknownStatus):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Illegal Transition", err.Error())
	case errors.Is(err, lifecycle.ErrForbiddenForRole):
		httpx.Problem(w, http.StatusForbidden, "Forbidden For Role", err.Error())
	case errors.Is(err, ErrConcurrentModification):
		httpx.Problem(w, http.StatusConflict, "Concurrent Modification", err.Error())
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "order not found")
	default:
		h.logger.Error("transition request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
