// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"

	"github.com/rsvpkit/rsvpd/internal/admission"
	"github.com/rsvpkit/rsvpd/internal/model"
	"github.com/rsvpkit/rsvpd/internal/repository"
	"github.com/rsvpkit/rsvpd/internal/service"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// userIDHeader carries the opaque user identifier resolved by the external
// identity collaborator (e.g. an auth proxy). The service never resolves
// identity itself.
const userIDHeader = "X-User-ID"

// EventHandler holds all HTTP handlers for the RSVP API.
type EventHandler struct {
	events  *service.EventService
	queries *service.QueryService
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(events *service.EventService, queries *service.QueryService) *EventHandler {
	return &EventHandler{events: events, queries: queries}
}

// Routes mounts all event routes on a fresh chi router.
func (h *EventHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateEvent)
	r.Get("/", h.ListEvents)
	r.Get("/{id}", h.GetEvent)
	r.Delete("/{id}", h.DeleteEvent)
	r.Post("/{id}/rsvp", h.Rsvp)
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func currentUser(r *http.Request) string {
	return r.Header.Get(userIDHeader)
}

// CreateEvent handles POST /events.
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.events.CreateEvent(r.Context(), req)
	if err != nil {
		var vErr *model.ValidationError
		if errors.As(err, &vErr) {
			writeError(w, http.StatusBadRequest, vErr.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create event")
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

// ListEvents handles GET /events, returning upcoming events ascending by
// date with the requester's registration state.
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	views, err := h.queries.ListUpcomingEvents(r.Context(), time.Now().UTC(), currentUser(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}

	// Empty array rather than null for client compatibility.
	if views == nil {
		views = []model.EventView{}
	}
	writeJSON(w, http.StatusOK, views)
}

// GetEvent handles GET /events/{id}.
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	view, err := h.queries.GetEvent(r.Context(), chi.URLParam(r, "id"), currentUser(r))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get event")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// DeleteEvent handles DELETE /events/{id}, removing the event and all its
// registrations.
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	err := h.events.DeleteEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete event")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Rsvp handles POST /events/{id}/rsvp. Admitted and AlreadyRegistered are
// both successes; only the status code distinguishes whether a new
// registration was written.
func (h *EventHandler) Rsvp(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing "+userIDHeader+" header")
		return
	}

	outcome, err := h.events.Rsvp(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		if errors.Is(err, admission.ErrUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "please retry your rsvp")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to rsvp")
		return
	}

	body := map[string]string{"outcome": outcome.String()}
	switch outcome {
	case admission.Admitted:
		writeJSON(w, http.StatusCreated, body)
	case admission.AlreadyRegistered:
		writeJSON(w, http.StatusOK, body)
	case admission.RejectedFull:
		writeError(w, http.StatusConflict, "event is full")
	case admission.RejectedNotFound:
		writeError(w, http.StatusNotFound, "event not found")
	default:
		writeError(w, http.StatusInternalServerError, "failed to rsvp")
	}
}

// HealthCheck handles GET /health.
func HealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
