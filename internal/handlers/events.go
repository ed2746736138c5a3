package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ticketmate-backend/internal/middleware"
	"ticketmate-backend/internal/models"
	"ticketmate-backend/internal/services"
)

// EventHandler handles the event catalog endpoints
type EventHandler struct {
	eventService *services.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService *services.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// List handles GET /api/events with an optional category filter
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	events, err := h.eventService.ListEvents(category)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]interface{}{
		"count":  len(events),
		"events": events,
	})
}

// Popular handles GET /api/events/popular
func (h *EventHandler) Popular(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventService.ListPopularEvents()
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]interface{}{
		"count":  len(events),
		"events": events,
	})
}

// JustForYou handles GET /api/events/just-for-you. The feed personalizes
// when a valid token accompanies the request and degrades to popular picks
// otherwise.
func (h *EventHandler) JustForYou(w http.ResponseWriter, r *http.Request) {
	userID := 0
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
		userID = claims.UserID
	}

	events, err := h.eventService.JustForYou(userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]interface{}{
		"count":  len(events),
		"events": events,
	})
}

// Get handles GET /api/events/{id}
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	event, err := h.eventService.GetEvent(id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, event)
}

// Create handles POST /api/events
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	var req models.EventCreateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	event, err := h.eventService.CreateEvent(claims.UserID, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondMessage(w, http.StatusCreated, "Event created successfully", event)
}

// Update handles PUT /api/events/{id}
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.EventUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	event, err := h.eventService.UpdateEvent(id, claims.UserID, claims.Role == "admin", &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, "Event updated successfully", event)
}

// Delete handles DELETE /api/events/{id}
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.eventService.DeleteEvent(id, claims.UserID, claims.Role == "admin"); err != nil {
		respondServiceError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, "Event deleted successfully", nil)
}

// pathID parses a numeric chi URL parameter, answering 400 when malformed
func pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid "+name+" parameter")
		return 0, false
	}
	return id, true
}
