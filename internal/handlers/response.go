package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"ticketmate-backend/internal/models"
)

// Response is the envelope every endpoint answers with
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func respondData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, Response{Success: true, Data: data})
}

func respondMessage(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, Response{Success: true, Message: message, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Success: false, Message: message})
}

// respondServiceError maps service errors onto HTTP statuses. Unrecognized
// errors become opaque 500s so internals never leak to the client.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, models.ErrForbidden):
		respondError(w, http.StatusForbidden, "Insufficient permissions")
	case errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrEventNotFound),
		errors.Is(err, models.ErrBookingNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrOTPNotFound):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrTicketTypeNotFound):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrTooManyAttempts):
		respondError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, models.ErrDuplicateEntry):
		respondError(w, http.StatusConflict, "A record with these details already exists")
	case errors.Is(err, models.ErrInvalidSignature):
		respondError(w, http.StatusBadRequest, "Invalid webhook signature")
	case errors.Is(err, models.ErrPaymentFailed):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrGatewayUnavailable):
		respondError(w, http.StatusBadGateway, "Payment gateway unavailable")
	default:
		log.Error().Err(err).Msg("unhandled service error")
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
