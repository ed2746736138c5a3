package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ticketmate-backend/internal/middleware"
	"ticketmate-backend/internal/models"
	"ticketmate-backend/internal/services"
)

// PaymentHandler handles booking payments and their reconciliation
type PaymentHandler struct {
	bookingService *services.BookingService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(bookingService *services.BookingService) *PaymentHandler {
	return &PaymentHandler{bookingService: bookingService}
}

// Initialize handles POST /api/payments/initialize
func (h *PaymentHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	var req models.BookingCreateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.bookingService.InitializePayment(claims.UserID, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	message := "Payment initialized successfully"
	if result.Free {
		message = "Free tickets booked successfully"
	}

	respondMessage(w, http.StatusOK, message, result)
}

// Verify handles GET /api/payments/verify/{reference}
func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")
	if reference == "" {
		respondError(w, http.StatusBadRequest, "Payment reference is required")
		return
	}

	result, err := h.bookingService.VerifyPayment(reference)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	message := "Payment verified successfully"
	if result.AlreadyVerified {
		message = "Payment already verified"
	}

	respondMessage(w, http.StatusOK, message, result)
}

// Webhook handles POST /api/payments/webhook. The raw body is needed for
// signature verification, so it is read before any JSON parsing.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	signature := r.Header.Get("X-Paystack-Signature")

	if err := h.bookingService.HandleWebhook(payload, signature); err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, nil)
}

// History handles GET /api/payments/bookings
func (h *PaymentHandler) History(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)
	status := models.PaymentStatus(r.URL.Query().Get("status"))

	history, err := h.bookingService.GetBookingHistory(claims.UserID, status, page, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, history)
}

// BookingDetails handles GET /api/payments/bookings/{id}
func (h *PaymentHandler) BookingDetails(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	booking, err := h.bookingService.GetBookingDetails(id, claims.UserID, claims.Role == "admin")
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]interface{}{
		"booking": booking,
		"tickets": booking.TicketNumbers,
		"qr_code": booking.QRCode,
	})
}

func queryInt(r *http.Request, name string, fallback int) int {
	if raw := r.URL.Query().Get(name); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			return value
		}
	}
	return fallback
}
