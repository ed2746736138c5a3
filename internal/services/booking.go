package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"ticketmate-backend/internal/models"
	"ticketmate-backend/internal/repositories"
)

// BookingService handles paid and free ticket bookings and their
// reconciliation with the payment gateway
type BookingService struct {
	bookings BookingStore
	events   EventStore
	gateway  PaymentGateway
}

// NewBookingService creates a new booking service
func NewBookingService(bookings BookingStore, events EventStore, gateway PaymentGateway) *BookingService {
	return &BookingService{
		bookings: bookings,
		events:   events,
		gateway:  gateway,
	}
}

// EventSummary is the slice of event fields echoed in payment responses
type EventSummary struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"`
	Venue string `json:"venue"`
}

// PaymentInitResult reports the outcome of a payment initialization. For
// free bookings the tickets are issued immediately and no gateway redirect
// exists.
type PaymentInitResult struct {
	BookingID         int          `json:"booking_id"`
	Reference         string       `json:"reference"`
	PaystackReference string       `json:"paystack_reference,omitempty"`
	AuthorizationURL  string       `json:"authorization_url,omitempty"`
	AccessCode        string       `json:"access_code,omitempty"`
	TotalAmount       float64      `json:"total_amount"`
	TotalTickets      int          `json:"total_tickets"`
	Free              bool         `json:"free"`
	TicketNumbers     []string     `json:"tickets,omitempty"`
	QRCode            string       `json:"qr_code,omitempty"`
	Event             EventSummary `json:"event"`
}

// VerificationResult reports the settled state of a booking after
// verification
type VerificationResult struct {
	Booking         *models.Booking `json:"booking"`
	TicketNumbers   []string        `json:"tickets"`
	QRCode          string          `json:"qr_code"`
	AlreadyVerified bool            `json:"already_verified"`
}

// MatchTicketType resolves a requested ticket type name against the event's
// defined types. Matching is case-insensitive: exact first, then substring
// in either direction, and a request for a "regular" ticket falls back to
// the event's first type when nothing else matched.
func MatchTicketType(event *models.Event, requested string) (*models.TicketType, error) {
	want := strings.ToLower(strings.TrimSpace(requested))

	for i := range event.Tickets {
		if strings.ToLower(event.Tickets[i].Type) == want {
			return &event.Tickets[i], nil
		}
	}

	for i := range event.Tickets {
		have := strings.ToLower(strings.TrimSpace(event.Tickets[i].Type))
		if have == "" {
			continue
		}
		if strings.Contains(have, want) || strings.Contains(want, have) {
			return &event.Tickets[i], nil
		}
	}

	if strings.Contains(want, "regular") && len(event.Tickets) > 0 {
		return &event.Tickets[0], nil
	}

	return nil, fmt.Errorf("%w: ticket type %q not found for this event, available types: %s",
		models.ErrTicketTypeNotFound, requested, strings.Join(event.TicketTypeNames(), ", "))
}

// InitializePayment prices the requested tickets and opens a payment. Free
// bookings settle immediately with tickets issued; paid bookings are created
// pending and handed to the gateway for authorization.
func (s *BookingService) InitializePayment(userID int, req *models.BookingCreateRequest) (*PaymentInitResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidInput, err.Error())
	}

	event, err := s.events.GetByID(req.EventID)
	if err != nil {
		return nil, err
	}

	total := models.NewMoney(0)
	totalTickets := 0
	lines := make([]models.TicketLine, 0, len(req.Tickets))

	for _, ticket := range req.Tickets {
		matched, err := MatchTicketType(event, ticket.Type)
		if err != nil {
			return nil, err
		}

		unitPrice := models.ParsePrice(matched.Price)
		total = total.Add(unitPrice.Multiply(ticket.Quantity))
		totalTickets += ticket.Quantity

		lines = append(lines, models.TicketLine{
			Type:            strings.ToLower(ticket.Type),
			Quantity:        ticket.Quantity,
			UnitPrice:       unitPrice.MinorUnits,
			IncludesFriends: ticket.IncludesFriends,
		})
	}

	reference := models.GeneratePaymentReference()

	booking := &models.Booking{
		UserID:           userID,
		EventID:          req.EventID,
		Tickets:          lines,
		TotalAmount:      total,
		TotalTickets:     totalTickets,
		PaymentReference: reference,
		PaymentMethod:    req.PaymentMethod,
		CustomerEmail:    req.CustomerEmail,
		CustomerName:     req.CustomerName,
		CustomerPhone:    req.CustomerPhone,
		PaymentStatus:    models.PaymentPending,
	}

	summary := EventSummary{ID: event.ID, Title: event.Title, Date: event.Date, Venue: event.Venue}

	if total.IsZero() {
		booking.PaymentMethod = models.PaymentMethodFree

		created, err := s.bookings.Create(booking)
		if err != nil {
			return nil, err
		}

		settled, err := s.confirmBooking(created, time.Now())
		if err != nil {
			return nil, err
		}

		return &PaymentInitResult{
			BookingID:     settled.ID,
			Reference:     reference,
			TotalAmount:   total.Amount(),
			TotalTickets:  totalTickets,
			Free:          true,
			TicketNumbers: settled.TicketNumbers,
			QRCode:        settled.QRCode,
			Event:         summary,
		}, nil
	}

	created, err := s.bookings.Create(booking)
	if err != nil {
		return nil, err
	}

	resp, err := s.gateway.InitializeTransaction(&TransactionRequest{
		Email:     req.CustomerEmail,
		Amount:    total.MinorUnits,
		Currency:  total.Currency,
		Reference: reference,
		Channels:  channelsForMethod(req.PaymentMethod),
		Metadata: map[string]string{
			"bookingId":     fmt.Sprintf("%d", created.ID),
			"eventId":       fmt.Sprintf("%d", event.ID),
			"eventTitle":    event.Title,
			"totalTickets":  fmt.Sprintf("%d", totalTickets),
			"customerName":  req.CustomerName,
			"customerPhone": req.CustomerPhone,
		},
	})
	if err != nil {
		var declined *GatewayDeclinedError
		if errors.As(err, &declined) {
			if _, markErr := s.bookings.MarkFailed(created.ID); markErr != nil {
				log.Error().Err(markErr).Int("booking_id", created.ID).Msg("failed to mark booking failed")
			}
			return nil, fmt.Errorf("%w: %s", models.ErrPaymentFailed, declined.Message)
		}
		// Gateway unreachable: the booking stays pending so the client can
		// retry or verify once the gateway recovers.
		return nil, fmt.Errorf("%w: %s", models.ErrGatewayUnavailable, err.Error())
	}

	if resp.Data.Reference != "" {
		if err := s.bookings.SetPaystackReference(created.ID, resp.Data.Reference); err != nil {
			return nil, err
		}
	}

	return &PaymentInitResult{
		BookingID:         created.ID,
		Reference:         reference,
		PaystackReference: resp.Data.Reference,
		AuthorizationURL:  resp.Data.AuthorizationURL,
		AccessCode:        resp.Data.AccessCode,
		TotalAmount:       total.Amount(),
		TotalTickets:      totalTickets,
		Event:             summary,
	}, nil
}

// VerifyPayment confirms a booking against the gateway's record. Verifying
// an already settled booking returns the stored tickets unchanged.
func (s *BookingService) VerifyPayment(reference string) (*VerificationResult, error) {
	booking, err := s.bookings.GetByPaymentReference(reference)
	if err != nil {
		return nil, err
	}

	if booking.IsPaid() {
		return &VerificationResult{
			Booking:         booking,
			TicketNumbers:   booking.TicketNumbers,
			QRCode:          booking.QRCode,
			AlreadyVerified: true,
		}, nil
	}

	gatewayRef := booking.PaystackReference
	if gatewayRef == "" {
		gatewayRef = reference
	}

	verification, err := s.gateway.VerifyTransaction(gatewayRef)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrGatewayUnavailable, err.Error())
	}

	if verification.Data.Status != "success" {
		if _, err := s.bookings.MarkFailed(booking.ID); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: payment status %q", models.ErrPaymentFailed, verification.Data.Status)
	}

	settled, err := s.confirmBooking(booking, parsePaystackTime(verification.Data.PaidAt))
	if err != nil {
		return nil, err
	}

	return &VerificationResult{
		Booking:       settled,
		TicketNumbers: settled.TicketNumbers,
		QRCode:        settled.QRCode,
	}, nil
}

// webhookEvent is the envelope Paystack posts to the webhook endpoint
type webhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
		PaidAt    string `json:"paid_at"`
	} `json:"data"`
}

// HandleWebhook processes a gateway notification. The signature is checked
// before the payload is parsed; unknown events and unknown references are
// acknowledged without effect.
func (s *BookingService) HandleWebhook(payload []byte, signature string) error {
	if !s.gateway.VerifyWebhookSignature(payload, signature) {
		return models.ErrInvalidSignature
	}

	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("%w: malformed webhook payload", models.ErrInvalidInput)
	}

	if event.Event != "charge.success" {
		return nil
	}

	booking, err := s.bookings.GetByAnyReference(event.Data.Reference)
	if err != nil {
		if errors.Is(err, models.ErrBookingNotFound) {
			log.Warn().Str("reference", event.Data.Reference).Msg("webhook for unknown booking reference")
			return nil
		}
		return err
	}

	if !booking.IsPending() {
		return nil
	}

	if _, err := s.confirmBooking(booking, parsePaystackTime(event.Data.PaidAt)); err != nil {
		return err
	}

	log.Info().Str("reference", event.Data.Reference).Msg("payment confirmed via webhook")
	return nil
}

// confirmBooking settles a pending booking. Ticket numbers are generated
// ahead of the status transition, but only the caller that wins the
// transition keeps them; a losing caller rereads the row and returns the
// tickets the winner wrote.
func (s *BookingService) confirmBooking(booking *models.Booking, paidAt time.Time) (*models.Booking, error) {
	booking.GenerateTicketNumbers()
	booking.GenerateQRCode()

	transitioned, err := s.bookings.MarkSuccess(booking.ID, paidAt, booking.TicketNumbers, booking.QRCode)
	if err != nil {
		return nil, err
	}

	if !transitioned {
		settled, err := s.bookings.GetByID(booking.ID)
		if err != nil {
			return nil, err
		}
		// The transition can also be lost to a row already marked failed;
		// that is not a settled booking and must not read as one.
		if !settled.IsPaid() {
			return nil, fmt.Errorf("%w: booking %d is %s", models.ErrPaymentFailed, settled.ID, settled.PaymentStatus)
		}
		return settled, nil
	}

	booking.PaymentStatus = models.PaymentSuccess
	booking.PaymentDate = &paidAt
	return booking, nil
}

// BookingHistoryPage is one page of a user's booking history
type BookingHistoryPage struct {
	Bookings      []*repositories.BookingWithEvent `json:"bookings"`
	CurrentPage   int                              `json:"current_page"`
	TotalPages    int                              `json:"total_pages"`
	TotalBookings int                              `json:"total_bookings"`
}

// GetBookingHistory returns a page of the user's bookings, newest first
func (s *BookingService) GetBookingHistory(userID int, status models.PaymentStatus, page, limit int) (*BookingHistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	bookings, total, err := s.bookings.GetByUser(repositories.BookingSearchFilters{
		UserID: userID,
		Status: status,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, err
	}

	totalPages := (total + limit - 1) / limit

	return &BookingHistoryPage{
		Bookings:      bookings,
		CurrentPage:   page,
		TotalPages:    totalPages,
		TotalBookings: total,
	}, nil
}

// GetBookingDetails returns one booking, restricted to its owner unless the
// requester is an admin
func (s *BookingService) GetBookingDetails(bookingID, userID int, isAdmin bool) (*models.Booking, error) {
	booking, err := s.bookings.GetByID(bookingID)
	if err != nil {
		return nil, err
	}

	if booking.UserID != userID && !isAdmin {
		return nil, models.ErrBookingNotFound
	}

	return booking, nil
}

// channelsForMethod narrows the gateway channels to the client's chosen
// payment method
func channelsForMethod(method string) []string {
	switch method {
	case models.PaymentMethodCard:
		return []string{"card"}
	case models.PaymentMethodMobileMoney:
		return []string{"mobile_money"}
	default:
		return []string{"card", "bank", "ussd", "qr", "mobile_money"}
	}
}
