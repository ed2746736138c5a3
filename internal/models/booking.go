package models

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// PaymentStatus represents the payment state of a booking
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSuccess   PaymentStatus = "success"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCancelled PaymentStatus = "cancelled"
	PaymentRefunded  PaymentStatus = "refunded"
)

// PaymentMethod values accepted from the client
const (
	PaymentMethodMobileMoney  = "mobile_money"
	PaymentMethodCard         = "card"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodFree         = "free"
)

// TicketLine represents one resolved ticket line within a booking.
// UnitPrice is in minor units; Type is the case-folded requested name.
type TicketLine struct {
	Type            string `json:"type"`
	Quantity        int    `json:"quantity"`
	UnitPrice       int64  `json:"unit_price"`
	IncludesFriends bool   `json:"includes_friends"`
}

// Booking represents one purchase attempt against an event
type Booking struct {
	ID                int           `json:"id" db:"id"`
	UserID            int           `json:"user_id" db:"user_id"`
	EventID           int           `json:"event_id" db:"event_id"`
	Tickets           []TicketLine  `json:"tickets" db:"tickets"`
	TotalAmount       Money         `json:"total_amount" db:"total_amount"`
	TotalTickets      int           `json:"total_tickets" db:"total_tickets"`
	PaymentReference  string        `json:"payment_reference" db:"payment_reference"`
	PaystackReference string        `json:"paystack_reference,omitempty" db:"paystack_reference"`
	PaymentStatus     PaymentStatus `json:"payment_status" db:"payment_status"`
	PaymentMethod     string        `json:"payment_method" db:"payment_method"`
	CustomerEmail     string        `json:"customer_email" db:"customer_email"`
	CustomerName      string        `json:"customer_name" db:"customer_name"`
	CustomerPhone     string        `json:"customer_phone,omitempty" db:"customer_phone"`
	TicketNumbers     []string      `json:"ticket_numbers,omitempty" db:"ticket_numbers"`
	QRCode            string        `json:"qr_code,omitempty" db:"qr_code"`
	PaymentDate       *time.Time    `json:"payment_date,omitempty" db:"payment_date"`
	CreatedAt         time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at" db:"updated_at"`
}

// TicketRequest represents one requested ticket line before resolution
type TicketRequest struct {
	Type            string `json:"type"`
	Quantity        int    `json:"quantity"`
	IncludesFriends bool   `json:"includes_friends"`
}

// BookingCreateRequest represents a payment initialization request
type BookingCreateRequest struct {
	EventID       int             `json:"event_id"`
	Tickets       []TicketRequest `json:"tickets"`
	PaymentMethod string          `json:"payment_method"`
	CustomerEmail string          `json:"customer_email"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
}

// Validate validates a booking creation request
func (req *BookingCreateRequest) Validate() error {
	if req.EventID <= 0 {
		return errors.New("event id is required")
	}
	if len(req.Tickets) == 0 {
		return errors.New("tickets array is required")
	}
	for _, t := range req.Tickets {
		if strings.TrimSpace(t.Type) == "" || t.Quantity <= 0 {
			return errors.New("each ticket must have type and valid quantity")
		}
	}
	if strings.TrimSpace(req.CustomerEmail) == "" || strings.TrimSpace(req.CustomerName) == "" {
		return errors.New("customer email and name are required")
	}

	switch req.PaymentMethod {
	case "", PaymentMethodMobileMoney, PaymentMethodCard, PaymentMethodBankTransfer:
	default:
		return errors.New("invalid payment method")
	}

	return nil
}

// IsPending returns true if the booking awaits payment confirmation
func (b *Booking) IsPending() bool {
	return b.PaymentStatus == PaymentPending
}

// IsPaid returns true if the booking settled successfully
func (b *Booking) IsPaid() bool {
	return b.PaymentStatus == PaymentSuccess
}

const referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// randomToken returns an uppercase alphanumeric token of the given length
func randomToken(length int) string {
	max := big.NewInt(int64(len(referenceAlphabet)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// Fallback to timestamp-based generation if crypto/rand fails
			b[i] = referenceAlphabet[time.Now().UnixNano()%int64(len(referenceAlphabet))]
			continue
		}
		b[i] = referenceAlphabet[n.Int64()]
	}
	return string(b)
}

// GeneratePaymentReference generates a locally unique payment reference.
// Format: TM_<unix-millis>_<6 random chars>.
func GeneratePaymentReference() string {
	return fmt.Sprintf("TM_%d_%s", time.Now().UnixMilli(), randomToken(6))
}

// GenerateTicketNumbers synthesizes one ticket number per purchased unit.
// Uniqueness is best-effort (timestamp plus randomness), which is acceptable
// for gate scanning but must not be relied on as a database key.
func (b *Booking) GenerateTicketNumbers() []string {
	prefix := fmt.Sprintf("%06d", b.EventID)
	if len(prefix) > 6 {
		prefix = prefix[len(prefix)-6:]
	}

	numbers := make([]string, 0, b.TotalTickets)
	for i := 0; i < b.TotalTickets; i++ {
		ts := fmt.Sprintf("%d", time.Now().UnixMilli())
		if len(ts) > 6 {
			ts = ts[len(ts)-6:]
		}
		numbers = append(numbers, fmt.Sprintf("%s-%s-%s", prefix, ts, randomToken(6)))
	}

	b.TicketNumbers = numbers
	return numbers
}

// qrPayload is the opaque record a downstream gate verifier scans
type qrPayload struct {
	BookingID     int      `json:"bookingId"`
	EventID       int      `json:"eventId"`
	Reference     string   `json:"reference"`
	Tickets       int      `json:"tickets"`
	TicketNumbers []string `json:"ticketNumbers"`
}

// GenerateQRCode encodes the booking's ticket bundle as a base64 JSON payload
func (b *Booking) GenerateQRCode() string {
	payload := qrPayload{
		BookingID:     b.ID,
		EventID:       b.EventID,
		Reference:     b.PaymentReference,
		Tickets:       b.TotalTickets,
		TicketNumbers: b.TicketNumbers,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return ""
	}

	b.QRCode = base64.StdEncoding.EncodeToString(data)
	return b.QRCode
}
