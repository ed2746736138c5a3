package models

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePaymentReference(t *testing.T) {
	ref := GeneratePaymentReference()

	parts := strings.Split(ref, "_")
	require.Len(t, parts, 3)
	assert.Equal(t, "TM", parts[0])
	assert.NotEmpty(t, parts[1])
	assert.Len(t, parts[2], 6)

	// References must differ between calls
	assert.NotEqual(t, ref, GeneratePaymentReference())
}

func TestGenerateTicketNumbers(t *testing.T) {
	booking := &Booking{
		ID:           42,
		EventID:      7,
		TotalTickets: 3,
	}

	numbers := booking.GenerateTicketNumbers()

	require.Len(t, numbers, 3)
	assert.Equal(t, numbers, booking.TicketNumbers)

	seen := make(map[string]bool)
	for _, num := range numbers {
		parts := strings.Split(num, "-")
		require.Len(t, parts, 3)
		assert.Equal(t, "000007", parts[0])
		assert.Len(t, parts[1], 6)
		assert.Len(t, parts[2], 6)
		seen[num] = true
	}
	assert.Len(t, seen, 3, "ticket numbers should be unique within a booking")
}

func TestGenerateQRCode(t *testing.T) {
	booking := &Booking{
		ID:               11,
		EventID:          7,
		PaymentReference: "TM_1700000000000_ABC123",
		TotalTickets:     2,
		TicketNumbers:    []string{"000007-123456-AAAAAA", "000007-123456-BBBBBB"},
	}

	qr := booking.GenerateQRCode()
	require.NotEmpty(t, qr)
	assert.Equal(t, qr, booking.QRCode)

	decoded, err := base64.StdEncoding.DecodeString(qr)
	require.NoError(t, err)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(decoded, &payload))

	assert.Equal(t, float64(11), payload["bookingId"])
	assert.Equal(t, float64(7), payload["eventId"])
	assert.Equal(t, "TM_1700000000000_ABC123", payload["reference"])
	assert.Equal(t, float64(2), payload["tickets"])
	assert.Len(t, payload["ticketNumbers"], 2)
}

func TestBookingCreateRequestValidate(t *testing.T) {
	valid := BookingCreateRequest{
		EventID:       1,
		Tickets:       []TicketRequest{{Type: "VIP", Quantity: 2}},
		PaymentMethod: PaymentMethodMobileMoney,
		CustomerEmail: "ama@example.com",
		CustomerName:  "Ama Mensah",
	}

	tests := []struct {
		name    string
		mutate  func(r *BookingCreateRequest)
		wantErr string
	}{
		{"valid request", func(r *BookingCreateRequest) {}, ""},
		{"missing event", func(r *BookingCreateRequest) { r.EventID = 0 }, "event id is required"},
		{"no tickets", func(r *BookingCreateRequest) { r.Tickets = nil }, "tickets array is required"},
		{"zero quantity", func(r *BookingCreateRequest) { r.Tickets[0].Quantity = 0 }, "each ticket must have type and valid quantity"},
		{"blank type", func(r *BookingCreateRequest) { r.Tickets[0].Type = "  " }, "each ticket must have type and valid quantity"},
		{"missing email", func(r *BookingCreateRequest) { r.CustomerEmail = "" }, "customer email and name are required"},
		{"missing name", func(r *BookingCreateRequest) { r.CustomerName = "" }, "customer email and name are required"},
		{"bad payment method", func(r *BookingCreateRequest) { r.PaymentMethod = "crypto" }, "invalid payment method"},
		{"empty payment method ok", func(r *BookingCreateRequest) { r.PaymentMethod = "" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			req.Tickets = append([]TicketRequest(nil), valid.Tickets...)
			tt.mutate(&req)

			err := req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
			}
		})
	}
}

func TestBookingStatusHelpers(t *testing.T) {
	b := &Booking{PaymentStatus: PaymentPending}
	assert.True(t, b.IsPending())
	assert.False(t, b.IsPaid())

	b.PaymentStatus = PaymentSuccess
	assert.False(t, b.IsPending())
	assert.True(t, b.IsPaid())
}
