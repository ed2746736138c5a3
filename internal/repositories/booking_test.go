package repositories

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketmate-backend/internal/models"
)

func TestFinishBookingScan(t *testing.T) {
	paidAt := time.Date(2026, 8, 14, 20, 30, 0, 0, time.UTC)
	booking := &models.Booking{ID: 12}

	lines := []byte(`[{"type":"vip","quantity":2,"unit_price":50000}]`)
	err := finishBookingScan(booking, lines,
		sql.NullString{String: "PS_REF_9", Valid: true},
		sql.NullString{String: "+233241234567", Valid: true},
		sql.NullTime{Time: paidAt, Valid: true},
	)
	require.NoError(t, err)

	assert.Equal(t, models.DefaultCurrency, booking.TotalAmount.Currency)
	assert.Equal(t, "PS_REF_9", booking.PaystackReference)
	assert.Equal(t, "+233241234567", booking.CustomerPhone)
	require.NotNil(t, booking.PaymentDate)
	assert.True(t, paidAt.Equal(*booking.PaymentDate))
	require.Len(t, booking.Tickets, 1)
	assert.Equal(t, "vip", booking.Tickets[0].Type)
	assert.Equal(t, 2, booking.Tickets[0].Quantity)
}

func TestFinishBookingScanCorruptTicketLines(t *testing.T) {
	booking := &models.Booking{ID: 12}

	err := finishBookingScan(booking, []byte(`{"not":"an array`),
		sql.NullString{}, sql.NullString{}, sql.NullTime{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "booking 12")
	assert.Empty(t, booking.Tickets)
}

func TestFinishBookingScanNullColumns(t *testing.T) {
	booking := &models.Booking{ID: 3}

	err := finishBookingScan(booking, nil, sql.NullString{}, sql.NullString{}, sql.NullTime{})
	require.NoError(t, err)
	assert.Empty(t, booking.PaystackReference)
	assert.Nil(t, booking.PaymentDate)
	assert.Empty(t, booking.Tickets)
}
