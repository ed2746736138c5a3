package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"ticketmate-backend/internal/models"
)

// BookingRepository handles booking ledger operations
type BookingRepository struct {
	db *sql.DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, user_id, event_id, tickets, total_amount, total_tickets,
	payment_reference, paystack_reference, payment_status, payment_method,
	customer_email, customer_name, customer_phone, ticket_numbers, qr_code,
	payment_date, created_at, updated_at`

// BookingSearchFilters represents filters for booking history queries
type BookingSearchFilters struct {
	UserID int
	Status models.PaymentStatus
	Limit  int
	Offset int
}

// BookingWithEvent represents a booking joined with its event summary
type BookingWithEvent struct {
	*models.Booking
	EventTitle    string `json:"event_title" db:"event_title"`
	EventDate     string `json:"event_date" db:"event_date"`
	EventVenue    string `json:"event_venue" db:"event_venue"`
	EventLocation string `json:"event_location" db:"event_location"`
	EventImage    string `json:"event_image" db:"event_image"`
}

// Create persists a new booking
func (r *BookingRepository) Create(booking *models.Booking) (*models.Booking, error) {
	tickets, err := json.Marshal(booking.Tickets)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ticket lines: %w", err)
	}

	var paystackRef interface{}
	if booking.PaystackReference != "" {
		paystackRef = booking.PaystackReference
	}

	query := `
		INSERT INTO bookings (user_id, event_id, tickets, total_amount, total_tickets,
			payment_reference, paystack_reference, payment_status, payment_method,
			customer_email, customer_name, customer_phone, ticket_numbers, qr_code,
			payment_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING ` + bookingColumns

	now := time.Now()
	created, err := scanBooking(r.db.QueryRow(
		query,
		booking.UserID,
		booking.EventID,
		tickets,
		booking.TotalAmount.MinorUnits,
		booking.TotalTickets,
		booking.PaymentReference,
		paystackRef,
		booking.PaymentStatus,
		booking.PaymentMethod,
		booking.CustomerEmail,
		booking.CustomerName,
		booking.CustomerPhone,
		pq.Array(orEmptySlice(booking.TicketNumbers)),
		booking.QRCode,
		booking.PaymentDate,
		now,
		now,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrDuplicateEntry
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	return created, nil
}

// GetByID retrieves a booking by ID
func (r *BookingRepository) GetByID(id int) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return booking, nil
}

// GetByPaymentReference retrieves a booking by its local payment reference
func (r *BookingRepository) GetByPaymentReference(reference string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE payment_reference = $1`

	booking, err := scanBooking(r.db.QueryRow(query, reference))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking by reference: %w", err)
	}

	return booking, nil
}

// GetByAnyReference retrieves a booking by either the local or the
// gateway-assigned reference. Webhooks may carry either one.
func (r *BookingRepository) GetByAnyReference(reference string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE payment_reference = $1 OR paystack_reference = $1`

	booking, err := scanBooking(r.db.QueryRow(query, reference))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking by reference: %w", err)
	}

	return booking, nil
}

// SetPaystackReference stores the gateway-assigned reference after initialization
func (r *BookingRepository) SetPaystackReference(id int, reference string) error {
	result, err := r.db.Exec(
		`UPDATE bookings SET paystack_reference = $2, updated_at = $3 WHERE id = $1`,
		id, reference, time.Now(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrDuplicateEntry
		}
		return fmt.Errorf("failed to set gateway reference: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return models.ErrBookingNotFound
	}

	return nil
}

// MarkSuccess transitions a booking from pending to success, stamping the
// payment date and materializing ticket numbers and the QR payload.
//
// The update is guarded on the current status. Of any number of concurrent
// confirmation paths exactly one observes true and owns ticket generation;
// the rest read the already-settled row.
func (r *BookingRepository) MarkSuccess(id int, paidAt time.Time, ticketNumbers []string, qrCode string) (bool, error) {
	result, err := r.db.Exec(
		`UPDATE bookings
		 SET payment_status = $2, payment_date = $3, ticket_numbers = $4, qr_code = $5, updated_at = $6
		 WHERE id = $1 AND payment_status = $7`,
		id, models.PaymentSuccess, paidAt, pq.Array(ticketNumbers), qrCode, time.Now(), models.PaymentPending,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark booking success: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

// MarkFailed transitions a pending booking to failed. Settled bookings are
// left untouched.
func (r *BookingRepository) MarkFailed(id int) (bool, error) {
	result, err := r.db.Exec(
		`UPDATE bookings SET payment_status = $2, updated_at = $3
		 WHERE id = $1 AND payment_status = $4`,
		id, models.PaymentFailed, time.Now(), models.PaymentPending,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark booking failed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

// GetByUser retrieves a user's bookings with event summaries, newest first
func (r *BookingRepository) GetByUser(filters BookingSearchFilters) ([]*BookingWithEvent, int, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if filters.UserID > 0 {
		conditions = append(conditions, fmt.Sprintf("b.user_id = $%d", argIndex))
		args = append(args, filters.UserID)
		argIndex++
	}

	if filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("b.payment_status = $%d", argIndex))
		args = append(args, filters.Status)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	if filters.Limit <= 0 {
		filters.Limit = 10
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM bookings b %s", whereClause)
	var total int
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to get booking count: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT b.id, b.user_id, b.event_id, b.tickets, b.total_amount, b.total_tickets,
			b.payment_reference, b.paystack_reference, b.payment_status, b.payment_method,
			b.customer_email, b.customer_name, b.customer_phone, b.ticket_numbers, b.qr_code,
			b.payment_date, b.created_at, b.updated_at,
			e.title AS event_title, e.date AS event_date, e.venue AS event_venue,
			e.location AS event_location, e.image AS event_image
		FROM bookings b
		JOIN events e ON b.event_id = e.id
		%s
		ORDER BY b.created_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIndex, argIndex+1)

	args = append(args, filters.Limit, filters.Offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*BookingWithEvent
	for rows.Next() {
		detail := &BookingWithEvent{Booking: &models.Booking{}}
		var ticketLines []byte
		var paystackRef sql.NullString
		var phone sql.NullString
		var paymentDate sql.NullTime

		err := rows.Scan(
			&detail.Booking.ID,
			&detail.Booking.UserID,
			&detail.Booking.EventID,
			&ticketLines,
			&detail.Booking.TotalAmount.MinorUnits,
			&detail.Booking.TotalTickets,
			&detail.Booking.PaymentReference,
			&paystackRef,
			&detail.Booking.PaymentStatus,
			&detail.Booking.PaymentMethod,
			&detail.Booking.CustomerEmail,
			&detail.Booking.CustomerName,
			&phone,
			pq.Array(&detail.Booking.TicketNumbers),
			&detail.Booking.QRCode,
			&paymentDate,
			&detail.Booking.CreatedAt,
			&detail.Booking.UpdatedAt,
			&detail.EventTitle,
			&detail.EventDate,
			&detail.EventVenue,
			&detail.EventLocation,
			&detail.EventImage,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan booking: %w", err)
		}

		if err := finishBookingScan(detail.Booking, ticketLines, paystackRef, phone, paymentDate); err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, detail)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating bookings: %w", err)
	}

	return bookings, total, nil
}

func scanBooking(row scanner) (*models.Booking, error) {
	booking := &models.Booking{}
	var ticketLines []byte
	var paystackRef, phone sql.NullString
	var paymentDate sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.EventID,
		&ticketLines,
		&booking.TotalAmount.MinorUnits,
		&booking.TotalTickets,
		&booking.PaymentReference,
		&paystackRef,
		&booking.PaymentStatus,
		&booking.PaymentMethod,
		&booking.CustomerEmail,
		&booking.CustomerName,
		&phone,
		pq.Array(&booking.TicketNumbers),
		&booking.QRCode,
		&paymentDate,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := finishBookingScan(booking, ticketLines, paystackRef, phone, paymentDate); err != nil {
		return nil, err
	}
	return booking, nil
}

func finishBookingScan(booking *models.Booking, ticketLines []byte, paystackRef, phone sql.NullString, paymentDate sql.NullTime) error {
	booking.TotalAmount.Currency = models.DefaultCurrency
	booking.PaystackReference = paystackRef.String
	booking.CustomerPhone = phone.String
	if paymentDate.Valid {
		t := paymentDate.Time
		booking.PaymentDate = &t
	}
	if len(ticketLines) > 0 {
		if err := json.Unmarshal(ticketLines, &booking.Tickets); err != nil {
			return fmt.Errorf("failed to decode ticket lines for booking %d: %w", booking.ID, err)
		}
	}
	return nil
}
