package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"ticketmate-backend/internal/models"
)

// EventRepository handles event data operations
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, title, date, time, location, venue, price, rating, attendees, image,
	category, is_popular, attendee_images, tickets, description, organizer, coordinates,
	created_by, status, created_at, updated_at`

// Create creates a new event owned by creatorID
func (r *EventRepository) Create(creatorID int, req *models.EventCreateRequest) (*models.Event, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	status := req.Status
	if status == "" {
		status = models.EventPublished
	}
	rating := req.Rating
	if rating == "" {
		rating = "4.0"
	}
	attendees := req.Attendees
	if attendees == "" {
		attendees = "0+"
	}

	attendeeImages, err := json.Marshal(orEmptySlice(req.AttendeeImages))
	if err != nil {
		return nil, fmt.Errorf("failed to encode attendee images: %w", err)
	}
	tickets, err := json.Marshal(orEmptyTickets(req.Tickets))
	if err != nil {
		return nil, fmt.Errorf("failed to encode tickets: %w", err)
	}
	organizer, err := json.Marshal(req.Organizer)
	if err != nil {
		return nil, fmt.Errorf("failed to encode organizer: %w", err)
	}
	coordinates, err := marshalCoordinates(req.Coordinates)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO events (title, date, time, location, venue, price, rating, attendees, image,
			category, is_popular, attendee_images, tickets, description, organizer, coordinates,
			created_by, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING ` + eventColumns

	now := time.Now()
	event, err := scanEvent(r.db.QueryRow(
		query,
		req.Title, req.Date, req.Time, req.Location, req.Venue, req.Price, rating, attendees,
		req.Image, req.Category, req.IsPopular, attendeeImages, tickets, req.Description,
		organizer, coordinates, creatorID, status, now, now,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return event, nil
}

// GetByID retrieves an event by ID
func (r *EventRepository) GetByID(id int) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	event, err := scanEvent(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return event, nil
}

// ListPublished retrieves all published events, newest first
func (r *EventRepository) ListPublished() ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE status = $1 ORDER BY created_at DESC`
	return r.queryEvents(query, models.EventPublished)
}

// ListByCategory retrieves published events in a category, newest first
func (r *EventRepository) ListByCategory(category string) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events
		WHERE category = $1 AND status = $2 ORDER BY created_at DESC`
	return r.queryEvents(query, category, models.EventPublished)
}

// ListPopular retrieves published events flagged as popular
func (r *EventRepository) ListPopular() ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events
		WHERE is_popular = TRUE AND status = $1
		ORDER BY rating DESC, attendees DESC, created_at DESC`
	return r.queryEvents(query, models.EventPublished)
}

// ListPublishedByCategories retrieves published events in any of the given
// categories, excluding the listed event ids
func (r *EventRepository) ListPublishedByCategories(categories []string, excludeIDs []int) ([]*models.Event, error) {
	if len(categories) == 0 {
		return nil, nil
	}
	if excludeIDs == nil {
		excludeIDs = []int{}
	}

	query := `SELECT ` + eventColumns + ` FROM events
		WHERE category = ANY($1) AND status = $2 AND NOT (id = ANY($3))
		ORDER BY rating DESC, attendees DESC, created_at DESC`
	return r.queryEvents(query, pq.Array(categories), models.EventPublished, pq.Array(excludeIDs))
}

// ListPublishedExcluding retrieves published events excluding the given ids
func (r *EventRepository) ListPublishedExcluding(excludeIDs []int) ([]*models.Event, error) {
	if excludeIDs == nil {
		excludeIDs = []int{}
	}

	query := `SELECT ` + eventColumns + ` FROM events
		WHERE status = $1 AND NOT (id = ANY($2))
		ORDER BY rating DESC, attendees DESC, created_at DESC`
	return r.queryEvents(query, models.EventPublished, pq.Array(excludeIDs))
}

// ListPopularExcluding retrieves popular published events excluding the given ids
func (r *EventRepository) ListPopularExcluding(excludeIDs []int) ([]*models.Event, error) {
	if excludeIDs == nil {
		excludeIDs = []int{}
	}

	query := `SELECT ` + eventColumns + ` FROM events
		WHERE is_popular = TRUE AND status = $1 AND NOT (id = ANY($2))
		ORDER BY rating DESC, attendees DESC, created_at DESC`
	return r.queryEvents(query, models.EventPublished, pq.Array(excludeIDs))
}

// Update applies an event update and returns the updated event
func (r *EventRepository) Update(id int, req *models.EventUpdateRequest) (*models.Event, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	current, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	applyEventUpdate(current, req)

	attendeeImages, err := json.Marshal(orEmptySlice(current.AttendeeImages))
	if err != nil {
		return nil, fmt.Errorf("failed to encode attendee images: %w", err)
	}
	tickets, err := json.Marshal(orEmptyTickets(current.Tickets))
	if err != nil {
		return nil, fmt.Errorf("failed to encode tickets: %w", err)
	}
	organizer, err := json.Marshal(current.Organizer)
	if err != nil {
		return nil, fmt.Errorf("failed to encode organizer: %w", err)
	}
	coordinates, err := marshalCoordinates(current.Coordinates)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE events
		SET title = $2, date = $3, time = $4, location = $5, venue = $6, price = $7, rating = $8,
			attendees = $9, image = $10, category = $11, is_popular = $12, attendee_images = $13,
			tickets = $14, description = $15, organizer = $16, coordinates = $17, status = $18,
			updated_at = $19
		WHERE id = $1
		RETURNING ` + eventColumns

	event, err := scanEvent(r.db.QueryRow(
		query,
		id, current.Title, current.Date, current.Time, current.Location, current.Venue,
		current.Price, current.Rating, current.Attendees, current.Image, current.Category,
		current.IsPopular, attendeeImages, tickets, current.Description, organizer,
		coordinates, current.Status, time.Now(),
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	return event, nil
}

// Delete removes an event
func (r *EventRepository) Delete(id int) error {
	result, err := r.db.Exec(`DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return models.ErrEventNotFound
	}

	return nil
}

func (r *EventRepository) queryEvents(query string, args ...interface{}) ([]*models.Event, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}

func scanEvent(row scanner) (*models.Event, error) {
	event := &models.Event{}
	var attendeeImages, tickets, organizer []byte
	var coordinates []byte

	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Date,
		&event.Time,
		&event.Location,
		&event.Venue,
		&event.Price,
		&event.Rating,
		&event.Attendees,
		&event.Image,
		&event.Category,
		&event.IsPopular,
		&attendeeImages,
		&tickets,
		&event.Description,
		&organizer,
		&coordinates,
		&event.CreatedBy,
		&event.Status,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(attendeeImages) > 0 {
		if err := json.Unmarshal(attendeeImages, &event.AttendeeImages); err != nil {
			return nil, fmt.Errorf("failed to decode attendee images: %w", err)
		}
	}
	if len(tickets) > 0 {
		if err := json.Unmarshal(tickets, &event.Tickets); err != nil {
			return nil, fmt.Errorf("failed to decode tickets: %w", err)
		}
	}
	if len(organizer) > 0 {
		if err := json.Unmarshal(organizer, &event.Organizer); err != nil {
			return nil, fmt.Errorf("failed to decode organizer: %w", err)
		}
	}
	if len(coordinates) > 0 {
		var c models.Coordinates
		if err := json.Unmarshal(coordinates, &c); err != nil {
			return nil, fmt.Errorf("failed to decode coordinates: %w", err)
		}
		event.Coordinates = &c
	}

	return event, nil
}

func marshalCoordinates(c *models.Coordinates) ([]byte, error) {
	if c == nil {
		return nil, nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode coordinates: %w", err)
	}
	return data, nil
}

func applyEventUpdate(event *models.Event, req *models.EventUpdateRequest) {
	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Date != nil {
		event.Date = *req.Date
	}
	if req.Time != nil {
		event.Time = *req.Time
	}
	if req.Location != nil {
		event.Location = *req.Location
	}
	if req.Venue != nil {
		event.Venue = *req.Venue
	}
	if req.Price != nil {
		event.Price = *req.Price
	}
	if req.Rating != nil {
		event.Rating = *req.Rating
	}
	if req.Attendees != nil {
		event.Attendees = *req.Attendees
	}
	if req.Image != nil {
		event.Image = *req.Image
	}
	if req.Category != nil {
		event.Category = *req.Category
	}
	if req.IsPopular != nil {
		event.IsPopular = *req.IsPopular
	}
	if req.AttendeeImages != nil {
		event.AttendeeImages = *req.AttendeeImages
	}
	if req.Tickets != nil {
		event.Tickets = *req.Tickets
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Organizer != nil {
		event.Organizer = *req.Organizer
	}
	if req.Coordinates != nil {
		event.Coordinates = req.Coordinates
	}
	if req.Status != nil {
		event.Status = *req.Status
	}
}

func orEmptySlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func orEmptyTickets(t []models.TicketType) []models.TicketType {
	if t == nil {
		return []models.TicketType{}
	}
	return t
}
