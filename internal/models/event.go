package models

import (
	"errors"
	"strings"
	"time"
)

// EventStatus represents the publication status of an event
type EventStatus string

const (
	EventDraft     EventStatus = "draft"
	EventPublished EventStatus = "published"
	EventCancelled EventStatus = "cancelled"
)

// ValidCategories is the closed set of event categories
var ValidCategories = []string{"Music", "Sports", "Arts", "Education", "Food", "Tech"}

// TicketType represents one ticket type offered by an event.
// Prices are display strings; ParsePrice resolves them at booking time.
type TicketType struct {
	Type        string `json:"type"`
	Price       string `json:"price"`
	Description string `json:"description,omitempty"`
	Available   bool   `json:"available"`
}

// Organizer represents the display information of an event organizer
type Organizer struct {
	Name       string `json:"name"`
	Avatar     string `json:"avatar"`
	IsVerified bool   `json:"is_verified"`
	Followers  string `json:"followers"`
	Events     string `json:"events"`
}

// Coordinates represents the geographic position of a venue
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Event represents an event in the catalog.
// Date and time are free-form display strings, not parsed timestamps.
type Event struct {
	ID             int          `json:"id" db:"id"`
	Title          string       `json:"title" db:"title"`
	Date           string       `json:"date" db:"date"`
	Time           string       `json:"time" db:"time"`
	Location       string       `json:"location" db:"location"`
	Venue          string       `json:"venue" db:"venue"`
	Price          string       `json:"price" db:"price"`
	Rating         string       `json:"rating" db:"rating"`
	Attendees      string       `json:"attendees" db:"attendees"`
	Image          string       `json:"image" db:"image"`
	Category       string       `json:"category" db:"category"`
	IsPopular      bool         `json:"is_popular" db:"is_popular"`
	AttendeeImages []string     `json:"attendee_images,omitempty" db:"attendee_images"`
	Tickets        []TicketType `json:"tickets" db:"tickets"`
	Description    string       `json:"description" db:"description"`
	Organizer      Organizer    `json:"organizer" db:"organizer"`
	Coordinates    *Coordinates `json:"coordinates,omitempty" db:"coordinates"`
	CreatedBy      int          `json:"created_by" db:"created_by"`
	Status         EventStatus  `json:"status" db:"status"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at" db:"updated_at"`
}

// EventCreateRequest represents the data needed to create an event
type EventCreateRequest struct {
	Title          string       `json:"title"`
	Date           string       `json:"date"`
	Time           string       `json:"time"`
	Location       string       `json:"location"`
	Venue          string       `json:"venue"`
	Price          string       `json:"price"`
	Rating         string       `json:"rating"`
	Attendees      string       `json:"attendees"`
	Image          string       `json:"image"`
	Category       string       `json:"category"`
	IsPopular      bool         `json:"is_popular"`
	AttendeeImages []string     `json:"attendee_images"`
	Tickets        []TicketType `json:"tickets"`
	Description    string       `json:"description"`
	Organizer      Organizer    `json:"organizer"`
	Coordinates    *Coordinates `json:"coordinates"`
	Status         EventStatus  `json:"status"`
}

// EventUpdateRequest represents the fields an event owner may change.
// Nil pointers leave the stored value untouched.
type EventUpdateRequest struct {
	Title          *string       `json:"title"`
	Date           *string       `json:"date"`
	Time           *string       `json:"time"`
	Location       *string       `json:"location"`
	Venue          *string       `json:"venue"`
	Price          *string       `json:"price"`
	Rating         *string       `json:"rating"`
	Attendees      *string       `json:"attendees"`
	Image          *string       `json:"image"`
	Category       *string       `json:"category"`
	IsPopular      *bool         `json:"is_popular"`
	AttendeeImages *[]string     `json:"attendee_images"`
	Tickets        *[]TicketType `json:"tickets"`
	Description    *string       `json:"description"`
	Organizer      *Organizer    `json:"organizer"`
	Coordinates    *Coordinates  `json:"coordinates"`
	Status         *EventStatus  `json:"status"`
}

// IsValidCategory reports whether category is in the closed category set
func IsValidCategory(category string) bool {
	return containsString(ValidCategories, category)
}

// Validate validates event creation data
func (req *EventCreateRequest) Validate() error {
	if strings.TrimSpace(req.Title) == "" {
		return errors.New("event title is required")
	}
	if len(req.Title) > 100 {
		return errors.New("title cannot exceed 100 characters")
	}
	if strings.TrimSpace(req.Date) == "" {
		return errors.New("event date is required")
	}
	if strings.TrimSpace(req.Time) == "" {
		return errors.New("event time is required")
	}
	if strings.TrimSpace(req.Location) == "" {
		return errors.New("event location is required")
	}
	if strings.TrimSpace(req.Venue) == "" {
		return errors.New("event venue is required")
	}
	if strings.TrimSpace(req.Price) == "" {
		return errors.New("event price is required")
	}
	if strings.TrimSpace(req.Image) == "" {
		return errors.New("event image is required")
	}
	if strings.TrimSpace(req.Description) == "" {
		return errors.New("event description is required")
	}
	if !IsValidCategory(req.Category) {
		return errors.New("invalid category, valid categories are: " + strings.Join(ValidCategories, ", "))
	}
	if strings.TrimSpace(req.Organizer.Name) == "" {
		return errors.New("organizer name is required")
	}

	for _, t := range req.Tickets {
		if strings.TrimSpace(t.Type) == "" {
			return errors.New("ticket type name is required")
		}
		if strings.TrimSpace(t.Price) == "" {
			return errors.New("ticket price is required")
		}
	}

	if req.Status != "" {
		if err := validateEventStatus(req.Status); err != nil {
			return err
		}
	}

	return nil
}

// Validate validates event update data
func (req *EventUpdateRequest) Validate() error {
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return errors.New("event title cannot be empty")
	}
	if req.Category != nil && !IsValidCategory(*req.Category) {
		return errors.New("invalid category, valid categories are: " + strings.Join(ValidCategories, ", "))
	}
	if req.Status != nil {
		if err := validateEventStatus(*req.Status); err != nil {
			return err
		}
	}
	if req.Tickets != nil {
		for _, t := range *req.Tickets {
			if strings.TrimSpace(t.Type) == "" {
				return errors.New("ticket type name is required")
			}
		}
	}
	return nil
}

func validateEventStatus(status EventStatus) error {
	switch status {
	case EventDraft, EventPublished, EventCancelled:
		return nil
	default:
		return errors.New("invalid event status")
	}
}

// TicketTypeNames returns the names of the event's defined ticket types
func (e *Event) TicketTypeNames() []string {
	names := make([]string, 0, len(e.Tickets))
	for _, t := range e.Tickets {
		names = append(names, t.Type)
	}
	return names
}

// IsPublished returns true if the event is visible to attendees
func (e *Event) IsPublished() bool {
	return e.Status == EventPublished
}
