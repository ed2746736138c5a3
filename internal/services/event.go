package services

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"ticketmate-backend/internal/models"
)

const recommendationLimit = 5

// EventService handles the event catalog and discovery feeds
type EventService struct {
	events EventStore
	users  UserStore
}

// NewEventService creates a new event service
func NewEventService(events EventStore, users UserStore) *EventService {
	return &EventService{
		events: events,
		users:  users,
	}
}

// CreateEvent creates a new event owned by the given user
func (s *EventService) CreateEvent(creatorID int, req *models.EventCreateRequest) (*models.Event, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidInput, err.Error())
	}
	return s.events.Create(creatorID, req)
}

// GetEvent returns a single event by ID
func (s *EventService) GetEvent(id int) (*models.Event, error) {
	return s.events.GetByID(id)
}

// ListEvents returns published events, optionally filtered by category
func (s *EventService) ListEvents(category string) ([]*models.Event, error) {
	if category != "" {
		if !models.IsValidCategory(category) {
			return nil, fmt.Errorf("%w: invalid category %q, valid categories: %s",
				models.ErrInvalidInput, category, strings.Join(models.ValidCategories, ", "))
		}
		return s.events.ListByCategory(category)
	}
	return s.events.ListPublished()
}

// ListPopularEvents returns events flagged as popular
func (s *EventService) ListPopularEvents() ([]*models.Event, error) {
	return s.events.ListPopular()
}

// UpdateEvent applies changes to an event. Only the creator or an admin may
// modify an event.
func (s *EventService) UpdateEvent(id int, userID int, isAdmin bool, req *models.EventUpdateRequest) (*models.Event, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidInput, err.Error())
	}

	event, err := s.events.GetByID(id)
	if err != nil {
		return nil, err
	}

	if event.CreatedBy != userID && !isAdmin {
		return nil, models.ErrForbidden
	}

	return s.events.Update(id, req)
}

// DeleteEvent removes an event. Only the creator or an admin may delete it.
func (s *EventService) DeleteEvent(id int, userID int, isAdmin bool) error {
	event, err := s.events.GetByID(id)
	if err != nil {
		return err
	}

	if event.CreatedBy != userID && !isAdmin {
		return models.ErrForbidden
	}

	return s.events.Delete(id)
}

// preferenceCategoryMap folds client preference labels into catalog categories
var preferenceCategoryMap = map[string]string{
	"Dance":                     "Music",
	"Tech Conference":           "Tech",
	"International Events":      "Music",
	"Festivals":                 "Music",
	"Games":                     "Sports",
	"Art":                       "Arts",
	"House Party":               "Music",
	"Cooking":                   "Food",
	"Exhibition":                "Arts",
	"Modelling":                 "Arts",
	"Gospel":                    "Music",
	"Car Showroom and Drifting": "Sports",
}

// MapPreferenceCategories translates user preference labels into the event
// categories they correspond to, deduplicated and in first-seen order
func MapPreferenceCategories(preferences []string) []string {
	seen := make(map[string]bool)
	var categories []string

	for _, pref := range preferences {
		category := pref
		if mapped, ok := preferenceCategoryMap[pref]; ok {
			category = mapped
		}
		if !seen[category] {
			seen[category] = true
			categories = append(categories, category)
		}
	}

	return categories
}

// JustForYou builds a personalized feed of up to five published events.
// Preference matches come first, padded with popular events and then any
// remaining published events, and the final selection is shuffled.
func (s *EventService) JustForYou(userID int) ([]*models.Event, error) {
	var picked []*models.Event

	if userID > 0 {
		user, err := s.users.GetByID(userID)
		if err != nil && !errors.Is(err, models.ErrUserNotFound) {
			return nil, err
		}

		if user != nil && user.Preferences != nil && len(user.Preferences.Categories) > 0 {
			categories := MapPreferenceCategories(user.Preferences.Categories)
			matched, err := s.events.ListPublishedByCategories(categories, nil)
			if err != nil {
				return nil, err
			}
			picked = matched
		}
	}

	if len(picked) < recommendationLimit {
		popular, err := s.events.ListPopularExcluding(eventIDs(picked))
		if err != nil {
			return nil, err
		}
		picked = append(picked, popular...)
	}

	if len(picked) < recommendationLimit {
		remaining, err := s.events.ListPublishedExcluding(eventIDs(picked))
		if err != nil {
			return nil, err
		}
		picked = append(picked, remaining...)
	}

	shuffled := make([]*models.Event, len(picked))
	copy(shuffled, picked)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	if len(shuffled) > recommendationLimit {
		shuffled = shuffled[:recommendationLimit]
	}

	return shuffled, nil
}

func eventIDs(events []*models.Event) []int {
	ids := make([]int, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	return ids
}
