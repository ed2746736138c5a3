package services

import (
	"time"

	"ticketmate-backend/internal/models"
	"ticketmate-backend/internal/repositories"
)

// UserStore defines the user persistence operations the services depend on
type UserStore interface {
	Create(req *models.UserCreateRequest, passwordHash string) (*models.User, error)
	GetByID(id int) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByEmailOrUsername(identifier string) (*models.User, error)
	GetByPhoneNumber(phone string) (*models.User, error)
	Update(id int, req *models.UserUpdateRequest) (*models.User, error)
	UpdatePreferences(id int, req *models.PreferencesUpdateRequest) (*models.User, error)
	UpdatePassword(id int, passwordHash string) error
	SetResetToken(id int, tokenHash string, expiresAt time.Time) error
	GetByResetToken(tokenHash string) (*models.User, error)
	ClearResetToken(id int) error
	MarkVerified(id int) error
}

// EventStore defines the event persistence operations the services depend on
type EventStore interface {
	Create(creatorID int, req *models.EventCreateRequest) (*models.Event, error)
	GetByID(id int) (*models.Event, error)
	ListPublished() ([]*models.Event, error)
	ListByCategory(category string) ([]*models.Event, error)
	ListPopular() ([]*models.Event, error)
	ListPublishedByCategories(categories []string, excludeIDs []int) ([]*models.Event, error)
	ListPublishedExcluding(excludeIDs []int) ([]*models.Event, error)
	ListPopularExcluding(excludeIDs []int) ([]*models.Event, error)
	Update(id int, req *models.EventUpdateRequest) (*models.Event, error)
	Delete(id int) error
}

// OTPStore defines the OTP persistence operations the services depend on
type OTPStore interface {
	Create(phoneNumber, code string, purpose models.OTPPurpose) (*models.OTP, error)
	GetActive(phoneNumber string, purpose models.OTPPurpose) (*models.OTP, error)
	IncrementAttempts(id int) (int, error)
	MarkVerified(id int) error
	Delete(id int) error
	DeleteExpired() error
}

// BookingStore defines the booking ledger operations the services depend on
type BookingStore interface {
	Create(booking *models.Booking) (*models.Booking, error)
	GetByID(id int) (*models.Booking, error)
	GetByPaymentReference(reference string) (*models.Booking, error)
	GetByAnyReference(reference string) (*models.Booking, error)
	SetPaystackReference(id int, reference string) error
	MarkSuccess(id int, paidAt time.Time, ticketNumbers []string, qrCode string) (bool, error)
	MarkFailed(id int) (bool, error)
	GetByUser(filters repositories.BookingSearchFilters) ([]*repositories.BookingWithEvent, int, error)
}

// PaymentGateway abstracts the card and mobile money processor
type PaymentGateway interface {
	InitializeTransaction(req *TransactionRequest) (*TransactionResponse, error)
	VerifyTransaction(reference string) (*TransactionVerification, error)
	VerifyWebhookSignature(payload []byte, signature string) bool
}

// SMSSender abstracts the SMS delivery provider
type SMSSender interface {
	SendSMS(phoneNumber, message string) error
}
