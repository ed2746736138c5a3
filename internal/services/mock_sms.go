package services

import (
	"github.com/rs/zerolog/log"

	"ticketmate-backend/internal/config"
)

// MockSMSService provides an SMS sender that uses Hubtel when credentials
// are configured and logs messages otherwise
type MockSMSService struct {
	hubtelService *HubtelService
	useHubtel     bool
}

// NewMockSMSService creates a new SMS service with optional Hubtel support
func NewMockSMSService(cfg *config.HubtelConfig) *MockSMSService {
	service := &MockSMSService{
		useHubtel: false,
	}

	if cfg != nil && cfg.ClientID != "" && cfg.ClientSecret != "" {
		service.hubtelService = NewHubtelService(*cfg)
		service.useHubtel = true
		log.Info().Msg("SMS service: using Hubtel API")
	} else {
		log.Info().Msg("SMS service: using mock (no Hubtel credentials provided)")
	}

	return service
}

// SendSMS sends a message through Hubtel or logs it in mock mode
func (s *MockSMSService) SendSMS(phoneNumber, message string) error {
	if s.useHubtel && s.hubtelService != nil {
		return s.hubtelService.SendSMS(phoneNumber, message)
	}

	log.Info().
		Str("to", NormalizePhoneNumber(phoneNumber)).
		Str("message", message).
		Msg("Mock SMS: message sent")
	return nil
}
