package services

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"ticketmate-backend/internal/config"
)

// MockPaymentService provides a payment gateway that uses Paystack when
// credentials are configured and simulates transactions otherwise
type MockPaymentService struct {
	paystackService *PaystackService
	usePaystack     bool
}

// NewMockPaymentService creates a new payment service with optional Paystack support
func NewMockPaymentService(cfg *config.PaystackConfig) *MockPaymentService {
	service := &MockPaymentService{
		usePaystack: false,
	}

	if cfg != nil && cfg.SecretKey != "" {
		service.paystackService = NewPaystackService(*cfg)
		service.usePaystack = true
		log.Info().Str("environment", cfg.Environment).Msg("Payment service: using Paystack API")
	} else {
		log.Info().Msg("Payment service: using mock (no Paystack credentials provided)")
	}

	return service
}

// InitializeTransaction initializes a transaction with Paystack or simulates one
func (s *MockPaymentService) InitializeTransaction(req *TransactionRequest) (*TransactionResponse, error) {
	if s.usePaystack && s.paystackService != nil {
		return s.paystackService.InitializeTransaction(req)
	}

	log.Info().
		Str("reference", req.Reference).
		Int64("amount", req.Amount).
		Msg("Mock payment: transaction initialized")

	return &TransactionResponse{
		Status:  true,
		Message: "Authorization URL created",
		Data: TransactionData{
			AuthorizationURL: fmt.Sprintf("https://checkout.example.com/%s", req.Reference),
			AccessCode:       fmt.Sprintf("mock_%d", time.Now().Unix()),
			Reference:        req.Reference,
		},
	}, nil
}

// VerifyTransaction verifies a transaction with Paystack. In mock mode every
// reference verifies as successful.
func (s *MockPaymentService) VerifyTransaction(reference string) (*TransactionVerification, error) {
	if s.usePaystack && s.paystackService != nil {
		return s.paystackService.VerifyTransaction(reference)
	}

	log.Info().Str("reference", reference).Msg("Mock payment: transaction verified")

	return &TransactionVerification{
		Status:  true,
		Message: "Verification successful",
		Data: TransactionDetails{
			Status:    "success",
			Reference: reference,
			Currency:  "GHS",
			PaidAt:    time.Now().Format(time.RFC3339),
			Channel:   "mobile_money",
		},
	}, nil
}

// VerifyWebhookSignature verifies a webhook signature. Mock mode rejects all
// signatures since no secret exists to sign with.
func (s *MockPaymentService) VerifyWebhookSignature(payload []byte, signature string) bool {
	if s.usePaystack && s.paystackService != nil {
		return s.paystackService.VerifyWebhookSignature(payload, signature)
	}
	return false
}
