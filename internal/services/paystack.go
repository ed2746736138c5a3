package services

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ticketmate-backend/internal/config"
)

// PaystackService handles payments via the Paystack API
type PaystackService struct {
	config  config.PaystackConfig
	client  *http.Client
	baseURL string
}

// NewPaystackService creates a new Paystack payment service
func NewPaystackService(cfg config.PaystackConfig) *PaystackService {
	return &PaystackService{
		config:  cfg,
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: "https://api.paystack.co",
	}
}

// TransactionRequest represents a payment initialization request
type TransactionRequest struct {
	Email       string            `json:"email"`
	Amount      int64             `json:"amount"`   // Amount in pesewas
	Currency    string            `json:"currency"` // GHS
	Reference   string            `json:"reference"`
	CallbackURL string            `json:"callback_url,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Channels    []string          `json:"channels,omitempty"` // card, bank, ussd, qr, mobile_money
}

// TransactionResponse represents the response from transaction initialization
type TransactionResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    TransactionData `json:"data"`
}

// TransactionData contains the transaction initialization data
type TransactionData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// TransactionVerification represents a transaction verification response
type TransactionVerification struct {
	Status  bool               `json:"status"`
	Message string             `json:"message"`
	Data    TransactionDetails `json:"data"`
}

// TransactionDetails contains detailed transaction information
type TransactionDetails struct {
	ID        int64             `json:"id"`
	Domain    string            `json:"domain"`
	Status    string            `json:"status"`
	Reference string            `json:"reference"`
	Amount    int64             `json:"amount"`
	Currency  string            `json:"currency"`
	PaidAt    string            `json:"paid_at"`
	CreatedAt string            `json:"created_at"`
	Channel   string            `json:"channel"`
	IPAddress string            `json:"ip_address"`
	Customer  CustomerData      `json:"customer"`
	Metadata  map[string]string `json:"metadata"`
}

// CustomerData contains customer information from the gateway
type CustomerData struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	CustomerCode string `json:"customer_code"`
	Phone        string `json:"phone"`
}

// PaystackError represents an error response from Paystack
type PaystackError struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (e *PaystackError) Error() string {
	return fmt.Sprintf("paystack error: %s", e.Message)
}

// GatewayDeclinedError reports a decline the gateway itself answered with.
// Transport and API failures are plain errors; callers treat those as
// retryable while a decline is final.
type GatewayDeclinedError struct {
	Message string
}

func (e *GatewayDeclinedError) Error() string {
	return fmt.Sprintf("gateway declined: %s", e.Message)
}

// InitializeTransaction initializes a payment transaction with Paystack
func (s *PaystackService) InitializeTransaction(req *TransactionRequest) (*TransactionResponse, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transaction request: %w", err)
	}

	initURL := s.baseURL + "/transaction/initialize"
	httpReq, err := http.NewRequest("POST", initURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+s.config.SecretKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send transaction request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, s.handleAPIError(resp.StatusCode, bodyBytes)
	}

	var transactionResp TransactionResponse
	if err := json.Unmarshal(bodyBytes, &transactionResp); err != nil {
		return nil, fmt.Errorf("failed to decode transaction response: %w", err)
	}

	if !transactionResp.Status {
		return nil, &GatewayDeclinedError{Message: transactionResp.Message}
	}

	return &transactionResp, nil
}

// VerifyTransaction verifies a transaction with Paystack
func (s *PaystackService) VerifyTransaction(reference string) (*TransactionVerification, error) {
	verifyURL := fmt.Sprintf("%s/transaction/verify/%s", s.baseURL, reference)
	httpReq, err := http.NewRequest("GET", verifyURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create verification request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+s.config.SecretKey)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send verification request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read verification response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, s.handleAPIError(resp.StatusCode, bodyBytes)
	}

	var verification TransactionVerification
	if err := json.Unmarshal(bodyBytes, &verification); err != nil {
		return nil, fmt.Errorf("failed to decode verification response: %w", err)
	}

	if !verification.Status {
		return nil, fmt.Errorf("transaction verification failed: %s", verification.Message)
	}

	return &verification, nil
}

// VerifyWebhookSignature verifies the HMAC-SHA512 webhook signature computed
// over the raw request body with the secret key
func (s *PaystackService) VerifyWebhookSignature(payload []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(s.config.SecretKey))
	mac.Write(payload)
	expectedSignature := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expectedSignature))
}

// handleAPIError handles Paystack API errors
func (s *PaystackService) handleAPIError(statusCode int, body []byte) error {
	var paystackErr PaystackError
	if err := json.Unmarshal(body, &paystackErr); err != nil {
		return fmt.Errorf("API error (status %d): %s", statusCode, string(body))
	}

	switch statusCode {
	case 400:
		return fmt.Errorf("bad request: %s", paystackErr.Message)
	case 401:
		return fmt.Errorf("unauthorized: check API keys - %s", paystackErr.Message)
	case 404:
		return fmt.Errorf("not found: %s", paystackErr.Message)
	case 422:
		return fmt.Errorf("validation error: %s", paystackErr.Message)
	default:
		return &paystackErr
	}
}

// parsePaystackTime parses the timestamp formats Paystack is known to emit
func parsePaystackTime(timeStr string) time.Time {
	if timeStr == "" {
		return time.Now()
	}

	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05.000Z",
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, timeStr); err == nil {
			return t
		}
	}

	return time.Now()
}
