package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"ticketmate-backend/internal/config"
)

// HubtelService sends SMS messages through the Hubtel SMSC API
type HubtelService struct {
	config config.HubtelConfig
	client *http.Client
}

// NewHubtelService creates a new Hubtel SMS service
func NewHubtelService(cfg config.HubtelConfig) *HubtelService {
	return &HubtelService{
		config: cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type hubtelSendRequest struct {
	From            string `json:"From"`
	To              string `json:"To"`
	Content         string `json:"Content"`
	ClientReference string `json:"ClientReference"`
}

type hubtelSendResponse struct {
	Status    int    `json:"Status"`
	MessageID string `json:"MessageId"`
	NetworkID string `json:"NetworkId"`
}

var nonPhoneRunes = regexp.MustCompile(`[^\d+]`)

// NormalizePhoneNumber converts Ghanaian phone numbers to the +233 format
// the SMS provider expects. Numbers already in international format pass
// through unchanged.
func NormalizePhoneNumber(phone string) string {
	cleaned := nonPhoneRunes.ReplaceAllString(strings.TrimSpace(phone), "")

	switch {
	case strings.HasPrefix(cleaned, "+233"):
		return cleaned
	case strings.HasPrefix(cleaned, "233"):
		return "+" + cleaned
	case strings.HasPrefix(cleaned, "0") && len(cleaned) == 10:
		return "+233" + cleaned[1:]
	default:
		return cleaned
	}
}

// SendSMS delivers a message to the given phone number
func (s *HubtelService) SendSMS(phoneNumber, message string) error {
	payload := hubtelSendRequest{
		From:            s.config.SenderID,
		To:              NormalizePhoneNumber(phoneNumber),
		Content:         message,
		ClientReference: uuid.New().String(),
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal SMS request: %w", err)
	}

	sendURL := strings.TrimSuffix(s.config.BaseURL, "/") + "/messages/send"
	httpReq, err := http.NewRequest("POST", sendURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create SMS request: %w", err)
	}

	httpReq.SetBasicAuth(s.config.ClientID, s.config.ClientSecret)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send SMS request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read SMS response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("SMS API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var sendResp hubtelSendResponse
	if err := json.Unmarshal(bodyBytes, &sendResp); err != nil {
		return fmt.Errorf("failed to decode SMS response: %w", err)
	}

	if sendResp.Status != 0 {
		return fmt.Errorf("SMS delivery rejected with status %d", sendResp.Status)
	}

	return nil
}
