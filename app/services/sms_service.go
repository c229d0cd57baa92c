// Package services provides external service integrations and technical concerns like notifications and tokens
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kasraden/bazaar-support/config"
	"github.com/kasraden/bazaar-support/utils"
)

// SMSService sends transactional SMS through the provider gateway. The
// support desk only ever sends single staff alerts, one recipient at a time.
type SMSService interface {
	SendSMS(ctx context.Context, recipient, message string) error
}

// SMSServiceImpl implements SMSService
type SMSServiceImpl struct {
	config *config.SMSConfig
	client *http.Client
}

// smsRequest is the provider's message payload. The send endpoint is
// batch-shaped, so even a single message goes up as a one-element array.
type smsRequest struct {
	SrcNum         string `json:"srcNum"`         // Format: 98**********
	Recipient      string `json:"recipient"`      // Format: 98**********
	Body           string `json:"body"`           // Message content
	RetryCount     int    `json:"retryCount"`     // Number of retries
	Type           int    `json:"type"`           // Always 1
	ValidityPeriod int    `json:"validityPeriod"` // Validity in seconds
}

// smsResponse is the per-message delivery result
type smsResponse struct {
	MessageID  int64  `json:"messageId"`
	Recipient  string `json:"recipient"`
	Status     string `json:"status"`
	StatusCode int    `json:"statusCode"`
}

// NewSMSService creates a new SMS service instance
func NewSMSService(cfg *config.SMSConfig) SMSService {
	return &SMSServiceImpl{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// SendSMS sends one SMS message
func (s *SMSServiceImpl) SendSMS(ctx context.Context, recipient, message string) error {
	payload := []smsRequest{{
		SrcNum:         s.config.SourceNumber,
		Recipient:      recipient,
		Body:           message,
		RetryCount:     s.config.RetryCount,
		Type:           1,
		ValidityPeriod: s.config.ValidityPeriod,
	}}

	requestBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal SMS request: %w", err)
	}

	url := fmt.Sprintf("https://%s/api/v3.0.1/send", s.config.ProviderDomain)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(requestBody))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send SMS request: %w", err)
	}
	defer resp.Body.Close()

	var results []smsResponse
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return fmt.Errorf("failed to decode SMS response: %w", err)
	}
	for _, r := range results {
		if r.StatusCode != 200 || r.Status != "ACCEPTED" {
			return fmt.Errorf("SMS delivery failed for %s: %s (%d)", r.Recipient, r.Status, r.StatusCode)
		}
	}
	return nil
}

// MockSMSService implements SMSService for testing
type MockSMSService struct {
	SentMessages []MockSMSMessage
}

// MockSMSMessage represents a mock SMS message
type MockSMSMessage struct {
	Recipient string
	Message   string
	SentAt    time.Time
}

// NewMockSMSService creates a new mock SMS service
func NewMockSMSService() *MockSMSService {
	return &MockSMSService{
		SentMessages: make([]MockSMSMessage, 0),
	}
}

// SendSMS records a mock SMS message
func (m *MockSMSService) SendSMS(ctx context.Context, recipient, message string) error {
	mockMessage := MockSMSMessage{
		Recipient: recipient,
		Message:   message,
		SentAt:    utils.UTCNow(),
	}
	fmt.Println("Mock SMS message sent:", mockMessage)
	m.SentMessages = append(m.SentMessages, mockMessage)
	return nil
}
