package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// RelaySender posts each message as JSON to an HTTP push relay.
type RelaySender struct {
	url        string
	apiKey     string
	httpClient *http.Client
}

// NewRelaySender creates a RelaySender for the given endpoint.
func NewRelaySender(url, apiKey string, httpClient *http.Client) *RelaySender {
	return &RelaySender{
		url:        strings.TrimRight(url, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

type relayRequest struct {
	Token string            `json:"token"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// Send delivers one message. Any non-2xx response is an error.
func (s *RelaySender) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	jsonBody, err := json.Marshal(relayRequest{Token: token, Title: title, Body: body, Data: data})
	if err != nil {
		return fmt.Errorf("marshaling push message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("X-API-Key", s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending push: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sending push: unexpected status %d", resp.StatusCode)
	}
	return nil
}
