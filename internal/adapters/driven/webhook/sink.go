// Package webhook delivers outbox events as JSON POST requests.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driven"
)

// Ensure Sink implements the interface.
var _ driven.EventSink = (*Sink)(nil)

// DefaultTimeout bounds one delivery.
const DefaultTimeout = 10 * time.Second

// Event headers.
const (
	HeaderEventType = "X-Forge-Event"
	HeaderEventID   = "X-Forge-Event-ID"
)

// Sink posts events to a fixed URL.
type Sink struct {
	client *http.Client
	url    string
}

// New creates a sink for url. A zero timeout uses DefaultTimeout.
func New(url string, timeout time.Duration) (*Sink, error) {
	if url == "" {
		return nil, fmt.Errorf("webhook url: %w", domain.ErrInvalidInput)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Sink{client: &http.Client{Timeout: timeout}, url: url}, nil
}

type envelope struct {
	ID        string         `json:"id"`
	TenantID  string         `json:"organization_id"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}

// Deliver posts one event. Any non-2xx response is an error.
func (s *Sink) Deliver(ctx context.Context, event domain.OutboxEvent) error {
	body, err := json.Marshal(envelope{
		ID:        event.ID,
		TenantID:  event.TenantID,
		Type:      string(event.Type),
		Payload:   event.Payload,
		CreatedAt: event.CreatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.ID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderEventType, string(event.Type))
	req.Header.Set(HeaderEventID, event.ID)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver event %s: %w", event.ID, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("deliver event %s: status %d", event.ID, resp.StatusCode)
	}
	return nil
}
