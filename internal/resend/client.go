// Package resend is a client for the Resend transactional email API,
// covering the two call shapes the campaign dispatcher needs: unitary send
// and batch send.
package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/bde-platform/mailer/internal/config"
	"github.com/bde-platform/mailer/internal/pkg/httpretry"
)

// APIError is a structured error returned by the provider.
type APIError struct {
	StatusCode int    `json:"statusCode"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("resend: %s (status %d): %s", e.Name, e.StatusCode, e.Message)
}

// Client is a Resend API client. Transient transport failures and 429/5xx
// responses are retried with backoff by the underlying retry client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient httpretry.HTTPDoer
}

// NewClient creates a client from provider configuration.
func NewClient(cfg config.ResendConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: httpretry.New(&http.Client{
			Timeout: cfg.Timeout(),
		}, cfg.MaxRetries),
	}
}

// Send submits one message to the unitary endpoint and returns the
// provider-assigned message ID.
func (c *Client) Send(ctx context.Context, req SendRequest) (string, error) {
	var resp SendResponse
	if err := c.post(ctx, "/emails", req, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// SendBatch submits up to 100 messages in one call and returns the
// provider-assigned IDs in submission order. The batch endpoint accepts
// neither attachments nor scheduled_at; callers must strip both.
func (c *Client) SendBatch(ctx context.Context, reqs []SendRequest) ([]string, error) {
	if len(reqs) == 0 {
		return nil, nil
	}
	var resp BatchSendResponse
	if err := c.post(ctx, "/emails/batch", reqs, &resp); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(resp.Data))
	for _, d := range resp.Data {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Name = "unknown_error"
			apiErr.Message = string(data)
		}
		apiErr.StatusCode = resp.StatusCode
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
