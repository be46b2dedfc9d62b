// Package gateway talks to the Chapa payment gateway over JSON/HTTPS.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrTransport marks failures to reach the gateway or to read its answer:
// network errors, timeouts, non-2xx responses and undecodable bodies.
var ErrTransport = errors.New("payment gateway transport error")

const statusSuccess = "success"

type Config struct {
	BaseURL     string
	SecretKey   string
	Currency    string
	Timeout     time.Duration
	ReturnURL   string
	CallbackURL string
}

type InitializeRequest struct {
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	TxRef       string `json:"tx_ref"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	ReturnURL   string `json:"return_url"`
	CallbackURL string `json:"callback_url"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type InitializeResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		CheckoutURL string `json:"checkout_url"`
	} `json:"data"`
}

func (r *InitializeResponse) OK() bool { return r.Status == statusSuccess }

type VerifyResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (r *VerifyResponse) OK() bool { return r.Status == statusSuccess }

type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
	}
}

// Initialize starts a hosted checkout for req. A decoded response is returned
// even when the gateway reports a business failure; callers check OK().
func (c *Client) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResponse, error) {
	if req.Currency == "" {
		req.Currency = c.cfg.Currency
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal initialize request: %w", err)
	}

	var out InitializeResponse
	if err := c.do(ctx, http.MethodPost, c.endpoint("transactions", "initialize"), bytes.NewReader(body), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Verify asks the gateway for the authoritative state of txRef.
func (c *Client) Verify(ctx context.Context, txRef string) (*VerifyResponse, error) {
	var out VerifyResponse
	if err := c.do(ctx, http.MethodGet, c.endpoint("transactions", "verify", url.PathEscape(txRef)), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) endpoint(parts ...string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.Join(parts, "/")
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build gateway request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s returned %d: %s", ErrTransport, method, endpoint, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrTransport, err)
	}
	return nil
}
