// Package client provides an HTTP client for the Fintrack REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/analytics"
	"fintrack/internal/models"
)

// TransactionInput carries the fields to set on create or update. Nil fields
// are omitted from the request, so an update leaves them unchanged.
type TransactionInput struct {
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Description *string          `json:"description,omitempty"`
	Type        *string          `json:"type,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Date        *string          `json:"date,omitempty"`
}

// APIError is a non-success response from the API. Code is empty when the
// server answered in the plain-text error format.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client communicates with the Fintrack API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new API client. apiKey may be empty when the server
// runs without one.
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// List fetches all transactions, newest first.
func (c *Client) List(ctx context.Context) ([]models.Transaction, error) {
	var out []models.Transaction
	if err := c.do(ctx, http.MethodGet, "/transactions", nil, &out); err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	if out == nil {
		out = []models.Transaction{}
	}
	return out, nil
}

// Get fetches one transaction.
func (c *Client) Get(ctx context.Context, id string) (*models.Transaction, error) {
	var out models.Transaction
	if err := c.do(ctx, http.MethodGet, "/transactions/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, fmt.Errorf("fetching transaction: %w", err)
	}
	return &out, nil
}

// Create submits a new transaction and returns the stored record.
func (c *Client) Create(ctx context.Context, in TransactionInput) (*models.Transaction, error) {
	var out models.Transaction
	if err := c.do(ctx, http.MethodPost, "/transactions", in, &out); err != nil {
		return nil, fmt.Errorf("creating transaction: %w", err)
	}
	return &out, nil
}

// Update changes the supplied fields and returns the updated record.
func (c *Client) Update(ctx context.Context, id string, in TransactionInput) (*models.Transaction, error) {
	var out models.Transaction
	if err := c.do(ctx, http.MethodPut, "/transactions/"+url.PathEscape(id), in, &out); err != nil {
		return nil, fmt.Errorf("updating transaction: %w", err)
	}
	return &out, nil
}

// Delete removes a transaction and returns the removed record.
func (c *Client) Delete(ctx context.Context, id string) (*models.Transaction, error) {
	var out models.Transaction
	if err := c.do(ctx, http.MethodDelete, "/transactions/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, fmt.Errorf("deleting transaction: %w", err)
	}
	return &out, nil
}

// Summary fetches the server-computed dashboard aggregates.
func (c *Client) Summary(ctx context.Context) (*analytics.Summary, error) {
	var out analytics.Summary
	if err := c.do(ctx, http.MethodGet, "/summary", nil, &out); err != nil {
		return nil, fmt.Errorf("fetching summary: %w", err)
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// decodeError reads either the structured {"error":{...}} body or a
// plain-text message.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var structured struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &structured); err == nil && structured.Error.Code != "" {
		apiErr.Code = structured.Error.Code
		apiErr.Message = structured.Error.Message
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(raw))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
