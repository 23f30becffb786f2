// Package graphql is a small JSON-over-HTTP GraphQL client with bearer-token
// auth against the calls API.
package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Request is the standard GraphQL POST body.
type Request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

// Error is one entry of the GraphQL "errors" array.
type Error struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

// Errors is returned when the server answers 200 with a non-empty "errors" array.
type Errors []Error

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, item := range e {
		msgs = append(msgs, item.Message)
	}
	return "graphql: " + strings.Join(msgs, "; ")
}

// StatusError is returned for non-2xx HTTP responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("graphql: unexpected status %d: %s", e.StatusCode, e.Body)
}

// ErrUnauthorized marks a 401 from the server.
var ErrUnauthorized = errors.New("graphql: unauthorized")

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors Errors          `json:"errors"`
}

type Config struct {
	URL     string
	Timeout time.Duration

	// Credentials. Any combination may be empty; see tokenSource.
	Token        string
	RefreshToken string
	Username     string
	Password     string

	HTTPClient *http.Client
}

// Client is safe for concurrent use.
type Client struct {
	url    string
	http   *http.Client
	tokens *tokenSource
}

func NewClient(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	c := &Client{url: cfg.URL, http: hc}
	if cfg.Token != "" || cfg.RefreshToken != "" || cfg.Username != "" {
		c.tokens = newTokenSource(c, cfg.Token, cfg.RefreshToken, cfg.Username, cfg.Password)
	}
	return c
}

// Do sends req with the current access token and decodes "data" into out.
// A JSON null "data" leaves out untouched. A 401 drops the token and the
// request is retried once with a refreshed one.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	if c.tokens == nil {
		return c.send(ctx, req, "", out)
	}

	bearer, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("graphql auth: %w", err)
	}
	err = c.send(ctx, req, bearer, out)
	if !errors.Is(err, ErrUnauthorized) || !c.tokens.canRenew() {
		return err
	}

	c.tokens.invalidate(bearer)
	if bearer, err = c.tokens.Token(ctx); err != nil {
		return fmt.Errorf("graphql auth: %w", err)
	}
	return c.send(ctx, req, bearer, out)
}

func (c *Client) send(ctx context.Context, req Request, bearer string, out any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal graphql body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	var gqlResp response
	if err := json.NewDecoder(resp.Body).Decode(&gqlResp); err != nil {
		return fmt.Errorf("failed to decode graphql response: %w", err)
	}
	if len(gqlResp.Errors) > 0 {
		return gqlResp.Errors
	}
	if out == nil || len(gqlResp.Data) == 0 || string(gqlResp.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(gqlResp.Data, out); err != nil {
		return fmt.Errorf("failed to decode graphql data: %w", err)
	}
	return nil
}
