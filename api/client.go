// Package api is the HTTP client for the interview platform backend. It
// attaches bearer credentials, transparently refreshes an expired access
// token once per request, and signs the user out when refresh fails.
package api

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

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrUnauthorized is returned once both the access token and the refresh
// flow have been exhausted. The caller should treat the user as signed out.
var ErrUnauthorized = errors.New("api: unauthorized")

type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: unexpected status %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	baseURL     string
	httpClient  *http.Client
	tokens      TokenStore
	onSignedOut func()
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func WithTokenStore(tokens TokenStore) Option {
	return func(c *Client) { c.tokens = tokens }
}

// WithSignedOutCallback registers a callback invoked when credentials are
// cleared after a failed refresh.
func WithSignedOutCallback(callback func()) Option {
	return func(c *Client) { c.onSignedOut = callback }
}

func NewClient(baseURL string, opts ...Option) *Client {
	client := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   30 * time.Second,
		},
		tokens: NewMemoryTokenStore("", ""),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// do performs one API call. On a 401 it attempts exactly one token refresh
// and retries the original request once with the new access token.
func (c *Client) do(ctx context.Context, method string, path string, body any, out any) error {
	access, _ := c.tokens.Tokens()

	resp, err := c.send(ctx, method, path, body, access)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		access, err = c.refreshAccessToken(ctx)
		if err != nil {
			c.signOut()
			return fmt.Errorf("%w: %s", ErrUnauthorized, err)
		}

		resp, err = c.send(ctx, method, path, body, access)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			c.signOut()
			return ErrUnauthorized
		}
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return &Error{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) send(ctx context.Context, method string, path string, body any, access string) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

func (c *Client) refreshAccessToken(ctx context.Context) (string, error) {
	_, refresh := c.tokens.Tokens()
	if refresh == "" {
		return "", fmt.Errorf("no refresh token")
	}

	resp, err := c.send(ctx, http.MethodPost, "/users/login/refresh/",
		map[string]string{"refresh": refresh}, "")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("refresh rejected with status %d", resp.StatusCode)
	}

	var parsed struct {
		Access string `json:"access"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode refresh response: %w", err)
	}
	if parsed.Access == "" {
		return "", fmt.Errorf("refresh response missing access token")
	}

	c.tokens.SetTokens(parsed.Access, refresh)
	return parsed.Access, nil
}

func (c *Client) signOut() {
	c.tokens.Clear()
	if c.onSignedOut != nil {
		c.onSignedOut()
	}
}
