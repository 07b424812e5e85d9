// Package remote is a thin HTTP client for the service API, used by smoke
// tooling and ad-hoc scripts.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pawpark.app/internal/social"
)

// Client talks JSON to a running API server on behalf of one user.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option configures Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New builds a client against baseURL. token may be empty for the public
// endpoints.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status    int
	Message   string `json:"error"`
	RequestID string `json:"request_id"`
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("api: %d %s (request %s)", e.Status, e.Message, e.RequestID)
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

type itemsEnvelope[T any] struct {
	Items []T `json:"items"`
}

func (c *Client) Profile(ctx context.Context) (social.Profile, error) {
	var out social.Profile
	err := c.call(ctx, http.MethodGet, "/v1/me", nil, &out)
	return out, err
}

func (c *Client) UpdateDisplayName(ctx context.Context, name string) (social.Profile, error) {
	var out social.Profile
	err := c.call(ctx, http.MethodPatch, "/v1/me", map[string]any{"display_name": name}, &out)
	return out, err
}

func (c *Client) Parks(ctx context.Context) ([]social.Park, error) {
	var out itemsEnvelope[social.Park]
	err := c.call(ctx, http.MethodGet, "/v1/parks", nil, &out)
	return out.Items, err
}

func (c *Client) Ratings(ctx context.Context, parkID string) ([]social.Rating, error) {
	var out itemsEnvelope[social.Rating]
	err := c.call(ctx, http.MethodGet, "/v1/parks/"+parkID+"/ratings", nil, &out)
	return out.Items, err
}

func (c *Client) AddRating(ctx context.Context, parkID string, stars int, comment string) (social.Rating, error) {
	var out social.Rating
	err := c.call(ctx, http.MethodPost, "/v1/parks/"+parkID+"/ratings", map[string]any{
		"stars":   stars,
		"comment": comment,
	}, &out)
	return out, err
}

func (c *Client) Favorites(ctx context.Context) ([]string, error) {
	var out itemsEnvelope[string]
	err := c.call(ctx, http.MethodGet, "/v1/me/favorites", nil, &out)
	return out.Items, err
}

func (c *Client) ToggleFavorite(ctx context.Context, parkID string) (bool, error) {
	var out struct {
		Favorite bool `json:"favorite"`
	}
	err := c.call(ctx, http.MethodPost, "/v1/me/favorites/"+parkID+"/toggle", nil, &out)
	return out.Favorite, err
}

func (c *Client) Dogs(ctx context.Context) ([]social.Dog, error) {
	var out itemsEnvelope[social.Dog]
	err := c.call(ctx, http.MethodGet, "/v1/me/dogs", nil, &out)
	return out.Items, err
}

func (c *Client) SetDogs(ctx context.Context, dogs []social.Dog) ([]social.Dog, error) {
	var out itemsEnvelope[social.Dog]
	err := c.call(ctx, http.MethodPut, "/v1/me/dogs", map[string]any{"dogs": dogs}, &out)
	return out.Items, err
}

func (c *Client) Connections(ctx context.Context) ([]social.Connection, error) {
	var out itemsEnvelope[social.Connection]
	err := c.call(ctx, http.MethodGet, "/v1/me/connections", nil, &out)
	return out.Items, err
}

func (c *Client) Pair(ctx context.Context, peerID string) error {
	return c.call(ctx, http.MethodPost, "/v1/me/connections", map[string]any{"peer_id": peerID}, nil)
}

func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: resp.Status}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
