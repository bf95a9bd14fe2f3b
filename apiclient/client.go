// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apiclient

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
	"sync"
	"time"

	"github.com/danielhkuo/highlightly/models"
)

// DefaultTimeout bounds every request made with the default HTTP client.
const DefaultTimeout = 30 * time.Second

var (
	ErrMissingToken  = errors.New("login response has no token")
	ErrMissingDevice = errors.New("device init response has no deviceId")
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
}

// Client talks to the remote API. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client

	mu       sync.RWMutex
	deviceID string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http = &http.Client{Timeout: d} }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// SetDeviceID sets the Device-ID header sent with later requests.
func (c *Client) SetDeviceID(id string) {
	c.mu.Lock()
	c.deviceID = id
	c.mu.Unlock()
}

func (c *Client) DeviceID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.deviceID
}

// FetchMeaning looks up a definition. The token may be empty for
// anonymous lookups.
func (c *Client) FetchMeaning(ctx context.Context, token, word string) (*models.WordResponse, error) {
	var resp models.WordResponse
	if err := c.do(ctx, http.MethodPost, "/api/meaning", token, models.MeaningRequest{Word: word}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	req := models.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", req, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, ErrMissingToken
	}
	if resp.UserID == "" && resp.User != nil {
		resp.UserID = resp.User.UserID
	}
	return &resp, nil
}

// SyncWords uploads a batch of words. A 2xx response without an explicit
// success field counts as success.
func (c *Client) SyncWords(ctx context.Context, token string, words []models.SavedWord) (*models.SyncWordsResponse, error) {
	var body struct {
		Success     *bool  `json:"success"`
		SyncedCount int    `json:"syncedCount"`
		Error       string `json:"error"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/words/sync", token, models.SyncWordsRequest{Words: words}, &body); err != nil {
		return nil, err
	}

	resp := &models.SyncWordsResponse{Success: true, SyncedCount: body.SyncedCount, Error: body.Error}
	if body.Success != nil {
		resp.Success = *body.Success
	}
	return resp, nil
}

// FetchWords downloads the user's saved words.
func (c *Client) FetchWords(ctx context.Context, token string) ([]models.SavedWord, error) {
	var resp models.WordsResponse
	if err := c.do(ctx, http.MethodGet, "/api/words", token, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Words == nil {
		return []models.SavedWord{}, nil
	}
	return resp.Words, nil
}

// GetUser fetches the canonical profile. A 2xx response without a user
// returns (nil, nil); validating the payload is up to the caller.
func (c *Client) GetUser(ctx context.Context, token, userID string) (*models.User, error) {
	var resp models.UserResponse
	if err := c.do(ctx, http.MethodGet, "/api/users/"+url.PathEscape(userID), token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// UpdateUser pushes the cached profile to the server.
func (c *Client) UpdateUser(ctx context.Context, token string, user *models.User) error {
	if user == nil || user.UserID == "" {
		return errors.New("update user: missing userId")
	}
	return c.do(ctx, http.MethodPut, "/api/users/"+url.PathEscape(user.UserID), token, user, nil)
}

// InitDevice registers the device and returns its server-assigned id.
func (c *Client) InitDevice(ctx context.Context, info models.DeviceInfo) (string, error) {
	var resp models.InitDeviceResponse
	if err := c.do(ctx, http.MethodPost, "/api/devices/init", "", info, &resp); err != nil {
		return "", err
	}
	if resp.DeviceID == "" {
		return "", ErrMissingDevice
	}
	return resp.DeviceID, nil
}

// Ping issues a HEAD request to the API root and reports whether any
// response came back.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if id := c.DeviceID(); id != "" {
		req.Header.Set("Device-ID", id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Status: resp.StatusCode, Message: errorMessage(resp.Body)}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage extracts "message" or "error" from a JSON error body.
func errorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil {
		return ""
	}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(data))
}
