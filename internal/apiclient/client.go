// Package apiclient is a typed HTTP client for the game backend.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/neonmatrix/neonmatrix/internal/model"
)

const defaultTimeout = 10 * time.Second

// Error is a non-2xx response from the backend, carrying the server's
// error message.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server returned %d", e.StatusCode)
}

// Profile is the authenticated user as returned by the backend, with the
// balance formatted to 8 decimal places.
type Profile struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Balance   string    `json:"balance"`
	CreatedAt time.Time `json:"createdAt"`
}

// Client talks to the game backend. Login stores the bearer token for
// subsequent authenticated calls.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client for the backend at baseURL (e.g. "http://localhost:3001").
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// SetToken installs a previously obtained bearer token.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Token returns the current bearer token, empty if not logged in.
func (c *Client) Token() string {
	return c.token
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, email, username, password string) (*model.User, error) {
	var out struct {
		User *model.User `json:"user"`
	}
	err := c.do(ctx, "POST", "/api/signup", map[string]string{
		"email":    email,
		"username": username,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.User, nil
}

// Login authenticates and stores the returned token on the client.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var out struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, "POST", "/api/login", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return err
	}
	c.token = out.Token
	return nil
}

// Profile fetches the authenticated user's profile.
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var out struct {
		User *Profile `json:"user"`
	}
	if err := c.do(ctx, "GET", "/api/profile", nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// Sessions returns the user's recorded game sessions, newest first.
func (c *Client) Sessions(ctx context.Context) ([]model.GameSession, error) {
	var out struct {
		Sessions []model.GameSession `json:"sessions"`
	}
	if err := c.do(ctx, "GET", "/api/user/sessions", nil, &out); err != nil {
		return nil, err
	}
	return out.Sessions, nil
}

// RecordSession logs a finished game with the backend.
func (c *Client) RecordSession(ctx context.Context, timeTaken, moves int, difficulty, result string) error {
	return c.do(ctx, "POST", "/api/user/sessions", map[string]any{
		"timeTaken":  timeTaken,
		"moves":      moves,
		"difficulty": difficulty,
		"result":     result,
	}, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return &Error{StatusCode: resp.StatusCode, Message: errBody.Error}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
