package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the API over HTTP.
type Client struct {
	http    *http.Client
	baseURL string
	apiPath string
}

// NewClient returns a client for baseURL; apiPath defaults to /api.
func NewClient(baseURL, apiPath string, timeout time.Duration) *Client {
	if apiPath == "" {
		apiPath = "/api"
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiPath: "/" + strings.Trim(apiPath, "/"),
	}
}

// StatusError is a non-2xx response.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

// Health checks /healthz.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", "", nil, nil)
}

// Register creates an account and returns it with its token.
func (c *Client) Register(ctx context.Context, username, password string) (User, error) {
	var u User
	err := c.do(ctx, http.MethodPost, "/register", "", map[string]string{
		"username": username,
		"password": password,
	}, &u)
	return u, err
}

// CreateLevel stores a level and returns its id.
func (c *Client) CreateLevel(ctx context.Context, token, sceneJSON string) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	err := c.do(ctx, http.MethodPost, c.apiPath+"/level", token, map[string]string{"json": sceneJSON}, &out)
	return out.ID, err
}

// Submit posts one attempt.
func (c *Client) Submit(ctx context.Context, token, levelID string, a Attempt) error {
	return c.do(ctx, http.MethodPost, c.apiPath+"/highscore", token, map[string]any{
		"id":     levelID,
		"points": a.Points,
		"time":   a.Time,
	}, nil)
}

// Highscore fetches the leaderboard of a level.
func (c *Client) Highscore(ctx context.Context, token, levelID string) (Leaderboard, error) {
	var lb Leaderboard
	err := c.do(ctx, http.MethodGet, c.apiPath+"/highscore/"+levelID, token, nil, &lb)
	return lb, err
}

// User fetches the account behind token.
func (c *Client) User(ctx context.Context, token string) (User, error) {
	var u User
	err := c.do(ctx, http.MethodGet, c.apiPath+"/user", token, nil, &u)
	return u, err
}
