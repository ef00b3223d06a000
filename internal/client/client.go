// Package client talks to the todo API and unwraps its response envelope.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/BuzzLyutic/todo-api/internal/model"
)

const DefaultBaseURL = "http://localhost:5000"

// APIError is returned for every response with success=false.
type APIError struct {
	Status  int
	Message string
	Type    string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("%s (%d %s)", e.Message, e.Status, e.Type)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Type string `json:"type"`
	} `json:"error"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) List(ctx context.Context) ([]model.Todo, error) {
	var todos []model.Todo
	if err := c.do(ctx, http.MethodGet, "/api/todos", nil, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

func (c *Client) Get(ctx context.Context, id string) (model.Todo, error) {
	var todo model.Todo
	err := c.do(ctx, http.MethodGet, "/api/todos/"+id, nil, &todo)
	return todo, err
}

func (c *Client) Create(ctx context.Context, f model.TodoFields) (model.Todo, error) {
	var todo model.Todo
	err := c.do(ctx, http.MethodPost, "/api/todos", f, &todo)
	return todo, err
}

// Update sends only the fields that are set.
func (c *Client) Update(ctx context.Context, id string, f model.TodoFields) (model.Todo, error) {
	var todo model.Todo
	err := c.do(ctx, http.MethodPut, "/api/todos/"+id, f, &todo)
	return todo, err
}

func (c *Client) Delete(ctx context.Context, id string) (model.Todo, error) {
	var todo model.Todo
	err := c.do(ctx, http.MethodDelete, "/api/todos/"+id, nil, &todo)
	return todo, err
}

// Health returns the service name reported by the server.
func (c *Client) Health(ctx context.Context) (string, error) {
	var data struct {
		Service string `json:"service"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", nil, &data); err != nil {
		return "", err
	}
	return data.Service, nil
}

// ClearCompleted deletes every done todo, one request at a time.
// It stops at the first failure and reports how many were removed.
func (c *Client) ClearCompleted(ctx context.Context) (int, error) {
	return c.clear(ctx, func(t model.Todo) bool { return t.Done })
}

// ClearAll deletes every todo, one request at a time.
func (c *Client) ClearAll(ctx context.Context) (int, error) {
	return c.clear(ctx, func(model.Todo) bool { return true })
}

func (c *Client) clear(ctx context.Context, match func(model.Todo) bool) (int, error) {
	todos, err := c.List(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, t := range todos {
		if !match(t) {
			continue
		}
		if _, err := c.Delete(ctx, t.ID.Hex()); err != nil {
			return removed, fmt.Errorf("delete %s: %w", t.ID.Hex(), err)
		}
		removed++
	}
	return removed, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}
	if !env.Success || resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode, Message: env.Message}
		if apiErr.Message == "" {
			apiErr.Message = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		if env.Error != nil {
			apiErr.Type = env.Error.Type
		}
		return apiErr
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
