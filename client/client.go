// Package client talks to the organizador REST API and keeps the state of one
// signed-in session: stored credentials, notifications, theme and cached stats.
package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"
)

type (
	Client struct {
		baseURL string
		rest    *rest.Client
		session *Session

		mu             sync.RWMutex
		onUnauthorized func()
	}

	Option func(*Client)
)

// WithHTTPClient replaces the default http.Client, e.g. to set timeouts.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.rest = &rest.Client{HTTPClient: hc}
	}
}

func New(baseURL string, session *Session, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		rest:    &rest.Client{HTTPClient: &http.Client{}},
		session: session,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnUnauthorized registers the hook run on every 401 answer.
// It runs on the goroutine that issued the request.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	c.onUnauthorized = fn
	c.mu.Unlock()
}

func (c *Client) Session() *Session {
	return c.session
}

// Do sends a JSON request and decodes a 2xx answer into out (when non nil).
func (c *Client) Do(ctx context.Context, method rest.Method, path string, query map[string]string, in, out interface{}) error {
	req := rest.Request{
		Method:      method,
		BaseURL:     c.baseURL + path,
		Headers:     map[string]string{"Accept": "application/json"},
		QueryParams: query,
	}
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encoding request")
		}
		req.Body = body
		req.Headers["Content-Type"] = "application/json"
	}
	if token := c.session.Token(); token != "" {
		req.Headers["Authorization"] = "Bearer " + token
	}

	res, err := c.rest.SendWithContext(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.WithMessage(ErrNetwork, err.Error())
	}

	switch {
	case res.StatusCode == http.StatusUnauthorized:
		c.mu.RLock()
		hook := c.onUnauthorized
		c.mu.RUnlock()
		if hook != nil {
			hook()
		}
		return ErrUnauthorized
	case res.StatusCode >= http.StatusInternalServerError:
		return errors.WithMessagef(ErrServer, "%s %s: %d", method, path, res.StatusCode)
	case res.StatusCode >= http.StatusBadRequest:
		return newAPIError(res.StatusCode, res.Body)
	}

	if out != nil && res.Body != "" {
		if err = json.Unmarshal([]byte(res.Body), out); err != nil {
			return errors.Wrap(err, "decoding response")
		}
	}
	return nil
}
