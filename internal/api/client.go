// Package api is the HTTP client for the alerts and todos backend.
package api

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

	"golang.org/x/oauth2"

	"github.com/samsriram712/alex/internal/auth"
)

const (
	maxBodyBytes = 8 << 20
	snippetLen   = 120
)

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the underlying client. Its transport is still
// wrapped with the bearer token source when one is given to New.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New builds a client for baseURL. The token source is consulted on every
// request; a nil source sends requests without an Authorization header.
func New(baseURL string, ts oauth2.TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	if ts != nil {
		base := c.http.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		hc := *c.http
		hc.Transport = &oauth2.Transport{Source: ts, Base: base}
		c.http = &hc
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, auth.ErrNoCredentials) {
			return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		drain(resp)
		return nil, fmt.Errorf("%w: %s %s returned %d", ErrUnauthorized, method, path, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, snippetLen))
		drain(resp)
		return nil, &StatusError{
			Method: method,
			Path:   path,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(body)),
		}
	}
	return resp, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	resp.Body.Close()
}

// getList fetches path and decodes a JSON array. Anything that is not an
// array is reported as ErrMalformed rather than decoded loosely.
func getList[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	resp, err := c.do(ctx, http.MethodGet, path, query)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return nil, fmt.Errorf("%w: %s: %s", ErrMalformed, path, snippet(data))
	}
	items := []T{}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	return items, nil
}

func getObject[T any](ctx context.Context, c *Client, path string, query url.Values) (T, error) {
	var out T
	resp, err := c.do(ctx, http.MethodGet, path, query)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return out, fmt.Errorf("reading %s: %w", path, err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return out, fmt.Errorf("%w: %s: %s", ErrMalformed, path, snippet(data))
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	return out, nil
}

// patchStatus requests a transition. The body is not parsed; only the status code matters.
func (c *Client) patchStatus(ctx context.Context, collection, id, status string) error {
	if id == "" {
		return fmt.Errorf("%s: empty id", collection)
	}
	path := "/api/" + collection + "/" + url.PathEscape(id)
	resp, err := c.do(ctx, http.MethodPatch, path, url.Values{"status": {status}})
	if err != nil {
		return err
	}
	drain(resp)
	return nil
}

func snippet(b []byte) string {
	s := string(b)
	if s == "" {
		return "(empty body)"
	}
	if len(s) > snippetLen {
		s = s[:snippetLen] + "..."
	}
	return s
}
