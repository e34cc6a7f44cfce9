// Package recordstore is a client for the hosted record store backing the
// service menu: a Supabase-compatible service exposing a PostgREST data API
// under /rest/v1 and a GoTrue auth API under /auth/v1.
//
// The client is deliberately narrow. The site only needs ordered selects,
// filtered updates and inserts that return the affected rows, and password
// auth. Row-level write authorization is enforced server-side; a denied update
// comes back as an empty row set, not an error, and callers are expected to
// check for that.
package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gloworganic/site/internal/auth"
)

// Config holds the two connection parameters for the record store. Both are
// required; a client built from a partial config reports Configured() == false
// and the site runs on fallback data.
type Config struct {
	URL     string
	AnonKey string
}

// Client talks to the record store's REST and auth APIs. The zero-value client
// is not usable; construct with New.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client (used in tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a record store client. URL and key are trimmed; if either is
// empty the client is unconfigured and every call fails fast.
func New(cfg Config, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.URL), "/"),
		anonKey: strings.TrimSpace(cfg.AnonKey),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether both connection parameters are present.
func (c *Client) Configured() bool {
	return c != nil && c.baseURL != "" && c.anonKey != ""
}

// ErrNotConfigured is returned by API calls on an unconfigured client.
var ErrNotConfigured = fmt.Errorf("record store is not configured")

// Order describes server-side ordering for a select.
type Order struct {
	Column     string
	Descending bool
	NullsFirst bool
}

func (o Order) encode() string {
	dir := "asc"
	if o.Descending {
		dir = "desc"
	}
	nulls := "nullslast"
	if o.NullsFirst {
		nulls = "nullsfirst"
	}
	return fmt.Sprintf("%s.%s.%s", o.Column, dir, nulls)
}

// Error is a non-2xx response from the store with the body's message surfaced
// verbatim.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("record store returned status %d", e.Status)
}

// Select fetches all rows of a table with the given column list and ordering,
// decoding the response into dest (a pointer to a row slice).
func (c *Client) Select(ctx context.Context, table, columns string, order Order, dest any) error {
	q := url.Values{}
	q.Set("select", columns)
	q.Set("order", order.encode())
	return c.rest(ctx, http.MethodGet, table, q, nil, "", dest)
}

// Update patches the row matching id with the given fields and decodes the
// returned representation into dest (a pointer to a row slice). An empty slice
// means the store matched or authorized nothing; that is not an error here.
func (c *Client) Update(ctx context.Context, table, id string, fields map[string]any, dest any) error {
	q := url.Values{}
	q.Set("id", "eq."+id)
	return c.rest(ctx, http.MethodPatch, table, q, fields, "return=representation", dest)
}

// Insert adds a row and decodes the returned representation into dest
// (a pointer to a row slice holding the single inserted row).
func (c *Client) Insert(ctx context.Context, table string, fields map[string]any, dest any) error {
	return c.rest(ctx, http.MethodPost, table, nil, fields, "return=representation", dest)
}

// rest issues a data API request. The bearer token is the caller's access
// token when one is present in ctx, otherwise the anon key; the apikey header
// always carries the anon key.
func (c *Client) rest(ctx context.Context, method, table string, query url.Values, body map[string]any, prefer string, dest any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	endpoint := c.baseURL + "/rest/v1/" + table
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.bearerToken(ctx))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode %s response: %w", table, err)
	}
	return nil
}

func (c *Client) bearerToken(ctx context.Context) string {
	if token := auth.AccessToken(ctx); token != "" {
		return token
	}
	return c.anonKey
}

// decodeError extracts the store's error message from a failed response.
// PostgREST uses {"message": ...}, GoTrue uses {"msg": ...} or
// {"error_description": ...}.
func decodeError(resp *http.Response) error {
	var body struct {
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		ErrorDescription string `json:"error_description"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	_ = json.Unmarshal(data, &body)

	msg := body.Message
	if msg == "" {
		msg = body.Msg
	}
	if msg == "" {
		msg = body.ErrorDescription
	}
	return &Error{Status: resp.StatusCode, Message: msg}
}
