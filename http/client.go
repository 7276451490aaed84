package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fwojciec/hacktrack"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// Interface compliance check.
var _ hacktrack.Backend = (*Client)(nil)

// Client implements [hacktrack.Backend] over HTTP.
type Client struct {
	baseURL    string
	tokens     oauth2.TokenSource
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger for request and failure logs.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a [Client] for the backend at baseURL. tokens supplies the
// bearer credential for authenticated calls; it should return
// [hacktrack.ErrNotSignedIn] when no credential is present.
func New(baseURL string, tokens oauth2.TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		httpClient: http.DefaultClient,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Request issues one JSON request and returns the response body. body is
// marshaled as JSON when non-nil. When authenticated is true the bearer token
// is read from the token source immediately before sending; if none is
// present the token source's error is returned and nothing is sent.
//
// Network failures and non-2xx responses return *hacktrack.TransportError.
func (c *Client) Request(ctx context.Context, method, path string, body any, authenticated bool) ([]byte, error) {
	var tok *oauth2.Token
	if authenticated {
		if c.tokens == nil {
			return nil, hacktrack.ErrNotSignedIn
		}
		t, err := c.tokens.Token()
		if err != nil {
			return nil, err
		}
		tok = t
	}
	return c.do(ctx, method, path, body, tok)
}

func (c *Client) do(ctx context.Context, method, path string, body any, tok *oauth2.Token) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("http: encode %s body: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &hacktrack.TransportError{Method: method, Path: path, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)
	if tok != nil {
		tok.SetAuthHeader(req)
	}

	log := c.logger.With("method", method, "path", path, "request_id", requestID)
	log.Debug("backend request", "authenticated", tok != nil)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("backend request failed", "error", err)
		return nil, &hacktrack.TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn("read backend response", "status", resp.StatusCode, "error", err)
		return nil, &hacktrack.TransportError{Method: method, Path: path, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		te := &hacktrack.TransportError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(data),
		}
		log.Warn("backend returned error", "status", resp.StatusCode, "message", te.Message)
		return nil, te
	}
	log.Debug("backend response", "status", resp.StatusCode, "bytes", len(data))
	return data, nil
}

// Chat sends a chat message. The call is authenticated when the session holds
// a token and sent without credentials otherwise.
func (c *Client) Chat(ctx context.Context, message string) (hacktrack.ChatReply, error) {
	var tok *oauth2.Token
	if c.tokens != nil {
		t, err := c.tokens.Token()
		switch {
		case err == nil:
			tok = t
		case !errors.Is(err, hacktrack.ErrNotSignedIn):
			return hacktrack.ChatReply{}, err
		}
	}
	data, err := c.do(ctx, http.MethodPost, chatPath, chatRequest{Message: message}, tok)
	if err != nil {
		return hacktrack.ChatReply{}, err
	}
	var resp chatResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return hacktrack.ChatReply{}, c.decodeError(http.MethodPost, chatPath, err)
	}
	return hacktrack.ChatReply{Reply: resp.Reply, Events: c.convertEvents(http.MethodPost, chatPath, resp.Events)}, nil
}

// SaveEvent persists an event for the signed-in user.
func (c *Client) SaveEvent(ctx context.Context, eventID string) error {
	_, err := c.Request(ctx, http.MethodPost, saveEventPath, eventRequest{EventID: eventID}, true)
	return err
}

// SavedEvents returns the signed-in user's saved events. A JSON null is an
// empty list.
func (c *Client) SavedEvents(ctx context.Context) ([]hacktrack.Event, error) {
	data, err := c.Request(ctx, http.MethodGet, savedEventsPath, nil, true)
	if err != nil {
		return nil, err
	}
	var raw []apiEvent
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, c.decodeError(http.MethodGet, savedEventsPath, err)
	}
	return c.convertEvents(http.MethodGet, savedEventsPath, raw), nil
}

// SetReminder asks the backend to create a calendar reminder for an event.
func (c *Client) SetReminder(ctx context.Context, eventID string) error {
	_, err := c.Request(ctx, http.MethodPost, reminderPath, eventRequest{EventID: eventID}, true)
	return err
}

// convertEvents maps wire events to domain events. An event that fails
// validation is dropped and logged; the rest of the response is kept.
func (c *Client) convertEvents(method, path string, in []apiEvent) []hacktrack.Event {
	out := make([]hacktrack.Event, 0, len(in))
	for i, e := range in {
		ev, err := e.toEvent()
		if err != nil {
			c.logger.Warn("skip invalid event", "method", method, "path", path, "index", i, "error", err)
			continue
		}
		out = append(out, ev)
	}
	return out
}

// decodeError reports a 2xx response whose body could not be used.
func (c *Client) decodeError(method, path string, err error) error {
	c.logger.Warn("decode backend response", "method", method, "path", path, "error", err)
	return &hacktrack.TransportError{Method: method, Path: path, StatusCode: http.StatusOK, Message: "malformed response", Err: err}
}
