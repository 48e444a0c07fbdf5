package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/studiowebux/usertabs/internal/types"
)

// DefaultBaseURL is the webhook address used when none is configured
const DefaultBaseURL = "http://127.0.0.1:8000/webhook/employee/"

// ErrUserIDRequired is returned before any network call when an id is missing
var ErrUserIDRequired = errors.New("user_id required")

// deleteFallback is returned by DeleteUser when the success body is empty or not JSON
var deleteFallback = json.RawMessage(`{"success":true}`)

// RequestError is returned for any response outside the 2xx range
type RequestError struct {
	Op     string
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s failed: %d %s", e.Op, e.Status, e.Body)
}

// Recorder receives one record per completed call
type Recorder interface {
	Record(ctx context.Context, rec types.CallRecord) error
}

// Client talks to the user webhook. Every write goes to BaseURL; only reads
// append the escaped user id.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
	Recorder   Recorder
}

// New creates a client for baseURL. A zero timeout leaves the transport default (none).
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: timeout},
		Logger:     slog.Default(),
	}
}

// FetchUser reads one user: GET base + encodeURIComponent(id)
func (c *Client) FetchUser(ctx context.Context, id string) (types.FetchResult, error) {
	if id == "" {
		return types.FetchResult{}, fmt.Errorf("get user: %w", ErrUserIDRequired)
	}

	body, err := c.do(ctx, call{
		op:     types.OpFetch,
		label:  "get user",
		method: http.MethodGet,
		url:    c.BaseURL + EscapeID(id),
		userID: id,
	})
	if err != nil {
		return types.FetchResult{}, err
	}

	res, err := types.ParseFetchResult(body)
	if err != nil {
		return types.FetchResult{}, fmt.Errorf("get user: %w", err)
	}
	return res, nil
}

// CreateUser posts a create envelope to the base address
func (c *Client) CreateUser(ctx context.Context, payload types.PayloadEnvelope) (json.RawMessage, error) {
	return c.write(ctx, types.OpCreate, "create user", payload.Data.UserID, payload)
}

// UpdateUser posts an update envelope to the base address. The id is only a
// precondition; it is not part of the request target.
func (c *Client) UpdateUser(ctx context.Context, id string, payload types.PayloadEnvelope) (json.RawMessage, error) {
	if id == "" {
		return nil, fmt.Errorf("update user: %w", ErrUserIDRequired)
	}
	return c.write(ctx, types.OpUpdate, "update user", id, payload)
}

// DeleteUser posts an empty request to the base address. The id is only a
// precondition. Empty or non-JSON success bodies become {"success":true}.
func (c *Client) DeleteUser(ctx context.Context, id string) (json.RawMessage, error) {
	if id == "" {
		return nil, fmt.Errorf("delete user: %w", ErrUserIDRequired)
	}

	body, err := c.do(ctx, call{
		op:     types.OpDelete,
		label:  "delete user",
		method: http.MethodPost,
		url:    c.BaseURL,
		userID: id,
	})
	if err != nil {
		return nil, err
	}

	if !json.Valid(body) {
		return deleteFallback, nil
	}
	return json.RawMessage(body), nil
}

func (c *Client) write(ctx context.Context, op, label, userID string, payload types.PayloadEnvelope) (json.RawMessage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to encode payload: %w", label, err)
	}

	body, err := c.do(ctx, call{
		op:     op,
		label:  label,
		method: http.MethodPost,
		url:    c.BaseURL,
		event:  payload.Event,
		userID: userID,
		body:   data,
	})
	if err != nil {
		return nil, err
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("%s: response is not valid JSON", label)
	}
	return json.RawMessage(body), nil
}

type call struct {
	op     string
	label  string
	method string
	url    string
	event  string
	userID string
	body   []byte
}

// do performs the request and returns the success body
func (c *Client) do(ctx context.Context, cl call) ([]byte, error) {
	startTime := time.Now()

	var bodyReader io.Reader
	if cl.body != nil {
		bodyReader = bytes.NewReader(cl.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, cl.method, cl.url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", cl.label, err)
	}
	if cl.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	rec := types.CallRecord{
		Timestamp: startTime,
		Operation: cl.op,
		Method:    cl.method,
		URL:       cl.url,
		Event:     cl.event,
		UserID:    cl.userID,
	}

	resp, err := c.httpClient().Do(httpReq)
	if err != nil {
		err = fmt.Errorf("%s: %w", cl.label, err)
		c.finish(ctx, rec, startTime, err)
		return nil, err
	}
	defer resp.Body.Close()

	rec.Status = resp.StatusCode
	bodyBytes, readErr := io.ReadAll(resp.Body)

	if !IsSuccessStatus(resp.StatusCode) {
		text := string(bodyBytes)
		if readErr != nil {
			text = http.StatusText(resp.StatusCode)
		}
		reqErr := &RequestError{Op: cl.label, Status: resp.StatusCode, Body: text}
		c.finish(ctx, rec, startTime, reqErr)
		return nil, reqErr
	}

	if readErr != nil {
		err = fmt.Errorf("%s: failed to read response body: %w", cl.label, readErr)
		c.finish(ctx, rec, startTime, err)
		return nil, err
	}

	c.finish(ctx, rec, startTime, nil)
	return bodyBytes, nil
}

// finish logs the call and hands it to the recorder
func (c *Client) finish(ctx context.Context, rec types.CallRecord, start time.Time, err error) {
	rec.Duration = time.Since(start).Milliseconds()
	if err != nil {
		rec.Error = err.Error()
	}

	logger := c.logger()
	attrs := []any{
		slog.String("op", rec.Operation),
		slog.String("method", rec.Method),
		slog.String("url", rec.URL),
		slog.Int("status", rec.Status),
		slog.Int64("duration_ms", rec.Duration),
	}
	if err != nil {
		logger.ErrorContext(ctx, "user API call failed", append(attrs, slog.Any("error", err))...)
	} else {
		logger.DebugContext(ctx, "user API call completed", attrs...)
	}

	if c.Recorder == nil {
		return
	}
	if recErr := c.Recorder.Record(ctx, rec); recErr != nil {
		logger.WarnContext(ctx, "failed to record call", slog.Any("error", recErr))
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// EscapeID escapes a user id like encodeURIComponent: everything except
// letters, digits and - _ . ! ~ * ' ( ) is percent-encoded.
func EscapeID(id string) string {
	escaped := url.QueryEscape(id)
	return idUnescaper.Replace(escaped)
}

// QueryEscape writes spaces as '+' and escapes !*'(); undo both
var idUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%2A", "*",
	"%27", "'",
	"%28", "(",
	"%29", ")",
)

// IsSuccessStatus returns true if status code is 2xx
func IsSuccessStatus(status int) bool {
	return status >= 200 && status < 300
}
