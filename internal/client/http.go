package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/alfredjeanlab/crm/internal/idgen"
	"github.com/alfredjeanlab/crm/internal/model"
	"github.com/alfredjeanlab/crm/internal/session"
)

// DefaultBaseURL is used when no API URL is configured.
const DefaultBaseURL = "http://localhost:5000/api"

// HTTPClient implements CRMClient using the CRM HTTP/JSON REST API.
type HTTPClient struct {
	baseURL    string
	session    *session.Session
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	now        func() time.Time
}

// Option customizes an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.httpClient = hc }
}

// WithRateLimit caps outgoing requests at rps per second. rps <= 0 disables
// limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *HTTPClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the logger used for per-request debug lines.
func WithLogger(l *slog.Logger) Option {
	return func(c *HTTPClient) { c.logger = l }
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:5000/api"). When sess carries a token, an
// Authorization header is set on every collection request.
func NewHTTPClient(baseURL string, sess *session.Session, opts ...Option) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		session:    sess,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// --- Auth ---

func (c *HTTPClient) Login(ctx context.Context, creds *model.Credentials) (*model.AuthResult, error) {
	var res model.AuthResult
	if err := c.do(ctx, request{method: http.MethodPost, path: "/auth/login", body: creds, fallback: "Login failed"}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) Signup(ctx context.Context, reg *model.Registration) (*model.AuthResult, error) {
	var res model.AuthResult
	if err := c.do(ctx, request{method: http.MethodPost, path: "/auth/signup", body: reg, fallback: "Signup failed"}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// --- Contacts ---

func (c *HTTPClient) ListContacts(ctx context.Context, req *ListContactsRequest) (*ListContactsResponse, error) {
	q := url.Values{}
	setPage(q, req.Page, req.Limit)
	if req.Search != "" {
		q.Set("search", req.Search)
	}
	if req.Status != "" {
		q.Set("status", string(req.Status))
	}

	var resp ListContactsResponse
	r := request{method: http.MethodGet, path: withQuery("/contacts", q), authed: true, fallback: "Failed to fetch contacts"}
	if err := c.do(ctx, r, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) CreateContact(ctx context.Context, in *model.ContactInput) (*model.Contact, error) {
	var resp struct {
		Contact *model.Contact `json:"contact"`
	}
	r := request{method: http.MethodPost, path: "/contacts", body: in, authed: true, fallback: "Failed to create contact"}
	if err := c.do(ctx, r, &resp); err != nil {
		return nil, err
	}
	if resp.Contact == nil {
		return nil, &ServerError{StatusCode: http.StatusOK, Message: "Failed to create contact"}
	}
	return resp.Contact, nil
}

func (c *HTTPClient) UpdateContact(ctx context.Context, id string, in *model.ContactInput) (*model.Contact, error) {
	var resp struct {
		Contact *model.Contact `json:"contact"`
	}
	r := request{method: http.MethodPut, path: "/contacts/" + url.PathEscape(id), body: in, authed: true, fallback: "Failed to update contact"}
	if err := c.do(ctx, r, &resp); err != nil {
		return nil, err
	}
	if resp.Contact == nil {
		return nil, &ServerError{StatusCode: http.StatusOK, Message: "Failed to update contact"}
	}
	return resp.Contact, nil
}

func (c *HTTPClient) DeleteContact(ctx context.Context, id string) error {
	r := request{method: http.MethodDelete, path: "/contacts/" + url.PathEscape(id), authed: true, fallback: "Failed to delete contact"}
	return c.do(ctx, r, nil)
}

// ExportContacts returns the server's CSV export unmodified.
func (c *HTTPClient) ExportContacts(ctx context.Context) ([]byte, error) {
	r := request{method: http.MethodGet, path: "/contacts/export", authed: true, fallback: "Failed to export contacts"}
	return c.send(ctx, r)
}

// --- Activities ---

func (c *HTTPClient) ListActivities(ctx context.Context, req *ListActivitiesRequest) (*ListActivitiesResponse, error) {
	q := url.Values{}
	setPage(q, req.Page, req.Limit)
	if req.Action != "" {
		q.Set("action", string(req.Action))
	}

	var resp ListActivitiesResponse
	r := request{method: http.MethodGet, path: withQuery("/activities", q), authed: true, fallback: "Failed to fetch activities"}
	if err := c.do(ctx, r, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- internal helpers ---

type request struct {
	method   string
	path     string
	body     any
	authed   bool
	fallback string // message used when the error body carries none
}

func setPage(q url.Values, page, limit int) {
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// do performs the request and decodes a JSON response into result.
// If result is nil, the response body is discarded.
func (c *HTTPClient) do(ctx context.Context, r request, result any) error {
	body, err := c.send(ctx, r)
	if err != nil {
		return err
	}
	if result == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// send performs an HTTP request with an optional JSON body and returns the raw
// response body of a 2xx response. Non-2xx responses and transport failures
// are classified into the typed errors in errors.go.
func (c *HTTPClient) send(ctx context.Context, r request) ([]byte, error) {
	if r.authed && c.session.Expired(c.now()) {
		return nil, &AuthError{Message: "session expired, please log in again"}
	}

	var bodyReader io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &NetworkError{Message: err.Error(), Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	reqID := idgen.MustRequestID()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if r.authed {
		if tok := c.session.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("api request failed", "method", r.method, "path", r.path, "request_id", reqID, "err", err)
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError(err)
	}
	c.logger.Debug("api request",
		"method", r.method,
		"path", r.path,
		"status", resp.StatusCode,
		"request_id", reqID,
		"duration", time.Since(start))

	if resp.StatusCode >= 400 {
		return nil, classify(resp.StatusCode, errorMessage(respBody, r.fallback))
	}
	return respBody, nil
}

// errorMessage extracts {"message": ...} (or {"error": ...}) from an error
// body, falling back to the operation's default text.
func errorMessage(body []byte, fallback string) string {
	var errResp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil {
		if errResp.Message != "" {
			return errResp.Message
		}
		if errResp.Error != "" {
			return errResp.Error
		}
	}
	return fallback
}

func classify(status int, msg string) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{StatusCode: status, Message: msg}
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return &ValidationError{StatusCode: status, Message: msg}
	default:
		return &ServerError{StatusCode: status, Message: msg}
	}
}

func networkError(err error) *NetworkError {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &NetworkError{Message: "timeout", Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &NetworkError{Message: "request canceled", Err: err}
	}
	return &NetworkError{Message: err.Error(), Err: err}
}
