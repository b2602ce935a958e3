package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/liftlog/internal/auth"
	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/internal/workout"
)

const (
	DefaultTimeout = 15 * time.Second
	userAgent      = "liftlog/1"
)

var (
	ErrUnauthorized = errors.New("not logged in or session expired")
	ErrNotFound     = errors.New("not found")
)

// APIError is a non-2xx response of the liftlog backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("liftlog api: %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// Client talks to the liftlog backend. It is not safe to change the token concurrently with requests.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   DefaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) Token() string {
	return c.token
}

func (c *Client) Version(ctx context.Context) (string, error) {
	body, _, err := c.do(ctx, http.MethodGet, "/version", nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) Signup(ctx context.Context, req auth.SignupRequest) (*auth.User, error) {
	var user auth.User
	if err := c.doJSON(ctx, http.MethodPost, "/a/signup", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login opens a session and keeps its token for the following requests.
func (c *Client) Login(ctx context.Context, email, password string) (*auth.LoginResponse, error) {
	var resp auth.LoginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/a/login", auth.Credentials{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	c.token = resp.Token
	return &resp, nil
}

func (c *Client) Logout(ctx context.Context) error {
	if _, _, err := c.do(ctx, http.MethodGet, "/a/logout", nil); err != nil {
		return err
	}
	c.token = ""
	return nil
}

func (c *Client) DeleteAccount(ctx context.Context) error {
	if _, _, err := c.do(ctx, http.MethodDelete, "/a/account", nil); err != nil {
		return err
	}
	c.token = ""
	return nil
}

func (c *Client) ListRoutines(ctx context.Context) ([]workout.Routine, error) {
	var routines []workout.Routine
	if err := c.doJSON(ctx, http.MethodGet, "/routines", nil, &routines); err != nil {
		return nil, err
	}
	return routines, nil
}

func (c *Client) GetRoutine(ctx context.Context, id int) (*workout.Routine, error) {
	var routine workout.Routine
	if err := c.doJSON(ctx, http.MethodGet, "/routines/"+strconv.Itoa(id), nil, &routine); err != nil {
		return nil, err
	}
	return &routine, nil
}

// SaveRoutine creates the routine when it has no id yet, otherwise replaces it.
func (c *Client) SaveRoutine(ctx context.Context, routine workout.Routine) (*workout.Routine, error) {
	method, path := http.MethodPost, "/routines"
	if routine.ID > 0 {
		method, path = http.MethodPut, "/routines/"+strconv.Itoa(routine.ID)
	}

	var saved workout.Routine
	if err := c.doJSON(ctx, method, path, routine, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *Client) DeleteRoutine(ctx context.Context, id int) error {
	_, _, err := c.do(ctx, http.MethodDelete, "/routines/"+strconv.Itoa(id), nil)
	return err
}

func (c *Client) ActivateRoutine(ctx context.Context, id int) error {
	_, _, err := c.do(ctx, http.MethodPost, "/routines/"+strconv.Itoa(id)+"/activate", nil)
	return err
}

// ExportRoutines returns the backup document and the file name suggested by the backend.
func (c *Client) ExportRoutines(ctx context.Context) ([]byte, string, error) {
	body, header, err := c.do(ctx, http.MethodGet, "/routines/export", nil)
	if err != nil {
		return nil, "", err
	}

	filename := ""
	if _, params, err := mime.ParseMediaType(header.Get("Content-Disposition")); err == nil {
		filename = params["filename"]
	}
	return body, filename, nil
}

func (c *Client) SuggestExercises(ctx context.Context, query string, limit int) ([]string, error) {
	params := url.Values{}
	params.Set("q", query)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var names []string
	if err := c.doJSON(ctx, http.MethodGet, "/exercises/suggestions?"+params.Encode(), nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, reqBody, respBody any) error {
	var payload []byte
	if reqBody != nil {
		var err error
		if payload, err = json.Marshal(reqBody); err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	body, _, err := c.do(ctx, method, path, payload)
	if err != nil {
		return err
	}
	if respBody == nil {
		return nil
	}
	if err := json.Unmarshal(body, respBody); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) (_ []byte, _ http.Header, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "client."+strings.ToLower(method))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("path", path))

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Warnf("close response body: %s", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	return body, resp.Header, nil
}
