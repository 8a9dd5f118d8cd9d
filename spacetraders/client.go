package spacetraders

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

const bearerPrefix = "Bearer "

// Client represents a SpaceTraders API client
type Client struct {
	session   *session
	scheduler *Scheduler
	observers observers
	validate  *validator.Validate
	systems   []string
	userAgent string
	logger    zerolog.Logger
}

// request describes one outbound call
type request struct {
	method string
	path   string
	params url.Values
	// gated calls require a ready session
	gated bool
}

// NewClient creates a new SpaceTraders client. The token may be given with or
// without its "Bearer " prefix. Call Start before using gated endpoints.
func NewClient(token string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, NewInvalidInput("token is required", nil)
	}
	if !strings.HasPrefix(strings.ToLower(token), strings.ToLower(bearerPrefix)) {
		token = bearerPrefix + token
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	baseURL := strings.TrimRight(o.baseURL, "/")
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, NewInvalidInput(fmt.Sprintf("invalid base URL %q", o.baseURL), err)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: o.timeout}
	}

	c := &Client{
		session:   newSession(token, baseURL, httpClient),
		scheduler: NewScheduler(o.minInterval, logger, WithSchedulerConcurrency(o.concurrency)),
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		systems:   normalizeSymbols(o.systems),
		userAgent: o.userAgent,
		logger:    logger,
	}

	return c, nil
}

// Subscribe registers h for client events and returns a function that
// removes it.
func (c *Client) Subscribe(h Handler) (unsubscribe func()) {
	return c.observers.subscribe(h)
}

// State returns the current lifecycle state
func (c *Client) State() State {
	return c.session.State()
}

// User returns the account loaded during bootstrap
func (c *Client) User() (User, bool) {
	return c.session.User()
}

// Systems returns a copy of the cached systems
func (c *Client) Systems() []System {
	return c.session.Systems()
}

// Goods returns a copy of the cached goods
func (c *Client) Goods() []Good {
	return c.session.Goods()
}

// ShipTypes returns a copy of the cached ship types
func (c *Client) ShipTypes() []ShipType {
	return c.session.ShipTypes()
}

// StructureTypes returns a copy of the cached structure types
func (c *Client) StructureTypes() []StructureType {
	return c.session.StructureTypes()
}

// LoanTypes returns a copy of the cached loan types
func (c *Client) LoanTypes() []LoanType {
	return c.session.LoanTypes()
}

// do sends req through the scheduler and returns the decoded payload
func (c *Client) do(ctx context.Context, req request) (gjson.Result, error) {
	if err := c.session.admit(req.gated); err != nil {
		return gjson.Result{}, c.failIn(ctx, req, err)
	}

	ex, err := Do(ctx, c.scheduler, func(ctx context.Context) (Exchange, error) {
		return c.exchange(ctx, req), nil
	})
	if err != nil {
		return gjson.Result{}, c.failIn(ctx, req, classifyAdmission(err))
	}

	if nerr := Classify(ex); nerr != nil {
		return gjson.Result{}, c.failIn(ctx, req, nerr)
	}

	c.logger.Debug().
		Str("method", req.method).
		Str("path", req.path).
		Int("status", ex.StatusCode).
		Msg("SpaceTraders request completed")

	c.observers.emit(Event{Name: EventRequest, Method: req.method, Path: req.path, StatusCode: ex.StatusCode})

	return gjson.ParseBytes(ex.Body), nil
}

// exchange performs one HTTP round trip. It runs inside the scheduler.
func (c *Client) exchange(ctx context.Context, req request) Exchange {
	ex := Exchange{Method: req.method, Path: req.path}

	token, baseURL, httpClient := c.session.transport()
	if httpClient == nil {
		ex.Err = ErrConnectionTerminated
		return ex
	}

	u := baseURL + req.path
	if len(req.params) > 0 {
		u += "?" + req.params.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, nil)
	if err != nil {
		ex.Err = fmt.Errorf("failed to create request: %w", err)
		return ex
	}

	httpReq.Header.Set("Authorization", token)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug().
		Str("method", req.method).
		Str("path", req.path).
		Msg("Making SpaceTraders API request")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		// the transport may report the cancel cause instead of ctx.Err()
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = errors.Join(ctxErr, err)
		}
		ex.Err = fmt.Errorf("request failed: %w", err)
		return ex
	}
	defer resp.Body.Close()

	ex.StatusCode = resp.StatusCode
	ex.Body, err = io.ReadAll(resp.Body)
	if err != nil {
		ex.Err = fmt.Errorf("failed to read response body: %w", err)
	}

	return ex
}

// fail logs and emits a classified error and returns it
func (c *Client) fail(req request, err *Error) error {
	c.logger.Warn().
		Err(err).
		Str("method", req.method).
		Str("path", req.path).
		Str("kind", err.Kind.String()).
		Msg("SpaceTraders request failed")

	c.observers.emit(Event{
		Name:       EventError,
		Method:     req.method,
		Path:       req.path,
		StatusCode: err.StatusCode,
		Err:        err,
	})

	return err
}

// failIn is fail for a call made under ctx. A call abandoned because another
// reference fetch failed is returned without an event, that failure was
// already reported.
func (c *Client) failIn(ctx context.Context, req request, err *Error) error {
	if err.Kind == KindConnectionTerminated && errors.Is(context.Cause(ctx), errWarmLoadAborted) {
		c.logger.Debug().
			Str("method", req.method).
			Str("path", req.path).
			Msg("SpaceTraders request abandoned")
		return err
	}
	return c.fail(req, err)
}

// reject reports a failure detected without an exchange
func (c *Client) reject(method, path string, err *Error) error {
	return c.fail(request{method: method, path: path}, err)
}

// check validates input struct tags, failing with invalid-input
func (c *Client) check(method, path string, input any) error {
	err := c.validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return c.reject(method, path, NewInvalidInput(err.Error(), err))
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return c.reject(method, path, NewInvalidInput(strings.Join(msgs, "; "), err))
}

func normalizeSymbols(symbols []string) []string {
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func escape(segment string) string {
	return url.PathEscape(segment)
}
