package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/guerrillamail/client-go/internal/apierrors"
	"github.com/guerrillamail/client-go/internal/session"
)

// DefaultBaseURL is the public Guerrilla Mail AJAX endpoint.
const DefaultBaseURL = "http://api.guerrillamail.com/ajax.php"

// DefaultTimeout bounds a single call when the caller's context has no deadline.
const DefaultTimeout = 30 * time.Second

// Identity parameter keys attached to every call.
const (
	ParamFunction = "f"
	ParamIP       = "ip"
	ParamAgent    = "agent"
)

// Call outcomes reported to a CallObserver.
const (
	OutcomeOK        = "ok"
	OutcomeNetwork   = "network"
	OutcomeTransport = "transport"
	OutcomeProtocol  = "protocol"
	OutcomeDecode    = "decode"
)

// logBodyLimit bounds how much of a failing body is logged.
const logBodyLimit = 512

// CallObserver receives one notification per completed call.
type CallObserver interface {
	ObserveCall(function, outcome string, statusCode int, duration time.Duration)
}

// Config holds API client configuration.
type Config struct {
	// BaseURL is the AJAX endpoint. It may already carry a query string.
	BaseURL string
	// IP is the caller-declared origin address sent as the "ip" parameter.
	IP string
	// Agent is the caller-declared user agent sent as the "agent" parameter.
	Agent string
	// HTTPClient is copied; its Jar is ignored in favour of Session.
	HTTPClient *http.Client
	// Session is the cookie store binding calls to one mailbox.
	// A fresh store is created when nil.
	Session *session.Store
	Logger  *zap.Logger
	// Observer is optional.
	Observer CallObserver
}

// Client executes Guerrilla Mail AJAX calls for one mailbox session.
type Client struct {
	baseURL    string
	endpoint   *url.URL
	ip         string
	agent      string
	httpClient *http.Client
	session    *session.Store
	logger     *zap.Logger
	observer   CallObserver
}

// NewClient creates a new API client from a Config.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.IP) == "" {
		return nil, &apierrors.ValidationError{Field: ParamIP, Reason: "must not be empty"}
	}
	if strings.TrimSpace(cfg.Agent) == "" {
		return nil, &apierrors.ValidationError{Field: ParamAgent, Reason: "must not be empty"}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	endpoint, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if endpoint.Scheme == "" || endpoint.Host == "" {
		return nil, &apierrors.ValidationError{Field: "base URL", Reason: "must be absolute"}
	}

	var httpClient http.Client
	if cfg.HTTPClient != nil {
		httpClient = *cfg.HTTPClient
	} else {
		httpClient.Timeout = DefaultTimeout
	}
	// Cookies are applied by the session store once a body is fully read.
	httpClient.Jar = nil

	store := cfg.Session
	if store == nil {
		store, err = session.NewStore()
		if err != nil {
			return nil, err
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:    baseURL,
		endpoint:   endpoint,
		ip:         cfg.IP,
		agent:      cfg.Agent,
		httpClient: &httpClient,
		session:    store,
		logger:     logger,
		observer:   cfg.Observer,
	}, nil
}

// BaseURL returns the configured endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Session returns the cookie store used by this client.
func (c *Client) Session() *session.Store {
	return c.session
}

// Endpoint returns the parsed endpoint, used to scope session cookies.
func (c *Client) Endpoint() *url.URL {
	u := *c.endpoint
	return &u
}

// requestURL merges the identity parameters into args and appends them to
// the base URL. Identity parameters override caller keys of the same name.
func (c *Client) requestURL(function string, args Args) string {
	merged := make(Args, len(args)+3)
	for k, v := range args {
		merged[k] = v
	}
	merged[ParamFunction] = function
	merged[ParamIP] = c.ip
	merged[ParamAgent] = c.agent
	return AddQueryString(c.baseURL, merged)
}

// roundTrip issues one GET for function and returns the trimmed JSON body
// together with the HTTP status. Cookies are merged only after the response
// body has been read in full, so a canceled call leaves the session untouched.
func (c *Client) roundTrip(ctx context.Context, log *zap.Logger, function string, args Args) ([]byte, int, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(function, args), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")
	c.session.Apply(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The request URL carries the identity parameters; keep it out of errors and logs.
		err = unwrapURLError(err)
		log.Debug("request failed", zap.Error(err))
		return nil, 0, &apierrors.NetworkError{Function: function, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Debug("reading body failed", zap.Int("status", resp.StatusCode), zap.Error(err))
		return nil, resp.StatusCode, &apierrors.NetworkError{Function: function, Err: unwrapURLError(err)}
	}
	c.session.Merge(resp)

	log.Debug("call completed",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(raw)),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, &apierrors.HTTPError{
			Function:   function,
			StatusCode: resp.StatusCode,
			Status:     strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))),
			Body:       string(raw),
		}
	}

	body, ok := Classify(raw)
	if !ok {
		log.Warn("non-JSON response", zap.String("body", clip(string(body))))
		return nil, resp.StatusCode, &apierrors.ProtocolError{Function: function, Body: string(raw)}
	}
	return body, resp.StatusCode, nil
}

// Call executes function with args and decodes the JSON response into T.
// It is the single dispatch path shared by every operation.
func Call[T any](ctx context.Context, c *Client, function string, args Args) (*T, error) {
	start := time.Now()
	log := c.logger.With(zap.String("function", function), zap.String("call_id", uuid.NewString()))

	body, statusCode, err := c.roundTrip(ctx, log, function, args)
	if err != nil {
		c.observe(function, outcomeOf(err), statusCode, start)
		return nil, err
	}

	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		log.Warn("decode failed", zap.String("body", clip(string(body))), zap.Error(err))
		c.observe(function, OutcomeDecode, statusCode, start)
		return nil, &apierrors.DecodeError{Function: function, Body: string(body), Err: err}
	}

	c.observe(function, OutcomeOK, statusCode, start)
	return &result, nil
}

func (c *Client) observe(function, outcome string, statusCode int, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveCall(function, outcome, statusCode, time.Since(start))
	}
}

func outcomeOf(err error) string {
	var (
		httpErr  *apierrors.HTTPError
		protoErr *apierrors.ProtocolError
	)
	switch {
	case errors.As(err, &httpErr):
		return OutcomeTransport
	case errors.As(err, &protoErr):
		return OutcomeProtocol
	default:
		return OutcomeNetwork
	}
}

func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

func clip(s string) string {
	if len(s) <= logBodyLimit {
		return s
	}
	return s[:logBodyLimit] + "..."
}
