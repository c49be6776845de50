package guerrillamail

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/guerrillamail/client-go/internal/api"
	"github.com/guerrillamail/client-go/internal/metrics"
)

// Client talks to Guerrilla Mail on behalf of one mailbox session.
//
// The session is carried by cookies the service issues; every call made
// through the same Client acts on the same mailbox. The Client keeps no
// mailbox state of its own: callers hold the Mailbox and the poll cursor.
type Client struct {
	apiClient *api.Client
	logger    *zap.Logger
	strict    bool
	lang      string
}

// buildAPIClient creates and configures an API client from the given config.
func buildAPIClient(ip, agent string, cfg *clientConfig) (*api.Client, error) {
	var httpClient *http.Client
	switch {
	case cfg.httpClient != nil:
		copied := *cfg.httpClient
		if cfg.timeout > 0 {
			copied.Timeout = cfg.timeout
		}
		httpClient = &copied
	case cfg.timeout > 0:
		httpClient = &http.Client{Timeout: cfg.timeout}
	}

	apiCfg := api.Config{
		BaseURL:    cfg.baseURL,
		IP:         ip,
		Agent:      agent,
		HTTPClient: httpClient,
		Logger:     cfg.logger,
	}

	if cfg.metrics {
		collector, err := metrics.New(cfg.registerer)
		if err != nil {
			return nil, err
		}
		apiCfg.Observer = collector
	}

	return api.NewClient(apiCfg)
}

// New creates a client that identifies itself with the given origin ip and
// user agent on every call. Both are required. No request is made until the
// first operation.
func New(ip, agent string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		baseURL: defaultBaseURL,
		lang:    defaultLang,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	apiClient, err := buildAPIClient(ip, agent, cfg)
	if err != nil {
		return nil, err
	}

	return &Client{
		apiClient: apiClient,
		logger:    cfg.logger,
		strict:    cfg.strict,
		lang:      cfg.lang,
	}, nil
}

func (c *Client) addressParams(opts []AddressOption) (api.AddressParams, bool) {
	cfg := &addressConfig{lang: c.lang}
	for _, opt := range opts {
		opt(cfg)
	}
	strict := c.strict
	if cfg.strict != nil {
		strict = *cfg.strict
	}
	return api.AddressParams{Lang: cfg.lang, Subscription: cfg.subscription}, strict
}

// GetEmailAddress returns the session's mailbox, creating one on the first
// call.
func (c *Client) GetEmailAddress(ctx context.Context, opts ...AddressOption) (*Mailbox, error) {
	params, _ := c.addressParams(opts)
	resp, err := c.apiClient.GetEmailAddress(ctx, params)
	if err != nil {
		return nil, err
	}
	return newMailbox(resp), nil
}

// SetEmailUser renames the session's mailbox to user@<domain>.
//
// The service may hand out a different address when the name is taken. With
// strict assignment on, a result whose local part does not start with user
// (ignoring case) fails with an *AssignmentMismatchError; otherwise the
// assigned mailbox is returned as is.
func (c *Client) SetEmailUser(ctx context.Context, user string, opts ...AddressOption) (*Mailbox, error) {
	params, strict := c.addressParams(opts)
	resp, err := c.apiClient.SetEmailUser(ctx, user, params)
	if err != nil {
		return nil, err
	}

	if !api.MatchesRequested(user, resp.EmailAddr) {
		c.logger.Info("username not honoured",
			zap.String("requested", user),
			zap.String("assigned", resp.EmailAddr),
			zap.Bool("strict", strict),
		)
		if strict {
			return nil, api.CheckAssignment(user, resp.EmailAddr)
		}
	}
	return newMailbox(resp), nil
}

// CheckEmail returns messages with an id above seq. Pass the highest id
// seen so far, or zero for everything.
func (c *Client) CheckEmail(ctx context.Context, seq int64) (*MessageList, error) {
	resp, err := c.apiClient.CheckEmail(ctx, seq)
	if err != nil {
		return nil, err
	}
	return newMessageList(resp), nil
}

// GetEmailList returns a page of messages.
func (c *Client) GetEmailList(ctx context.Context, opts ...ListOption) (*MessageList, error) {
	cfg := &listConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	resp, err := c.apiClient.GetEmailList(ctx, api.ListParams{Offset: cfg.offset, Seq: cfg.seq})
	if err != nil {
		return nil, err
	}
	return newMessageList(resp), nil
}

// FetchEmail returns the full message with the given id.
func (c *Client) FetchEmail(ctx context.Context, id int64) (*Email, error) {
	resp, err := c.apiClient.FetchEmail(ctx, id)
	if err != nil {
		return nil, err
	}
	return newEmail(resp), nil
}

// DeleteEmails deletes messages in a single call.
func (c *Client) DeleteEmails(ctx context.Context, ids []int64) (*DeleteResult, error) {
	resp, err := c.apiClient.DeleteEmails(ctx, ids)
	if err != nil {
		return nil, err
	}
	return newDeleteResult(resp), nil
}

// DeleteEmail deletes one message.
func (c *Client) DeleteEmail(ctx context.Context, id int64) (*DeleteResult, error) {
	return c.DeleteEmails(ctx, []int64{id})
}

// ForgetMe detaches address from the session. It reports whether the
// service accepted the request.
func (c *Client) ForgetMe(ctx context.Context, address string) (bool, error) {
	return c.apiClient.ForgetMe(ctx, address)
}

// Extend pushes the mailbox expiry forward.
func (c *Client) Extend(ctx context.Context) (*ExtendResult, error) {
	resp, err := c.apiClient.Extend(ctx)
	if err != nil {
		return nil, err
	}
	return &ExtendResult{
		Expired:   bool(resp.Expired),
		CreatedAt: unixTime(resp.EmailTimestamp),
		Affected:  int64(resp.Affected),
	}, nil
}
