package guerrillamail

import (
	"net/http"
	"regexp"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	defaultBaseURL         = "http://api.guerrillamail.com/ajax.php"
	defaultLang            = "en"
	defaultWaitTimeout     = 60 * time.Second
	defaultPollInterval    = 2 * time.Second
	defaultMaxPollInterval = 30 * time.Second
)

// clientConfig holds configuration for the client.
type clientConfig struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *zap.Logger
	registerer prometheus.Registerer
	metrics    bool
	strict     bool
	lang       string
}

// addressConfig holds configuration for address acquisition and renaming.
type addressConfig struct {
	lang         string
	subscription string
	strict       *bool
}

// listConfig holds configuration for get_email_list.
type listConfig struct {
	offset int
	seq    *int64
}

// waitConfig holds configuration for waiting on emails.
type waitConfig struct {
	subject         string
	subjectRegex    *regexp.Regexp
	from            string
	fromRegex       *regexp.Regexp
	predicate       func(*Email) bool
	timeout         time.Duration
	pollInterval    time.Duration
	maxPollInterval time.Duration
	since           int64
}

// Option configures the client.
type Option func(*clientConfig)

// AddressOption configures GetEmailAddress and SetEmailUser.
type AddressOption func(*addressConfig)

// ListOption configures GetEmailList.
type ListOption func(*listConfig)

// WaitOption configures email waiting.
type WaitOption func(*waitConfig)

// WithBaseURL sets the AJAX endpoint. It may already carry a query string.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client. The client is copied and its
// cookie jar is not used.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithTimeout bounds each call. It overrides the timeout of a client passed
// to WithHTTPClient.
// Default: 30 seconds
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithLogger sets the logger. Calls are logged at debug level and failures
// at warn. The ip and agent values are never logged.
func WithLogger(logger *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithMetrics registers per-call prometheus metrics with reg. A nil reg
// uses the default registerer.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *clientConfig) {
		c.metrics = true
		c.registerer = reg
	}
}

// WithStrictAssignment makes SetEmailUser fail when the service assigns an
// address that does not start with the requested username.
func WithStrictAssignment(strict bool) Option {
	return func(c *clientConfig) {
		c.strict = strict
	}
}

// WithLanguage sets the default lang argument.
// Default: "en"
func WithLanguage(lang string) Option {
	return func(c *clientConfig) {
		c.lang = lang
	}
}

// WithLang overrides the language for one call.
func WithLang(lang string) AddressOption {
	return func(c *addressConfig) {
		c.lang = lang
	}
}

// WithSubscription sends a subscription code. Only GetEmailAddress uses it.
func WithSubscription(code string) AddressOption {
	return func(c *addressConfig) {
		c.subscription = code
	}
}

// WithStrict overrides WithStrictAssignment for one SetEmailUser call.
func WithStrict(strict bool) AddressOption {
	return func(c *addressConfig) {
		c.strict = &strict
	}
}

// WithOffset sets the listing offset.
func WithOffset(offset int) ListOption {
	return func(c *listConfig) {
		c.offset = offset
	}
}

// WithSeq sets the listing cursor.
func WithSeq(seq int64) ListOption {
	return func(c *listConfig) {
		c.seq = &seq
	}
}

// WithSubject filters emails by exact subject match.
func WithSubject(subject string) WaitOption {
	return func(c *waitConfig) {
		c.subject = subject
	}
}

// WithSubjectRegex filters emails by subject regex.
func WithSubjectRegex(pattern *regexp.Regexp) WaitOption {
	return func(c *waitConfig) {
		c.subjectRegex = pattern
	}
}

// WithFrom filters emails by exact sender match.
func WithFrom(from string) WaitOption {
	return func(c *waitConfig) {
		c.from = from
	}
}

// WithFromRegex filters emails by sender regex.
func WithFromRegex(pattern *regexp.Regexp) WaitOption {
	return func(c *waitConfig) {
		c.fromRegex = pattern
	}
}

// WithPredicate filters emails by custom predicate. The predicate sees the
// fully fetched message.
func WithPredicate(fn func(*Email) bool) WaitOption {
	return func(c *waitConfig) {
		c.predicate = fn
	}
}

// WithWaitTimeout sets the timeout for waiting.
// Default: 60 seconds
func WithWaitTimeout(timeout time.Duration) WaitOption {
	return func(c *waitConfig) {
		c.timeout = timeout
	}
}

// WithPollInterval sets the initial polling interval.
// Default: 2 seconds
func WithPollInterval(interval time.Duration) WaitOption {
	return func(c *waitConfig) {
		c.pollInterval = interval
	}
}

// WithMaxPollInterval caps the polling interval. While nothing arrives the
// interval grows toward this value.
// Default: 30 seconds
func WithMaxPollInterval(interval time.Duration) WaitOption {
	return func(c *waitConfig) {
		c.maxPollInterval = interval
	}
}

// WithSince starts polling after the given mail_id. Messages at or below it
// are never reported.
func WithSince(seq int64) WaitOption {
	return func(c *waitConfig) {
		c.since = seq
	}
}

// matchesSummary applies the filters that only need listing fields.
func (w *waitConfig) matchesSummary(s *EmailSummary) bool {
	if w.subject != "" && s.Subject != w.subject {
		return false
	}
	if w.subjectRegex != nil && !w.subjectRegex.MatchString(s.Subject) {
		return false
	}
	if w.from != "" && s.From != w.from {
		return false
	}
	if w.fromRegex != nil && !w.fromRegex.MatchString(s.From) {
		return false
	}
	return true
}

// Matches checks if an email matches the wait criteria.
func (w *waitConfig) Matches(e *Email) bool {
	if !w.matchesSummary(&e.EmailSummary) {
		return false
	}
	if w.predicate != nil && !w.predicate(e) {
		return false
	}
	return true
}
