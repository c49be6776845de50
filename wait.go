package guerrillamail

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/guerrillamail/client-go/internal/api"
	"github.com/guerrillamail/client-go/internal/delivery"
)

func newWaitConfig(opts []WaitOption) *waitConfig {
	cfg := &waitConfig{
		timeout:         defaultWaitTimeout,
		pollInterval:    defaultPollInterval,
		maxPollInterval: defaultMaxPollInterval,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func (c *Client) newPoller(cfg *waitConfig) *delivery.Poller {
	b := delivery.DefaultBackoff()
	b.Initial = cfg.pollInterval
	b.Max = cfg.maxPollInterval
	return delivery.NewPoller(delivery.Config{
		Checker: c.apiClient,
		Seq:     cfg.since,
		Backoff: b,
		Logger:  c.logger,
	})
}

// collect fetches every listed message that passes the summary filters and
// the predicate, stopping once limit matches are found.
func (c *Client) collect(ctx context.Context, cfg *waitConfig, msgs []api.MailSummary, limit int) ([]*Email, error) {
	var matched []*Email
	for _, m := range msgs {
		summary := newEmailSummary(m)
		if !cfg.matchesSummary(summary) {
			continue
		}
		email, err := c.FetchEmail(ctx, summary.ID)
		if err != nil {
			return matched, fmt.Errorf("fetch email %d: %w", summary.ID, err)
		}
		if cfg.Matches(email) {
			matched = append(matched, email)
			if len(matched) >= limit {
				break
			}
		}
	}
	return matched, nil
}

// WaitForEmail polls check_email until a message matching the criteria
// arrives, then returns it fully fetched. Polling runs in the calling
// goroutine and starts immediately; the interval backs off while nothing
// new arrives.
//
// Example:
//
//	email, err := client.WaitForEmail(ctx,
//	    guerrillamail.WithSubjectRegex(regexp.MustCompile(`(?i)verify`)),
//	    guerrillamail.WithWaitTimeout(2*time.Minute),
//	)
func (c *Client) WaitForEmail(ctx context.Context, opts ...WaitOption) (*Email, error) {
	emails, err := c.WaitForEmailCount(ctx, 1, opts...)
	if err != nil {
		return nil, err
	}
	return emails[0], nil
}

// WaitForEmailCount waits until at least count matching emails are found.
func (c *Client) WaitForEmailCount(ctx context.Context, count int, opts ...WaitOption) ([]*Email, error) {
	if count < 0 {
		return nil, &ValidationError{Field: "count", Reason: fmt.Sprintf("must be non-negative, got %d", count)}
	}
	if count == 0 {
		return []*Email{}, nil
	}

	cfg := newWaitConfig(opts)
	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	var results []*Email
	err := c.newPoller(cfg).Run(ctx, func(msgs []api.MailSummary) (bool, error) {
		matched, err := c.collect(ctx, cfg, msgs, count-len(results))
		results = append(results, matched...)
		if err != nil {
			return false, err
		}
		return len(results) >= count, nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// WatchFunc calls fn for each new message that passes the subject and sender
// filters, until ctx is done. WithPredicate and WithWaitTimeout are ignored;
// bound the watch with ctx.
//
// It returns nil when ctx ends the watch and the error otherwise.
//
// Example:
//
//	err := client.WatchFunc(ctx, func(s *guerrillamail.EmailSummary) {
//	    fmt.Printf("New email: %s\n", s.Subject)
//	})
func (c *Client) WatchFunc(ctx context.Context, fn func(*EmailSummary), opts ...WaitOption) error {
	cfg := newWaitConfig(opts)

	err := c.newPoller(cfg).Run(ctx, func(msgs []api.MailSummary) (bool, error) {
		for _, m := range msgs {
			summary := newEmailSummary(m)
			if cfg.matchesSummary(summary) {
				fn(summary)
			}
		}
		return false, nil
	})
	if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		c.logger.Debug("watch stopped", zap.Error(err))
		return nil
	}
	return err
}
