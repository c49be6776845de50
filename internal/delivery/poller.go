package delivery

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/guerrillamail/client-go/internal/api"
	"github.com/guerrillamail/client-go/internal/apierrors"
)

// Checker is the check_email call a Poller drives. *api.Client satisfies it.
type Checker interface {
	CheckEmail(ctx context.Context, seq int64) (*api.ListResponse, error)
}

// Config holds Poller configuration.
type Config struct {
	Checker Checker
	// Seq is the starting cursor. Zero asks for every message.
	Seq     int64
	Backoff Backoff
	Logger  *zap.Logger
}

// Poller walks the check_email cursor forward. The cursor only ever moves to
// a higher mail_id, so a message is delivered at most once per Poller.
type Poller struct {
	checker Checker
	logger  *zap.Logger

	mu      sync.Mutex
	seq     int64
	backoff Backoff
}

// NewPoller creates a Poller from a Config. A zero Backoff is replaced by
// DefaultBackoff.
func NewPoller(cfg Config) *Poller {
	b := cfg.Backoff
	if b == (Backoff{}) {
		b = DefaultBackoff()
	}
	b.Reset()

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Poller{
		checker: cfg.Checker,
		logger:  logger,
		seq:     cfg.Seq,
		backoff: b,
	}
}

// Seq returns the current cursor.
func (p *Poller) Seq() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seq
}

// Poll issues one check_email with the current cursor and returns the
// messages above it, in the order the service listed them. The cursor
// advances to the highest mail_id returned.
func (p *Poller) Poll(ctx context.Context) ([]api.MailSummary, error) {
	p.mu.Lock()
	seq := p.seq
	p.mu.Unlock()

	resp, err := p.checker.CheckEmail(ctx, seq)
	if err != nil {
		return nil, err
	}

	fresh := make([]api.MailSummary, 0, len(resp.List))
	highest := seq
	for _, m := range resp.List {
		id := int64(m.MailID)
		if id <= seq {
			continue
		}
		fresh = append(fresh, m)
		if id > highest {
			highest = id
		}
	}

	p.mu.Lock()
	if highest > p.seq {
		p.seq = highest
	}
	if len(fresh) > 0 {
		p.backoff.Reset()
	} else {
		p.backoff.Grow()
	}
	p.mu.Unlock()

	if len(fresh) > 0 {
		p.logger.Debug("new messages", zap.Int("count", len(fresh)), zap.Int64("seq", highest))
	}
	return fresh, nil
}

// Run polls until handle reports done, handle fails, ctx is done, or a poll
// fails with an error that is not transient. The first poll is immediate.
// Network and HTTP status failures are logged and retried after the backoff.
func (p *Poller) Run(ctx context.Context, handle func([]api.MailSummary) (bool, error)) error {
	for {
		msgs, err := p.Poll(ctx)
		switch {
		case err == nil:
			if len(msgs) > 0 {
				done, herr := handle(msgs)
				if herr != nil || done {
					return herr
				}
			}
		case ctx.Err() != nil:
			return ctx.Err()
		case IsTransient(err):
			p.logger.Warn("poll failed, backing off", zap.Error(err))
			p.mu.Lock()
			p.backoff.Grow()
			p.mu.Unlock()
		default:
			return err
		}

		p.mu.Lock()
		b := p.backoff
		p.mu.Unlock()
		if err := b.Wait(ctx); err != nil {
			return err
		}
	}
}

// IsTransient reports whether err is worth retrying on the next poll.
func IsTransient(err error) bool {
	var netErr *apierrors.NetworkError
	return errors.As(err, &netErr) || errors.Is(err, apierrors.ErrTransport)
}
