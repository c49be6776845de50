package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	guerrillamail "github.com/guerrillamail/client-go"
)

// fetchConcurrency bounds parallel fetch_email calls for fetch --all.
const fetchConcurrency = 4

type app struct {
	client *guerrillamail.Client
	logger *zap.Logger
	out    io.Writer
	state  *sessionState
}

func (a *app) print(v any) error {
	return writeJSON(a.out, v)
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid message id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func addressFlags(flags *pflag.FlagSet) {
	flags.String("lang", "", "mailbox language (defaults to the configured one)")
	flags.String("subscr", "", "subscription code")
}

func runAddress(ctx context.Context, a *app, flags *pflag.FlagSet, _ []string) error {
	var opts []guerrillamail.AddressOption
	if lang, _ := flags.GetString("lang"); lang != "" {
		opts = append(opts, guerrillamail.WithLang(lang))
	}
	if subscr, _ := flags.GetString("subscr"); subscr != "" {
		opts = append(opts, guerrillamail.WithSubscription(subscr))
	}

	mb, err := a.client.GetEmailAddress(ctx, opts...)
	if err != nil {
		return err
	}
	if a.state.mailbox == nil || a.state.mailbox.Address != mb.Address {
		a.state.lastSeq = 0
	}
	a.state.mailbox = mb
	return a.print(mailboxOutput(mb))
}

func setUserFlags(flags *pflag.FlagSet) {
	flags.Bool("strict", false, "fail when the service assigns a different name")
	flags.String("lang", "", "mailbox language")
}

func runSetUser(ctx context.Context, a *app, flags *pflag.FlagSet, args []string) error {
	if len(args) != 1 {
		return errors.New("set-user takes exactly one USER argument")
	}
	var opts []guerrillamail.AddressOption
	if flags.Changed("strict") {
		strict, _ := flags.GetBool("strict")
		opts = append(opts, guerrillamail.WithStrict(strict))
	}
	if lang, _ := flags.GetString("lang"); lang != "" {
		opts = append(opts, guerrillamail.WithLang(lang))
	}

	mb, err := a.client.SetEmailUser(ctx, args[0], opts...)
	if err != nil {
		return err
	}
	if a.state.mailbox == nil || a.state.mailbox.Address != mb.Address {
		a.state.lastSeq = 0
	}
	a.state.mailbox = mb
	return a.print(mailboxOutput(mb))
}

func checkFlags(flags *pflag.FlagSet) {
	flags.Int64("seq", -1, "check above this id instead of the saved cursor")
	flags.Bool("all", false, "check from the start, ignoring the saved cursor")
}

func runCheck(ctx context.Context, a *app, flags *pflag.FlagSet, _ []string) error {
	if _, err := a.ensureMailbox(ctx); err != nil {
		return err
	}

	seq := a.state.lastSeq
	if all, _ := flags.GetBool("all"); all {
		seq = 0
	}
	if flags.Changed("seq") {
		seq, _ = flags.GetInt64("seq")
		if seq < 0 {
			return errors.New("--seq must not be negative")
		}
	}

	list, err := a.client.CheckEmail(ctx, seq)
	if err != nil {
		return err
	}
	a.state.advance(list.LastSeq(seq))
	return a.print(listOutput(list, a.state.lastSeq))
}

func listFlags(flags *pflag.FlagSet) {
	flags.Int("offset", 0, "index of the first message")
	flags.Int64("seq", 0, "only list messages above this id")
}

func listMessages(ctx context.Context, a *app, flags *pflag.FlagSet) (*guerrillamail.MessageList, error) {
	if _, err := a.ensureMailbox(ctx); err != nil {
		return nil, err
	}
	offset, _ := flags.GetInt("offset")
	opts := []guerrillamail.ListOption{guerrillamail.WithOffset(offset)}
	if flags.Changed("seq") {
		seq, _ := flags.GetInt64("seq")
		opts = append(opts, guerrillamail.WithSeq(seq))
	}
	return a.client.GetEmailList(ctx, opts...)
}

func runList(ctx context.Context, a *app, flags *pflag.FlagSet, _ []string) error {
	list, err := listMessages(ctx, a, flags)
	if err != nil {
		return err
	}
	return a.print(listOutput(list, a.state.lastSeq))
}

func fetchFlags(flags *pflag.FlagSet) {
	flags.Bool("all", false, "fetch every message on the first page")
	flags.Int("offset", 0, "page offset used with --all")
}

func runFetch(ctx context.Context, a *app, flags *pflag.FlagSet, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	if all, _ := flags.GetBool("all"); all {
		list, err := listMessages(ctx, a, flags)
		if err != nil {
			return err
		}
		for _, e := range list.Emails {
			ids = append(ids, e.ID)
		}
	}
	if len(ids) == 0 {
		return errors.New("fetch needs at least one ID or --all")
	}

	emails := make([]EmailOutput, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			email, err := a.client.FetchEmail(gctx, id)
			if err != nil {
				return fmt.Errorf("fetch %d: %w", id, err)
			}
			emails[i] = emailOutput(email)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return a.print(emails)
}

func runDelete(ctx context.Context, a *app, _ *pflag.FlagSet, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return errors.New("delete needs at least one ID")
	}
	res, err := a.client.DeleteEmails(ctx, ids)
	if err != nil {
		return err
	}
	return a.print(struct {
		Deleted []int64 `json:"deleted"`
	}{Deleted: res.DeletedIDs})
}

func runForget(ctx context.Context, a *app, _ *pflag.FlagSet, _ []string) error {
	mb, err := a.ensureMailbox(ctx)
	if err != nil {
		return err
	}
	ok, err := a.client.ForgetMe(ctx, mb.Address)
	if err != nil {
		return err
	}
	if ok {
		a.state.forgotten = true
	}
	return a.print(struct {
		Address   string `json:"address"`
		Forgotten bool   `json:"forgotten"`
	}{Address: mb.Address, Forgotten: ok})
}

func runExtend(ctx context.Context, a *app, _ *pflag.FlagSet, _ []string) error {
	if _, err := a.ensureMailbox(ctx); err != nil {
		return err
	}
	res, err := a.client.Extend(ctx)
	if err != nil {
		return err
	}
	return a.print(struct {
		Expired   bool   `json:"expired"`
		CreatedAt string `json:"createdAt,omitempty"`
		Affected  int64  `json:"affected"`
	}{Expired: res.Expired, CreatedAt: formatTime(res.CreatedAt), Affected: res.Affected})
}

func waitFlags(flags *pflag.FlagSet) {
	flags.String("subject", "", "subject must contain this text")
	flags.String("subject-regex", "", "subject must match this pattern")
	flags.String("from", "", "sender must contain this text")
	flags.String("from-regex", "", "sender must match this pattern")
	flags.Int("count", 1, "number of messages to wait for")
	flags.Duration("timeout", 60*time.Second, "give up after this long")
	flags.Duration("interval", 2*time.Second, "initial poll interval")
}

// textPattern turns the substring flag text or the pattern flag re into one
// regexp. At most one of the two may be set.
func textPattern(flags *pflag.FlagSet, text, re string) (*regexp.Regexp, error) {
	substr, _ := flags.GetString(text)
	pattern, _ := flags.GetString(re)
	switch {
	case substr != "" && pattern != "":
		return nil, fmt.Errorf("--%s and --%s are mutually exclusive", text, re)
	case substr != "":
		return regexp.MustCompile(regexp.QuoteMeta(substr)), nil
	case pattern != "":
		compiled, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", re, err)
		}
		return compiled, nil
	}
	return nil, nil
}

func waitOptions(flags *pflag.FlagSet, since int64) ([]guerrillamail.WaitOption, error) {
	opts := []guerrillamail.WaitOption{guerrillamail.WithSince(since)}

	subject, err := textPattern(flags, "subject", "subject-regex")
	if err != nil {
		return nil, err
	}
	if subject != nil {
		opts = append(opts, guerrillamail.WithSubjectRegex(subject))
	}
	from, err := textPattern(flags, "from", "from-regex")
	if err != nil {
		return nil, err
	}
	if from != nil {
		opts = append(opts, guerrillamail.WithFromRegex(from))
	}

	timeout, _ := flags.GetDuration("timeout")
	interval, _ := flags.GetDuration("interval")
	opts = append(opts, guerrillamail.WithWaitTimeout(timeout), guerrillamail.WithPollInterval(interval))
	return opts, nil
}

func runWait(ctx context.Context, a *app, flags *pflag.FlagSet, _ []string) error {
	opts, err := waitOptions(flags, a.state.lastSeq)
	if err != nil {
		return err
	}
	if _, err := a.ensureMailbox(ctx); err != nil {
		return err
	}
	count, _ := flags.GetInt("count")

	emails, err := a.client.WaitForEmailCount(ctx, count, opts...)
	if err != nil {
		return err
	}
	out := make([]EmailOutput, 0, len(emails))
	for _, e := range emails {
		a.state.advance(e.ID)
		out = append(out, emailOutput(e))
	}
	a.logger.Debug("wait finished", zap.Int("matched", len(out)), zap.Int64("seq", a.state.lastSeq))
	return a.print(out)
}
