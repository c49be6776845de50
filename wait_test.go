package guerrillamail

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"
)

func fastPolling() []WaitOption {
	return []WaitOption{
		WithPollInterval(5 * time.Millisecond),
		WithMaxPollInterval(10 * time.Millisecond),
	}
}

func TestWaitForEmail_AlreadyArrived(t *testing.T) {
	srv := newFake(t)
	c := newTestClient(t, srv)
	ctx := context.Background()

	mb, _ := c.GetEmailAddress(ctx)
	srv.Deliver(mb.Address, "news@example.com", "Newsletter", "ignore me")
	srv.Deliver(mb.Address, "noreply@example.com", "Verify your account", "code 123456")

	email, err := c.WaitForEmail(ctx, append(fastPolling(),
		WithSubjectRegex(regexp.MustCompile(`^Verify`)),
		WithWaitTimeout(time.Second),
	)...)
	if err != nil {
		t.Fatalf("WaitForEmail() error = %v", err)
	}
	if email.Subject != "Verify your account" || email.Body != "code 123456" {
		t.Errorf("email = %+v", email)
	}
}

func TestWaitForEmail_ArrivesLater(t *testing.T) {
	srv := newFake(t)
	c := newTestClient(t, srv)
	ctx := context.Background()

	mb, _ := c.GetEmailAddress(ctx)

	go func() {
		time.Sleep(30 * time.Millisecond)
		srv.Deliver(mb.Address, "noreply@example.com", "Welcome", "hi")
	}()

	email, err := c.WaitForEmail(ctx, append(fastPolling(),
		WithFrom("noreply@example.com"),
		WithWaitTimeout(2*time.Second),
	)...)
	if err != nil {
		t.Fatalf("WaitForEmail() error = %v", err)
	}
	if email.Subject != "Welcome" {
		t.Errorf("Subject = %s, want Welcome", email.Subject)
	}
}

func TestWaitForEmail_Timeout(t *testing.T) {
	srv := newFake(t)
	c := newTestClient(t, srv)

	_, err := c.WaitForEmail(context.Background(), append(fastPolling(), WithWaitTimeout(40*time.Millisecond))...)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitForEmail() error = %v, want DeadlineExceeded", err)
	}
}

func TestWaitForEmail_SinceSkipsOld(t *testing.T) {
	srv := newFake(t)
	c := newTestClient(t, srv)
	ctx := context.Background()

	mb, _ := c.GetEmailAddress(ctx)
	old, _ := srv.Deliver(mb.Address, "a@example.com", "Code", "old")
	srv.Deliver(mb.Address, "a@example.com", "Code", "new")

	email, err := c.WaitForEmail(ctx, append(fastPolling(),
		WithSubject("Code"),
		WithSince(old),
		WithWaitTimeout(time.Second),
	)...)
	if err != nil {
		t.Fatalf("WaitForEmail() error = %v", err)
	}
	if email.Body != "new" {
		t.Errorf("Body = %s, want new", email.Body)
	}
}

func TestWaitForEmail_PermanentErrorStops(t *testing.T) {
	srv := newFake(t)
	srv.FailNext("check_email", 200, "<html>maintenance</html>")
	c := newTestClient(t, srv)

	_, err := c.WaitForEmail(context.Background(), append(fastPolling(), WithWaitTimeout(time.Second))...)
	if !errors.Is(err, ErrProtocol) {
		t.Errorf("WaitForEmail() error = %v, want ErrProtocol", err)
	}
}

func TestWaitForEmail_TransientErrorRetried(t *testing.T) {
	srv := newFake(t)
	c := newTestClient(t, srv)
	ctx := context.Background()

	mb, _ := c.GetEmailAddress(ctx)
	srv.Deliver(mb.Address, "a@example.com", "Hello", "body")
	srv.FailNext("check_email", 502, "bad gateway")

	email, err := c.WaitForEmail(ctx, append(fastPolling(), WithWaitTimeout(time.Second))...)
	if err != nil {
		t.Fatalf("WaitForEmail() error = %v", err)
	}
	if email.Subject != "Hello" {
		t.Errorf("Subject = %s", email.Subject)
	}
}

func TestWaitForEmailCount(t *testing.T) {
	srv := newFake(t)
	c := newTestClient(t, srv)
	ctx := context.Background()

	mb, _ := c.GetEmailAddress(ctx)
	for i := 0; i < 3; i++ {
		srv.Deliver(mb.Address, "a@example.com", "Report", "r")
	}
	srv.Deliver(mb.Address, "a@example.com", "Other", "o")

	emails, err := c.WaitForEmailCount(ctx, 2, append(fastPolling(), WithSubject("Report"), WithWaitTimeout(time.Second))...)
	if err != nil {
		t.Fatalf("WaitForEmailCount() error = %v", err)
	}
	if len(emails) != 2 {
		t.Fatalf("len = %d, want 2", len(emails))
	}
	if emails[0].ID == emails[1].ID {
		t.Error("emails must be distinct")
	}

	if got, err := c.WaitForEmailCount(ctx, 0); err != nil || len(got) != 0 {
		t.Errorf("count 0 = %v, %v", got, err)
	}
	if _, err := c.WaitForEmailCount(ctx, -1); !errors.Is(err, ErrValidation) {
		t.Errorf("count -1 error = %v, want ErrValidation", err)
	}
}

func TestWatchFunc(t *testing.T) {
	srv := newFake(t)
	c := newTestClient(t, srv)

	mb, _ := c.GetEmailAddress(context.Background())
	srv.Deliver(mb.Address, "a@example.com", "one", "1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu   sync.Mutex
		seen []string
	)
	done := make(chan error, 1)
	go func() {
		done <- c.WatchFunc(ctx, func(s *EmailSummary) {
			mu.Lock()
			seen = append(seen, s.Subject)
			n := len(seen)
			mu.Unlock()
			if n == 2 {
				cancel()
			}
		}, fastPolling()...)
	}()

	time.Sleep(20 * time.Millisecond)
	srv.Deliver(mb.Address, "a@example.com", "two", "2")

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("WatchFunc() error = %v, want nil on cancel", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WatchFunc did not return")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 || seen[0] != "one" || seen[1] != "two" {
		t.Errorf("seen = %v, want [one two]", seen)
	}
}
