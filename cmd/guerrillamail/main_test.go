package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	guerrillamail "github.com/guerrillamail/client-go"
	"github.com/guerrillamail/client-go/internal/apitest"
)

type harness struct {
	t       *testing.T
	server  *apitest.Server
	session string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	server := apitest.NewServer()
	t.Cleanup(server.Close)
	return &harness{
		t:       t,
		server:  server,
		session: filepath.Join(t.TempDir(), "session.json"),
	}
}

// run executes the CLI and returns what it printed to stdout.
func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	var stdout, stderr bytes.Buffer
	argv := append([]string{
		"guerrillamail",
		"--env-file", "",
		"--base-url", h.server.Endpoint(),
		"--session-file", h.session,
	}, args...)
	err := run(argv, &Config{Stdout: &stdout, Stderr: &stderr})
	return stdout.String(), err
}

func (h *harness) mustRun(out any, args ...string) {
	h.t.Helper()
	stdout, err := h.run(args...)
	if err != nil {
		h.t.Fatalf("run(%v) error = %v", args, err)
	}
	if out == nil {
		return
	}
	if err := json.Unmarshal([]byte(stdout), out); err != nil {
		h.t.Fatalf("run(%v) output %q is not JSON: %v", args, stdout, err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Stdin != os.Stdin {
		t.Error("DefaultConfig().Stdin should be os.Stdin")
	}
	if cfg.Stdout != os.Stdout {
		t.Error("DefaultConfig().Stdout should be os.Stdout")
	}
	if cfg.Stderr != os.Stderr {
		t.Error("DefaultConfig().Stderr should be os.Stderr")
	}
}

func TestRun_UsageErrors(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing command", nil, "missing command"},
		{"unknown command", []string{"bogus"}, "unknown command"},
		{"set-user without user", []string{"set-user"}, "exactly one USER"},
		{"fetch without ids", []string{"fetch"}, "at least one ID"},
		{"delete bad id", []string{"delete", "abc"}, "invalid message id"},
		{"wait bad regex", []string{"wait", "--subject-regex", "("}, "--subject-regex"},
		{"wait subject twice", []string{"wait", "--subject", "a", "--subject-regex", "b"}, "mutually exclusive"},
		{"wait from twice", []string{"wait", "--from", "a", "--from-regex", "b"}, "mutually exclusive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.run(tt.args...)
			if err == nil {
				t.Fatal("run() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("run() error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestRun_AddressPersistsSession(t *testing.T) {
	h := newHarness(t)

	var first, second MailboxOutput
	h.mustRun(&first, "address")
	if !strings.HasSuffix(first.Address, "@"+apitest.Domain) {
		t.Fatalf("address = %q, want @%s", first.Address, apitest.Domain)
	}
	if _, err := os.Stat(h.session); err != nil {
		t.Fatalf("session file not written: %v", err)
	}

	h.mustRun(&second, "address")
	if second.Address != first.Address {
		t.Errorf("second run address = %q, want %q from the saved session", second.Address, first.Address)
	}
}

func TestRun_SetUser(t *testing.T) {
	h := newHarness(t)

	var mb MailboxOutput
	h.mustRun(&mb, "set-user", "alice")
	if mb.Address != "alice@"+apitest.Domain {
		t.Errorf("address = %q, want alice@%s", mb.Address, apitest.Domain)
	}

	h.server.Take("bob", "zed123")
	_, err := h.run("set-user", "--strict", "bob")
	if !errors.Is(err, guerrillamail.ErrAssignmentMismatch) {
		t.Errorf("strict set-user error = %v, want ErrAssignmentMismatch", err)
	}
}

func TestRun_CheckAdvancesCursor(t *testing.T) {
	h := newHarness(t)

	var mb MailboxOutput
	h.mustRun(&mb, "address")
	id, err := h.server.Deliver(mb.Address, "sender@example.com", "Hello", "first body")
	if err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	var list ListOutput
	h.mustRun(&list, "check")
	if len(list.Emails) != 1 || list.Emails[0].ID != id {
		t.Fatalf("check emails = %+v, want id %d", list.Emails, id)
	}
	if list.Seq != id {
		t.Errorf("seq = %d, want %d", list.Seq, id)
	}

	var again ListOutput
	h.mustRun(&again, "check")
	if len(again.Emails) != 0 {
		t.Errorf("second check returned %d emails, want 0", len(again.Emails))
	}

	var all ListOutput
	h.mustRun(&all, "check", "--all")
	if len(all.Emails) != 1 {
		t.Errorf("check --all returned %d emails, want 1", len(all.Emails))
	}
	if all.Seq != id {
		t.Errorf("check --all seq = %d, want cursor kept at %d", all.Seq, id)
	}
}

func TestRun_ListFetchDelete(t *testing.T) {
	h := newHarness(t)

	var mb MailboxOutput
	h.mustRun(&mb, "address")
	var ids []int64
	for i := 0; i < 3; i++ {
		id, err := h.server.Deliver(mb.Address, "sender@example.com", "Message "+strconv.Itoa(i), "body "+strconv.Itoa(i))
		if err != nil {
			t.Fatalf("Deliver() error = %v", err)
		}
		ids = append(ids, id)
	}

	var list ListOutput
	h.mustRun(&list, "list")
	if list.Count != 3 || len(list.Emails) != 3 {
		t.Fatalf("list count = %d, emails = %d, want 3", list.Count, len(list.Emails))
	}

	var one []EmailOutput
	h.mustRun(&one, "fetch", strconv.FormatInt(ids[1], 10))
	if len(one) != 1 || one[0].Body != "body 1" {
		t.Fatalf("fetch = %+v, want body 1", one)
	}
	if one[0].Recipient != mb.Address {
		t.Errorf("recipient = %q, want %q", one[0].Recipient, mb.Address)
	}

	var all []EmailOutput
	h.mustRun(&all, "fetch", "--all")
	if len(all) != 3 {
		t.Fatalf("fetch --all returned %d emails, want 3", len(all))
	}
	for _, e := range all {
		if e.Body == "" {
			t.Errorf("email %d has empty body", e.ID)
		}
	}

	var deleted struct {
		Deleted []int64 `json:"deleted"`
	}
	h.mustRun(&deleted, "delete", strconv.FormatInt(ids[0], 10), strconv.FormatInt(ids[2], 10))
	if len(deleted.Deleted) != 2 {
		t.Errorf("deleted = %v, want 2 ids", deleted.Deleted)
	}

	h.mustRun(&list, "list")
	if len(list.Emails) != 1 || list.Emails[0].ID != ids[1] {
		t.Errorf("list after delete = %+v, want only %d", list.Emails, ids[1])
	}
}

func TestRun_FetchMissing(t *testing.T) {
	h := newHarness(t)
	h.mustRun(nil, "address")

	_, err := h.run("fetch", "99999")
	if err == nil {
		t.Fatal("fetch of a missing id should fail")
	}
	if !errors.Is(err, guerrillamail.ErrProtocol) {
		t.Errorf("error = %v, want ErrProtocol", err)
	}
}

func TestRun_Wait(t *testing.T) {
	h := newHarness(t)

	var mb MailboxOutput
	h.mustRun(&mb, "address")
	if _, err := h.server.Deliver(mb.Address, "news@example.com", "Weekly news", "ignore me"); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	want, err := h.server.Deliver(mb.Address, "noreply@example.com", "Verify your account", "code 123456")
	if err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	var got []EmailOutput
	h.mustRun(&got, "wait", "--subject", "Verify", "--interval", "10ms", "--timeout", "5s")
	if len(got) != 1 || got[0].ID != want {
		t.Fatalf("wait = %+v, want id %d", got, want)
	}
	if got[0].Body != "code 123456" {
		t.Errorf("body = %q, want code 123456", got[0].Body)
	}

	// The cursor now sits past the match, so a second wait times out.
	_, err = h.run("wait", "--subject", "Verify", "--interval", "10ms", "--timeout", "100ms")
	if err == nil {
		t.Error("second wait should time out")
	}
}

func TestRun_WaitTextFlagsMatchSubstrings(t *testing.T) {
	h := newHarness(t)

	var mb MailboxOutput
	h.mustRun(&mb, "address")
	if _, err := h.server.Deliver(mb.Address, "news@example.com", "Price (USD) list", "ignore me"); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	want, err := h.server.Deliver(mb.Address, "noreply@shop.example.com", "Order (USD) receipt", "total 10")
	if err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	// Parentheses are literal text, not a regexp group.
	var got []EmailOutput
	h.mustRun(&got, "wait", "--from", "noreply@shop", "--subject", "(USD)", "--interval", "10ms", "--timeout", "5s")
	if len(got) != 1 || got[0].ID != want {
		t.Fatalf("wait = %+v, want id %d", got, want)
	}
}

func TestRun_ForgetRemovesSession(t *testing.T) {
	h := newHarness(t)

	var mb MailboxOutput
	h.mustRun(&mb, "address")

	var res struct {
		Address   string `json:"address"`
		Forgotten bool   `json:"forgotten"`
	}
	h.mustRun(&res, "forget")
	if !res.Forgotten || res.Address != mb.Address {
		t.Errorf("forget = %+v, want forgotten %s", res, mb.Address)
	}
	if _, err := os.Stat(h.session); !os.IsNotExist(err) {
		t.Errorf("session file still present after forget: %v", err)
	}

	var next MailboxOutput
	h.mustRun(&next, "address")
	if next.Address == mb.Address {
		t.Errorf("address after forget = %q, want a new mailbox", next.Address)
	}
}

func TestRun_Extend(t *testing.T) {
	h := newHarness(t)

	var res struct {
		Expired  bool  `json:"expired"`
		Affected int64 `json:"affected"`
	}
	h.mustRun(&res, "extend")
	if res.Expired || res.Affected != 1 {
		t.Errorf("extend = %+v, want affected 1 and not expired", res)
	}
}

func TestRun_ServiceErrorIsReported(t *testing.T) {
	h := newHarness(t)
	h.mustRun(nil, "address")

	h.server.FailNext("check_email", 503, "busy")
	_, err := h.run("check")
	if !errors.Is(err, guerrillamail.ErrTransport) {
		t.Errorf("error = %v, want ErrTransport", err)
	}
}

func TestRun_NoSessionCookieSkipsSave(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"email_addr":"nocookie@guerrillamailblock.com","email_timestamp":1700000000}`))
	}))
	defer server.Close()

	session := filepath.Join(t.TempDir(), "session.json")
	var stdout, stderr bytes.Buffer
	err := run([]string{
		"guerrillamail",
		"--env-file", "",
		"--base-url", server.URL + "/ajax.php",
		"--session-file", session,
		"address",
	}, &Config{Stdout: &stdout, Stderr: &stderr})
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}

	var mb MailboxOutput
	if err := json.Unmarshal(stdout.Bytes(), &mb); err != nil {
		t.Fatalf("output %q is not JSON: %v", stdout.String(), err)
	}
	if mb.Address != "nocookie@guerrillamailblock.com" {
		t.Errorf("address = %q", mb.Address)
	}
	if _, err := os.Stat(session); !os.IsNotExist(err) {
		t.Errorf("session file written without cookies: %v", err)
	}
}
