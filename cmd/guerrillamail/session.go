package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	guerrillamail "github.com/guerrillamail/client-go"
)

// sessionState carries the mailbox and poll cursor between runs.
type sessionState struct {
	path    string
	mailbox *guerrillamail.Mailbox
	lastSeq int64
	// forgotten drops the file on save.
	forgotten bool
}

func newSessionState(path string) *sessionState {
	return &sessionState{path: path}
}

func (s *sessionState) load(client *guerrillamail.Client) error {
	if s.path == "" {
		return nil
	}
	data, err := client.ImportSessionFromFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	s.mailbox = data.Mailbox()
	s.lastSeq = data.LastSeq
	return nil
}

func (s *sessionState) save(client *guerrillamail.Client, logger *zap.Logger) error {
	if s.path == "" {
		return nil
	}
	if s.forgotten {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove session: %w", err)
		}
		return nil
	}
	if s.mailbox == nil {
		return nil
	}
	if !client.HasSession() {
		logger.Warn("service issued no session cookie, session not saved", zap.String("path", s.path))
		return nil
	}
	if err := client.ExportSessionToFile(s.mailbox, s.lastSeq, s.path); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// advance moves the cursor forward only.
func (s *sessionState) advance(seq int64) {
	if seq > s.lastSeq {
		s.lastSeq = seq
	}
}

// ensureMailbox makes sure the session has a known mailbox.
func (a *app) ensureMailbox(ctx context.Context) (*guerrillamail.Mailbox, error) {
	if a.state.mailbox != nil {
		return a.state.mailbox, nil
	}
	mb, err := a.client.GetEmailAddress(ctx)
	if err != nil {
		return nil, fmt.Errorf("get email address: %w", err)
	}
	a.state.mailbox = mb
	return mb, nil
}
