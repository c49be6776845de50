package guerrillamail

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// ExportVersion is the current export format version.
const ExportVersion = 1

// ExportedSession holds what is needed to resume a mailbox session in
// another process. Cookies are the session binding; treat the file as a
// credential. No message data is exported.
type ExportedSession struct {
	// Version is the export format version. MUST be 1.
	Version int `json:"version"`
	// EmailAddress MUST contain exactly one @.
	EmailAddress string `json:"emailAddress"`
	// CreatedAt is the mailbox assignment timestamp.
	CreatedAt time.Time `json:"createdAt"`
	// Cookies maps cookie names to values for the service endpoint.
	Cookies map[string]string `json:"cookies"`
	// LastSeq is the highest message id the exporter had seen.
	LastSeq int64 `json:"lastSeq"`
	// ExportedAt is informational only.
	ExportedAt time.Time `json:"exportedAt"`
}

// Validate checks that the exported data can be imported.
func (e *ExportedSession) Validate() error {
	if e.Version != ExportVersion {
		return fmt.Errorf("%w: unsupported version %d, expected %d", ErrInvalidImportData, e.Version, ExportVersion)
	}
	if e.EmailAddress == "" {
		return fmt.Errorf("%w: emailAddress is required", ErrInvalidImportData)
	}
	if strings.Count(e.EmailAddress, "@") != 1 {
		return fmt.Errorf("%w: emailAddress must contain exactly one @", ErrInvalidImportData)
	}
	if len(e.Cookies) == 0 {
		return fmt.Errorf("%w: cookies are required", ErrInvalidImportData)
	}
	for name := range e.Cookies {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: empty cookie name", ErrInvalidImportData)
		}
	}
	if e.LastSeq < 0 {
		return fmt.Errorf("%w: lastSeq must not be negative", ErrInvalidImportData)
	}
	return nil
}

// Mailbox returns the exported mailbox identity.
func (e *ExportedSession) Mailbox() *Mailbox {
	return &Mailbox{Address: e.EmailAddress, CreatedAt: e.CreatedAt}
}

// HasSession reports whether the service has issued session cookies to this
// client. ExportSession fails until it has.
func (c *Client) HasSession() bool {
	return len(c.apiClient.Session().Snapshot(c.apiClient.Endpoint())) > 0
}

// ExportSession captures the client's session cookies together with mb and
// the caller's poll cursor.
func (c *Client) ExportSession(mb *Mailbox, lastSeq int64) (*ExportedSession, error) {
	if mb == nil {
		return nil, fmt.Errorf("mailbox is nil")
	}

	data := &ExportedSession{
		Version:      ExportVersion,
		EmailAddress: mb.Address,
		CreatedAt:    mb.CreatedAt,
		Cookies:      c.apiClient.Session().Snapshot(c.apiClient.Endpoint()),
		LastSeq:      lastSeq,
		ExportedAt:   time.Now().UTC(),
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}
	return data, nil
}

// ImportSession replaces the client's cookies with the exported ones. No
// request is made; call GetEmailAddress to confirm the session is still
// alive.
func (c *Client) ImportSession(data *ExportedSession) (*Mailbox, error) {
	if data == nil {
		return nil, fmt.Errorf("exported session data cannot be nil")
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}
	if err := c.apiClient.Session().Restore(c.apiClient.Endpoint(), data.Cookies); err != nil {
		return nil, fmt.Errorf("restore cookies: %w", err)
	}
	return data.Mailbox(), nil
}

// ExportSessionToFile writes ExportSession's result as JSON with owner-only
// permissions.
func (c *Client) ExportSessionToFile(mb *Mailbox, lastSeq int64, filePath string) error {
	data, err := c.ExportSession(mb, lastSeq)
	if err != nil {
		return err
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session data: %w", err)
	}

	if err := os.WriteFile(filePath, jsonData, 0600); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// ImportSessionFromFile reads a file written by ExportSessionToFile and
// imports it.
func (c *Client) ImportSessionFromFile(filePath string) (*ExportedSession, error) {
	jsonData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var data ExportedSession
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("%w: parse session data: %v", ErrInvalidImportData, err)
	}

	if _, err := c.ImportSession(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
