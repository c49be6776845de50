package main

import (
	"encoding/json"
	"io"
	"time"

	guerrillamail "github.com/guerrillamail/client-go"
)

type MailboxOutput struct {
	Address   string `json:"address"`
	Alias     string `json:"alias,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

type SummaryOutput struct {
	ID         int64  `json:"id"`
	From       string `json:"from"`
	Subject    string `json:"subject"`
	Excerpt    string `json:"excerpt"`
	ReceivedAt string `json:"receivedAt,omitempty"`
	Read       bool   `json:"read"`
}

type EmailOutput struct {
	SummaryOutput
	Recipient   string `json:"recipient"`
	ContentType string `json:"contentType,omitempty"`
	Body        string `json:"body"`
	Size        int64  `json:"size"`
	Attachments int64  `json:"attachments"`
}

type ListOutput struct {
	Address string          `json:"address"`
	Count   int64           `json:"count"`
	Seq     int64           `json:"seq"`
	Emails  []SummaryOutput `json:"emails"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func mailboxOutput(mb *guerrillamail.Mailbox) MailboxOutput {
	return MailboxOutput{
		Address:   mb.Address,
		Alias:     mb.Alias,
		CreatedAt: formatTime(mb.CreatedAt),
	}
}

func summaryOutput(s *guerrillamail.EmailSummary) SummaryOutput {
	return SummaryOutput{
		ID:         s.ID,
		From:       s.From,
		Subject:    s.Subject,
		Excerpt:    s.Excerpt,
		ReceivedAt: formatTime(s.ReceivedAt),
		Read:       s.IsRead,
	}
}

func emailOutput(e *guerrillamail.Email) EmailOutput {
	return EmailOutput{
		SummaryOutput: summaryOutput(&e.EmailSummary),
		Recipient:     e.Recipient,
		ContentType:   e.ContentType,
		Body:          e.Body,
		Size:          e.Size,
		Attachments:   e.Attachments,
	}
}

func listOutput(l *guerrillamail.MessageList, seq int64) ListOutput {
	out := ListOutput{
		Address: l.Address,
		Count:   l.Count,
		Seq:     seq,
		Emails:  make([]SummaryOutput, 0, len(l.Emails)),
	}
	for _, e := range l.Emails {
		out.Emails = append(out.Emails, summaryOutput(e))
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
