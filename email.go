package guerrillamail

import (
	"time"

	"github.com/guerrillamail/client-go/internal/api"
)

// Mailbox is the address bound to the client's session.
type Mailbox struct {
	Address string
	// CreatedAt is the assignment timestamp reported by the service.
	CreatedAt time.Time
	Alias     string
	// SIDToken mirrors the session cookie. The cookie remains the binding.
	SIDToken     string
	Subscription Subscription
}

// Subscription holds the subscription fields the service returns with
// address and listing responses.
type Subscription struct {
	Active    string
	Date      string
	Since     time.Time
	ExpiresAt time.Time
}

// EmailSummary is one listed message.
type EmailSummary struct {
	ID         int64
	From       string
	Subject    string
	Excerpt    string
	ReceivedAt time.Time
	IsRead     bool
	// Date is the service's formatted date string.
	Date string
}

// Email is a fully fetched message.
type Email struct {
	EmailSummary
	Recipient   string
	Body        string
	ContentType string
	ReplyTo     string
	Size        int64
	Attachments int64
}

// MessageList is the result of CheckEmail and GetEmailList.
type MessageList struct {
	Address string
	// Count is the total the service reports, which may exceed len(Emails).
	Count      int64
	Emails     []*EmailSummary
	ServerTime time.Time
}

// LastSeq returns the highest message id in the list, or seq if the list
// holds nothing above it.
func (l *MessageList) LastSeq(seq int64) int64 {
	for _, e := range l.Emails {
		if e.ID > seq {
			seq = e.ID
		}
	}
	return seq
}

// DeleteResult is the result of DeleteEmails.
type DeleteResult struct {
	DeletedIDs []int64
	affected   int64
}

// Affected returns how many messages the service deleted: its reported
// count when non-zero, otherwise the number of deleted ids.
func (r *DeleteResult) Affected() int {
	if r.affected > 0 {
		return int(r.affected)
	}
	return len(r.DeletedIDs)
}

// ExtendResult is the result of Extend.
type ExtendResult struct {
	Expired   bool
	CreatedAt time.Time
	Affected  int64
}

func unixTime(ts api.Int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(int64(ts), 0).UTC()
}

func newMailbox(resp *api.AddressResponse) *Mailbox {
	return &Mailbox{
		Address:      resp.EmailAddr,
		CreatedAt:    unixTime(resp.EmailTimestamp),
		Alias:        resp.Alias,
		SIDToken:     resp.SIDToken,
		Subscription: newSubscription(resp.Subscription),
	}
}

func newSubscription(s api.Subscription) Subscription {
	return Subscription{
		Active:    s.Active,
		Date:      s.Date,
		Since:     unixTime(s.Time),
		ExpiresAt: unixTime(s.ExpiresAt),
	}
}

func newEmailSummary(m api.MailSummary) *EmailSummary {
	return &EmailSummary{
		ID:         int64(m.MailID),
		From:       m.MailFrom,
		Subject:    m.MailSubject,
		Excerpt:    m.MailExcerpt,
		ReceivedAt: unixTime(m.MailTimestamp),
		IsRead:     m.MailRead != 0,
		Date:       m.MailDate,
	}
}

func newEmailSummaries(list []api.MailSummary) []*EmailSummary {
	out := make([]*EmailSummary, 0, len(list))
	for _, m := range list {
		out = append(out, newEmailSummary(m))
	}
	return out
}

func newMessageList(resp *api.ListResponse) *MessageList {
	return &MessageList{
		Address:    resp.Email,
		Count:      int64(resp.Count),
		Emails:     newEmailSummaries(resp.List),
		ServerTime: unixTime(resp.TS),
	}
}

func newEmail(resp *api.MailResponse) *Email {
	return &Email{
		EmailSummary: EmailSummary{
			ID:         int64(resp.MailID),
			From:       resp.MailFrom,
			Subject:    resp.MailSubject,
			Excerpt:    resp.MailExcerpt,
			ReceivedAt: unixTime(resp.MailTimestamp),
			IsRead:     resp.MailRead != 0,
			Date:       resp.MailDate,
		},
		Recipient:   resp.MailRecipient,
		Body:        resp.MailBody,
		ContentType: resp.ContentType,
		ReplyTo:     resp.ReplyTo,
		Size:        int64(resp.MailSize),
		Attachments: int64(resp.Attachments),
	}
}

func newDeleteResult(resp *api.DeleteResponse) *DeleteResult {
	ids := make([]int64, 0, len(resp.DeletedIDs))
	for _, id := range resp.DeletedIDs {
		ids = append(ids, int64(id))
	}
	return &DeleteResult{DeletedIDs: ids, affected: int64(resp.Affected)}
}
