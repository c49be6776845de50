package guerrillamail

import (
	"testing"
	"time"

	"github.com/guerrillamail/client-go/internal/api"
)

func TestNewMailbox(t *testing.T) {
	mb := newMailbox(&api.AddressResponse{
		EmailAddr:      "xyz@guerrillamailblock.com",
		EmailTimestamp: 1700000000,
		Alias:          "a@sharklasers.com",
		SIDToken:       "tok",
		Subscription:   api.Subscription{Active: "Y", ExpiresAt: 1800000000},
	})

	if mb.Address != "xyz@guerrillamailblock.com" {
		t.Errorf("Address = %s", mb.Address)
	}
	if !mb.CreatedAt.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("CreatedAt = %v", mb.CreatedAt)
	}
	if mb.Subscription.Active != "Y" || !mb.Subscription.ExpiresAt.Equal(time.Unix(1800000000, 0)) {
		t.Errorf("Subscription = %+v", mb.Subscription)
	}
	if !mb.Subscription.Since.IsZero() {
		t.Error("zero timestamps should map to the zero time")
	}
}

func TestNewEmail(t *testing.T) {
	e := newEmail(&api.MailResponse{
		MailID:        42,
		MailFrom:      "a@example.com",
		MailRecipient: "b@example.com",
		MailSubject:   "hi",
		MailBody:      "<p>hi</p>",
		MailTimestamp: 1700000000,
		MailRead:      1,
		MailSize:      9,
		ContentType:   "text/html",
		Attachments:   2,
	})

	if e.ID != 42 || e.From != "a@example.com" || e.Recipient != "b@example.com" {
		t.Errorf("email = %+v", e)
	}
	if !e.IsRead || e.Size != 9 || e.Attachments != 2 || e.ContentType != "text/html" {
		t.Errorf("email = %+v", e)
	}
}

func TestMessageList_LastSeq(t *testing.T) {
	list := newMessageList(&api.ListResponse{
		List: []api.MailSummary{{MailID: 5}, {MailID: 9}, {MailID: 7}},
	})

	if got := list.LastSeq(0); got != 9 {
		t.Errorf("LastSeq(0) = %d, want 9", got)
	}
	if got := list.LastSeq(20); got != 20 {
		t.Errorf("LastSeq(20) = %d, want 20", got)
	}
	empty := &MessageList{}
	if got := empty.LastSeq(3); got != 3 {
		t.Errorf("empty LastSeq(3) = %d, want 3", got)
	}
}

func TestDeleteResult_Affected(t *testing.T) {
	res := newDeleteResult(&api.DeleteResponse{DeletedIDs: []api.Int64{1, 2, 3}})
	if res.Affected() != 3 {
		t.Errorf("Affected() = %d, want 3", res.Affected())
	}
	if res.DeletedIDs[2] != 3 {
		t.Errorf("DeletedIDs = %v", res.DeletedIDs)
	}
}

func TestDeleteResult_AffectedPrefersReportedCount(t *testing.T) {
	tests := []struct {
		name string
		resp api.DeleteResponse
		want int
	}{
		{"count only", api.DeleteResponse{Affected: 2}, 2},
		{"count and ids", api.DeleteResponse{DeletedIDs: []api.Int64{7}, Affected: 4}, 4},
		{"ids only", api.DeleteResponse{DeletedIDs: []api.Int64{7, 8}}, 2},
		{"neither", api.DeleteResponse{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := tt.resp
			if got := newDeleteResult(&resp).Affected(); got != tt.want {
				t.Errorf("Affected() = %d, want %d", got, tt.want)
			}
		})
	}
}
