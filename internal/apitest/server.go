// Package apitest runs an in-memory Guerrilla Mail service for tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionCookie is the cookie the fake service binds mailboxes to.
const SessionCookie = "PHPSESSID"

// Domain is the mailbox domain the fake service assigns.
const Domain = "guerrillamailblock.com"

const pageSize = 20

type message struct {
	id        int64
	from      string
	subject   string
	body      string
	timestamp int64
	read      bool
}

type mailbox struct {
	user      string
	createdAt int64
	messages  []*message
}

func (m *mailbox) address() string {
	return m.user + "@" + Domain
}

type failure struct {
	status int
	body   string
}

// Server is a fake Guerrilla Mail endpoint. Mailboxes are keyed by the
// session cookie. Integers are sent as JSON strings, as the live service
// does for most fields.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	sessions  map[string]*mailbox
	byAddress map[string]*mailbox
	taken     map[string]string
	failures  map[string][]failure
	calls     []string
	nextID    int64
	nextUser  int
	now       func() time.Time
}

// NewServer starts a fake service. Close it when done.
func NewServer() *Server {
	s := &Server{
		sessions:  make(map[string]*mailbox),
		byAddress: make(map[string]*mailbox),
		taken:     make(map[string]string),
		failures:  make(map[string][]failure),
		nextID:    1000,
		now:       time.Now,
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Endpoint returns the AJAX endpoint URL.
func (s *Server) Endpoint() string {
	return s.URL + "/ajax.php"
}

// Take makes set_email_user answer requests for user with assigned
// instead.
func (s *Server) Take(user, assigned string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taken[strings.ToLower(user)] = assigned
}

// FailNext makes the next call to function answer with status and body.
// Failures queue in order.
func (s *Server) FailNext(function string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[function] = append(s.failures[function], failure{status: status, body: body})
}

// Deliver adds a message to the mailbox with the given address and returns
// its id.
func (s *Server) Deliver(address, from, subject, body string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mb, ok := s.byAddress[strings.ToLower(address)]
	if !ok {
		return 0, fmt.Errorf("no mailbox %s", address)
	}
	s.nextID++
	mb.messages = append(mb.messages, &message{
		id:        s.nextID,
		from:      from,
		subject:   subject,
		body:      body,
		timestamp: s.now().Unix(),
	})
	return s.nextID, nil
}

// Calls returns the function names received, in order.
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	function := q.Get("f")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, function)

	if q.Get("ip") == "" || q.Get("agent") == "" {
		http.Error(w, "ERROR: ip and agent are required", http.StatusBadRequest)
		return
	}

	if queued := s.failures[function]; len(queued) > 0 {
		s.failures[function] = queued[1:]
		w.WriteHeader(queued[0].status)
		w.Write([]byte(queued[0].body))
		return
	}

	mb := s.session(w, r)

	switch function {
	case "get_email_address":
		writeJSON(w, s.addressResponse(mb))
	case "set_email_user":
		user := strings.TrimSpace(q.Get("email_user"))
		if user == "" {
			w.Write([]byte("ERROR: email_user required"))
			return
		}
		if assigned, ok := s.taken[strings.ToLower(user)]; ok {
			user = assigned
		}
		s.rename(mb, user)
		writeJSON(w, s.addressResponse(mb))
	case "check_email":
		seq, _ := strconv.ParseInt(q.Get("seq"), 10, 64)
		writeJSON(w, s.listResponse(mb, 0, seq))
	case "get_email_list":
		offset, _ := strconv.Atoi(q.Get("offset"))
		seq, _ := strconv.ParseInt(q.Get("seq"), 10, 64)
		writeJSON(w, s.listResponse(mb, offset, seq))
	case "fetch_email":
		id, _ := strconv.ParseInt(q.Get("email_id"), 10, 64)
		for _, m := range mb.messages {
			if m.id == id {
				m.read = true
				writeJSON(w, map[string]any{
					"mail_id":        strconv.FormatInt(m.id, 10),
					"mail_from":      m.from,
					"mail_recipient": mb.address(),
					"mail_subject":   m.subject,
					"mail_excerpt":   excerpt(m.body),
					"mail_body":      m.body,
					"mail_timestamp": strconv.FormatInt(m.timestamp, 10),
					"mail_date":      time.Unix(m.timestamp, 0).UTC().Format("15:04:05"),
					"mail_read":      "1",
					"mail_size":      strconv.Itoa(len(m.body)),
					"content_type":   "text/plain",
					"att":            "0",
				})
				return
			}
		}
		w.Write([]byte("false"))
	case "del_email":
		var ids []int64
		for i := 0; ; i++ {
			v := q.Get(fmt.Sprintf("email_ids[%d]", i))
			if v == "" {
				break
			}
			id, _ := strconv.ParseInt(v, 10, 64)
			ids = append(ids, id)
		}
		deleted := make([]string, 0, len(ids))
		kept := mb.messages[:0]
		for _, m := range mb.messages {
			if contains(ids, m.id) {
				deleted = append(deleted, strconv.FormatInt(m.id, 10))
				continue
			}
			kept = append(kept, m)
		}
		mb.messages = kept
		writeJSON(w, map[string]any{"deleted_ids": deleted})
	case "forget_me":
		if strings.EqualFold(q.Get("email_addr"), mb.address()) {
			delete(s.byAddress, strings.ToLower(mb.address()))
			s.rename(mb, s.newUser())
		}
		w.Write([]byte("true"))
	case "extend":
		mb.createdAt = s.now().Unix()
		writeJSON(w, map[string]any{
			"expired":         false,
			"email_timestamp": mb.createdAt,
			"affected":        1,
		})
	default:
		w.Write([]byte("ERROR: unknown function"))
	}
}

// session returns the caller's mailbox, issuing a cookie and a mailbox to
// new sessions.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *mailbox {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if mb, ok := s.sessions[c.Value]; ok {
			return mb
		}
	}

	id := uuid.NewString()
	mb := &mailbox{user: s.newUser(), createdAt: s.now().Unix()}
	s.sessions[id] = mb
	s.byAddress[strings.ToLower(mb.address())] = mb
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: id, Path: "/"})
	return mb
}

func (s *Server) newUser() string {
	s.nextUser++
	return fmt.Sprintf("box%04d", s.nextUser)
}

func (s *Server) rename(mb *mailbox, user string) {
	delete(s.byAddress, strings.ToLower(mb.address()))
	mb.user = user
	mb.createdAt = s.now().Unix()
	s.byAddress[strings.ToLower(mb.address())] = mb
}

func (s *Server) addressResponse(mb *mailbox) map[string]any {
	return map[string]any{
		"email_addr":      mb.address(),
		"email_timestamp": mb.createdAt,
		"alias":           "alias" + mb.user + "@sharklasers.com",
		"sid_token":       "sid-" + mb.user,
		"s_active":        "N",
		"s_date":          "",
		"s_time":          0,
		"s_time_expires":  0,
	}
}

func (s *Server) listResponse(mb *mailbox, offset int, seq int64) map[string]any {
	msgs := make([]*message, 0, len(mb.messages))
	for _, m := range mb.messages {
		if m.id > seq {
			msgs = append(msgs, m)
		}
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].id > msgs[j].id })

	total := len(msgs)
	if offset > len(msgs) {
		offset = len(msgs)
	}
	msgs = msgs[offset:]
	if len(msgs) > pageSize {
		msgs = msgs[:pageSize]
	}

	list := make([]map[string]any, 0, len(msgs))
	for _, m := range msgs {
		read := "0"
		if m.read {
			read = "1"
		}
		list = append(list, map[string]any{
			"mail_id":        strconv.FormatInt(m.id, 10),
			"mail_from":      m.from,
			"mail_subject":   m.subject,
			"mail_excerpt":   excerpt(m.body),
			"mail_timestamp": strconv.FormatInt(m.timestamp, 10),
			"mail_read":      read,
			"mail_date":      time.Unix(m.timestamp, 0).UTC().Format("15:04:05"),
		})
	}
	return map[string]any{
		"list":  list,
		"count": strconv.Itoa(total),
		"email": mb.address(),
		"ts":    s.now().Unix(),
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func excerpt(body string) string {
	if len(body) > 50 {
		return body[:50]
	}
	return body
}

func contains(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
