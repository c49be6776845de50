// Package session holds the cookie state that binds a sequence of calls to
// one mailbox on the remote service.
package session

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"

	"golang.org/x/net/publicsuffix"
)

// Store is a cookie store scoped to one client instance. It satisfies
// http.CookieJar so it can also be handed to an http.Client, but the
// transport applies cookies explicitly so that a response is merged only
// once it has been read in full.
//
// Store is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	jar     *cookiejar.Jar
	version uint64
}

// NewStore creates an empty store using the public suffix list for domain
// scoping.
func NewStore() (*Store, error) {
	jar, err := newJar()
	if err != nil {
		return nil, err
	}
	return &Store{jar: jar}, nil
}

func newJar() (*cookiejar.Jar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return jar, nil
}

// Cookies returns the cookies to send in a request for u.
func (s *Store) Cookies(u *url.URL) []*http.Cookie {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jar.Cookies(u)
}

// SetCookies merges cookies received in a response from u.
func (s *Store) SetCookies(u *url.URL, cookies []*http.Cookie) {
	if len(cookies) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jar.SetCookies(u, cookies)
	s.version++
}

// Apply adds the stored cookies for the request URL to req.
func (s *Store) Apply(req *http.Request) {
	for _, c := range s.Cookies(req.URL) {
		req.AddCookie(c)
	}
}

// Merge stores the Set-Cookie headers of resp, keyed by the URL of the
// request that produced it.
func (s *Store) Merge(resp *http.Response) {
	if resp == nil || resp.Request == nil {
		return
	}
	s.SetCookies(resp.Request.URL, resp.Cookies())
}

// Version counts merges that changed the store. Callers can compare values
// to detect whether a call rotated the session.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Snapshot returns name/value pairs visible to u.
func (s *Store) Snapshot(u *url.URL) map[string]string {
	cookies := s.Cookies(u)
	out := make(map[string]string, len(cookies))
	for _, c := range cookies {
		out[c.Name] = c.Value
	}
	return out
}

// Restore replaces the store contents with the given name/value pairs,
// scoped to u.
func (s *Store) Restore(u *url.URL, values map[string]string) error {
	jar, err := newJar()
	if err != nil {
		return err
	}
	cookies := make([]*http.Cookie, 0, len(values))
	for name, value := range values {
		cookies = append(cookies, &http.Cookie{Name: name, Value: value, Path: "/"})
	}
	jar.SetCookies(u, cookies)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.jar = jar
	s.version++
	return nil
}

var _ http.CookieJar = (*Store)(nil)
