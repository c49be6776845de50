package api

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Args is the per-call argument map. Keys and values are sent as
// percent-encoded query parameters.
type Args map[string]string

// SetInt stores an integer argument in base 10.
func (a Args) SetInt(key string, v int64) {
	a[key] = strconv.FormatInt(v, 10)
}

// SetIndexed flattens values into name[0], name[1], ... in slice order.
func (a Args) SetIndexed(name string, values []int64) {
	for i, v := range values {
		a[IndexedKey(name, i)] = strconv.FormatInt(v, 10)
	}
}

// IndexedKey returns the bracketed key for element i of an array parameter.
func IndexedKey(name string, i int) string {
	return fmt.Sprintf("%s[%d]", name, i)
}

// AddQueryString appends params to uri. A uri that already carries a '?'
// is extended with '&'. Keys are written in sorted order so the same
// arguments always produce the same URL.
func AddQueryString(uri string, params map[string]string) string {
	if len(params) == 0 {
		return uri
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(uri)
	if strings.Contains(uri, "?") {
		b.WriteByte('&')
	} else {
		b.WriteByte('?')
	}
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params[k]))
	}
	return b.String()
}
