package api

import "bytes"

// Classify trims surrounding whitespace from a response body and reports
// whether it is a JSON document, judged by its first byte alone. The
// service answers some error states with HTML or plain text.
func Classify(raw []byte) ([]byte, bool) {
	body := bytes.TrimSpace(raw)
	if len(body) == 0 {
		return body, false
	}
	switch body[0] {
	case '{', '[':
		return body, true
	default:
		return body, false
	}
}
