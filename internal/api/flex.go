package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Int64 is an integer field that the service encodes either as a JSON
// number or as a JSON string.
type Int64 int64

// UnmarshalJSON accepts 123, "123", "" and null. Fractions and values
// outside the int64 range are rejected; 1.0 and 1e3 are whole and accepted.
func (n *Int64) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	s := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
	}

	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return fmt.Errorf("cannot decode %s as integer", data)
		}
		v = int64(f)
	}
	*n = Int64(v)
	return nil
}

// MarshalJSON writes the value as a JSON number.
func (n Int64) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(n), 10)), nil
}

// Bool is a flag that the service encodes as true/false, 0/1 or their
// string forms.
type Bool bool

// UnmarshalJSON accepts true, false, 0, 1, "true", "false", "0", "1", "" and null.
func (b *Bool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	s := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	}

	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		*b = true
	case "false", "0", "", "null":
		*b = false
	default:
		return fmt.Errorf("cannot decode %s as boolean", data)
	}
	return nil
}

// MarshalJSON writes the value as a JSON boolean.
func (b Bool) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatBool(bool(b))), nil
}
