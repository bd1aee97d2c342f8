// Package normalize turns raw scraped cell text into typed values. None of its functions
// fail: anything that does not look like the requested type becomes the caller's default.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	intShape   = regexp.MustCompile(`^-?\d+$`)
	floatShape = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)$`)
)

// Clean trims whitespace and drops every '%' and '/' from raw. Nil becomes "".
func Clean(raw any) string {
	var s string
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		s = v
	case *string:
		if v == nil {
			return ""
		}
		s = *v
	case []byte:
		s = string(v)
	case fmt.Stringer:
		s = v.String()
	default:
		s = fmt.Sprint(v)
	}

	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "%", "")
	s = strings.ReplaceAll(s, "/", "")
	return strings.TrimSpace(s)
}

func numeric(raw any) string {
	s := Clean(raw)
	return strings.TrimPrefix(s, "+")
}

// Int returns the integer in raw, or def when raw is empty or not an optionally negative run
// of digits.
func Int(raw any, def *int) *int {
	switch v := raw.(type) {
	case int:
		return &v
	case int64:
		n := int(v)
		return &n
	case *int:
		if v == nil {
			return def
		}
		n := *v
		return &n
	}

	s := numeric(raw)
	if s == "" || !intShape.MatchString(s) {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return &n
}

// Float returns the decimal number in raw, or def. A bare leading '.' is read as "0.".
func Float(raw any, def *float64) *float64 {
	switch v := raw.(type) {
	case float64:
		return &v
	case float32:
		f := float64(v)
		return &f
	case int:
		f := float64(v)
		return &f
	case *float64:
		if v == nil {
			return def
		}
		f := *v
		return &f
	}

	s := numeric(raw)
	if s == "" || !floatShape.MatchString(s) {
		return def
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	} else if strings.HasPrefix(s, "-.") {
		s = "-0" + s[1:]
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return &f
}

// String returns the cleaned text, or def when nothing is left.
func String(raw any, def *string) *string {
	s := Clean(raw)
	if s == "" {
		return def
	}
	return &s
}

// Ptr is a convenience for building defaults and expectations.
func Ptr[T any](v T) *T {
	return &v
}
