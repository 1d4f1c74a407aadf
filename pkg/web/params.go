package web

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
)

// ParseIntID reads the named path parameter the way a lenient integer parser does:
// leading whitespace and an optional sign are skipped, then the longest run of
// decimal digits (or hex digits after a 0x prefix) is used. Trailing garbage is ignored.
// Returns false when no digits can be read.
func ParseIntID(r *http.Request, key string) (int, bool) {
	return leadingInt(r.PathValue(key))
}

// QueryLimit coerces the named query parameter to an integer cutoff.
// It returns false when the parameter is absent or empty. Non-numeric values
// coerce to 0, fractions are truncated toward zero and infinities saturate.
// Repeated parameters are joined with commas before coercion.
func QueryLimit(r *http.Request, key string) (int, bool) {
	values, ok := r.URL.Query()[key]
	if !ok {
		return 0, false
	}
	raw := strings.Join(values, ",")
	if raw == "" {
		return 0, false
	}
	return toInteger(toNumber(raw)), true
}

func leadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	base := 10
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	}
	end := 0
	for end < len(s) && isDigit(s[end], base) {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], base, 64)
	if err != nil || n > math.MaxInt || n < math.MinInt {
		return 0, false
	}
	if neg {
		n = -n
	}
	return int(n), true
}

func isDigit(c byte, base int) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case base == 16 && ((c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')):
		return true
	}
	return false
}

// toNumber converts a string to a float64 following numeric-literal coercion rules:
// blank is 0, anything unparsable is NaN.
func toNumber(s string) float64 {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9') && c != '.' && c != 'e' && c != 'E' && c != '+' && c != '-' {
			return math.NaN()
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return f
}

// toInteger truncates f toward zero, mapping NaN to 0 and saturating at the int range.
func toInteger(f float64) int {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt:
		return math.MaxInt
	case f <= math.MinInt:
		return math.MinInt
	}
	return int(math.Trunc(f))
}
