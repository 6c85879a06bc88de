package token

import (
	"strconv"
	"strings"
)

// floatKind captures a decimal run with a mandatory fractional part.
// Padding is a minimum fractional digit count, zero-filled on the right
// when formatting.
type floatKind struct{}

func (floatKind) coerce(raw string) (interface{}, error) {
	return strconv.ParseFloat(raw, 64)
}

func (floatKind) pattern() string {
	return `-?\d+\.\d+`
}

func (floatKind) render(value interface{}, padding int) (string, error) {
	s := strconv.FormatFloat(value.(float64), 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	if padding > 0 {
		dot := strings.Index(s, ".")
		for len(s)-dot-1 < padding {
			s += "0"
		}
	}
	return s, nil
}

func (floatKind) checkPadding(raw string, padding int) bool {
	dot := strings.Index(raw, ".")
	if dot < 0 {
		return false
	}
	return len(raw)-dot-1 >= padding
}
