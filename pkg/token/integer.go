package token

import (
	"strconv"
	"strings"
)

// intKind captures an optionally signed digit run. Padding is a minimum
// digit count, zero-filled on the left when formatting.
type intKind struct{}

func (intKind) coerce(raw string) (interface{}, error) {
	return strconv.Atoi(raw)
}

func (intKind) pattern() string {
	return `-?\d+`
}

func (intKind) render(value interface{}, padding int) (string, error) {
	s := strconv.Itoa(value.(int))
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	for len(s) < padding {
		s = "0" + s
	}
	if neg {
		s = "-" + s
	}
	return s, nil
}

func (intKind) checkPadding(raw string, padding int) bool {
	return len(strings.TrimPrefix(raw, "-")) >= padding
}
