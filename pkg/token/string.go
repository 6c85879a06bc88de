package token

// stringKind captures any run of characters that does not contain a path
// separator. Matching is non-greedy so adjacent captures split at the
// nearest literal anchor. Padding does not apply to strings.
type stringKind struct{}

func (stringKind) coerce(raw string) (interface{}, error) {
	return raw, nil
}

func (stringKind) pattern() string {
	return `[^/]+?`
}

func (stringKind) render(value interface{}, padding int) (string, error) {
	return value.(string), nil
}

func (stringKind) checkPadding(raw string, padding int) bool {
	return true
}
