package template

import (
	"regexp"
	"strings"

	"github.com/arthur-debert/pathform/pkg/errors"
)

// refPattern matches token references `{name}` and template references
// `@{name}` / `@{name:field=value,...}`
var refPattern = regexp.MustCompile(`(@?)\{([^{}]*)\}`)

var namePattern = regexp.MustCompile(`^\w+$`)

// Parse tokenizes a raw pattern string into its ordered segment sequence.
// It performs syntax validation only; whether referenced templates and
// tokens exist is the registry's concern.
func Parse(pattern string) ([]Segment, error) {
	if pattern == "" {
		return nil, errors.New(errors.ErrTemplateMalformed, "pattern cannot be empty")
	}

	var segments []Segment
	seen := make(map[string]bool)

	last := 0
	for _, loc := range refPattern.FindAllStringSubmatchIndex(pattern, -1) {
		start, end := loc[0], loc[1]
		isTemplate := loc[2] != loc[3]
		body := pattern[loc[4]:loc[5]]

		if start > last {
			lit := pattern[last:start]
			if err := checkLiteral(pattern, lit); err != nil {
				return nil, err
			}
			segments = append(segments, Literal(lit))
		}
		last = end

		if isTemplate {
			seg, err := parseTemplateRef(pattern, body, start == 0)
			if err != nil {
				return nil, err
			}
			segments = append(segments, seg)
			continue
		}

		if !namePattern.MatchString(body) {
			return nil, errors.Newf(errors.ErrTemplateMalformed,
				"invalid token name %q in pattern %q", body, pattern)
		}
		if seen[body] {
			return nil, errors.Newf(errors.ErrTemplateMalformed,
				"duplicate token %q in pattern %q", body, pattern)
		}
		seen[body] = true
		segments = append(segments, TokenRef(body))
	}

	if last < len(pattern) {
		lit := pattern[last:]
		if err := checkLiteral(pattern, lit); err != nil {
			return nil, err
		}
		segments = append(segments, Literal(lit))
	}

	return segments, nil
}

// parseTemplateRef parses the inside of a `@{...}` reference. A reference
// in the pattern's leading position is the root reference.
func parseTemplateRef(pattern, body string, leading bool) (Segment, error) {
	name := body
	var overrides map[string]string

	if idx := strings.IndexByte(body, ':'); idx >= 0 {
		name = body[:idx]
		overrides = make(map[string]string)
		for _, pair := range strings.Split(body[idx+1:], ",") {
			k, v, ok := strings.Cut(pair, "=")
			if !ok || !namePattern.MatchString(k) || v == "" {
				return Segment{}, errors.Newf(errors.ErrTemplateMalformed,
					"invalid override %q in pattern %q", pair, pattern)
			}
			overrides[k] = v
		}
	}

	if !namePattern.MatchString(name) {
		return Segment{}, errors.Newf(errors.ErrTemplateMalformed,
			"invalid template reference %q in pattern %q", body, pattern)
	}

	mode := ModeRelative
	if leading {
		mode = ModeRoot
	}
	return TemplateRef(name, mode, overrides), nil
}

// checkLiteral rejects literal runs containing stray braces, which only
// occur when a reference is unbalanced or malformed
func checkLiteral(pattern, lit string) error {
	if strings.ContainsAny(lit, "{}") {
		return errors.Newf(errors.ErrTemplateMalformed,
			"unbalanced braces in pattern %q", pattern)
	}
	return nil
}
