package template

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/arthur-debert/pathform/pkg/errors"
	"github.com/arthur-debert/pathform/pkg/logging"
	"github.com/arthur-debert/pathform/pkg/rootstate"
	"github.com/rs/zerolog"
)

// RootKind is the tri-state root override. Unspecified, an explicit path
// and an explicit "no root" are three distinct states and never collapse
// to two: only the unspecified state consults the template's static root
// or the process default.
type RootKind int

const (
	// RootUnspecified defers to the template's static root, then the
	// process default root
	RootUnspecified RootKind = iota
	// RootExplicit uses the given path as the root
	RootExplicit
	// RootNone suppresses the root entirely, even the process default
	RootNone
)

// RootBinding is a resolved root override choice
type RootBinding struct {
	Kind RootKind
	Path string
}

// RootOption overrides root handling for a single parse or format call
type RootOption func(*RootBinding)

// WithRoot uses the given path as the root for this call. Templates
// without a root reference ignore root options entirely.
func WithRoot(path string) RootOption {
	return func(b *RootBinding) {
		b.Kind = RootExplicit
		b.Path = path
	}
}

// WithNoRoot suppresses any root prefix for this call, including the
// process default
func WithNoRoot() RootOption {
	return func(b *RootBinding) {
		b.Kind = RootNone
		b.Path = ""
	}
}

// ApplyRootOptions folds root options into a binding. The zero binding is
// the unspecified state.
func ApplyRootOptions(opts []RootOption) RootBinding {
	var b RootBinding
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// Compiled is a dual-purpose matcher/formatter produced from an expanded
// segment sequence. It holds no mutable state; calls are independent
// beyond reads of the root binding state.
type Compiled struct {
	expanded *Expanded
	roots    *rootstate.State

	bodyExpr   string
	bodyFields []string
	rootExpr   string
	rootFields []string

	logger zerolog.Logger
}

// Compile builds the matcher/formatter for an expanded template. The
// rootstate argument is consulted on calls that leave the root
// unspecified; nil uses the process-wide default state.
func Compile(expanded *Expanded, roots *rootstate.State) (*Compiled, error) {
	if roots == nil {
		roots = rootstate.Default()
	}

	c := &Compiled{
		expanded: expanded,
		roots:    roots,
		logger:   logging.GetLogger("template.compile"),
	}

	var err error
	c.rootExpr, c.rootFields, err = c.buildExpr(expanded.Root)
	if err != nil {
		return nil, err
	}
	c.bodyExpr, c.bodyFields, err = c.buildExpr(expanded.Body)
	if err != nil {
		return nil, err
	}

	// Surface invalid patterns at compile time rather than first use
	if _, err := regexp.Compile("^" + c.rootExpr + c.bodyExpr + "$"); err != nil {
		return nil, errors.Wrapf(err, errors.ErrInternal,
			"template %q produced an invalid match pattern", expanded.Name)
	}

	c.logger.Debug().
		Str("template", expanded.Name).
		Int("tokens", len(expanded.Tokens)).
		Bool("hasRoot", expanded.HasRoot).
		Msg("compiled template")

	return c, nil
}

// Expanded returns the segment sequence this template was compiled from
func (c *Compiled) Expanded() *Expanded {
	return c.expanded
}

// Roots returns the root binding state consulted by this template
func (c *Compiled) Roots() *rootstate.State {
	return c.roots
}

// Name returns the template's name
func (c *Compiled) Name() string {
	return c.expanded.Name
}

// ParsePath matches a concrete path against the template, extracting the
// complete field mapping, including values fixed by reference overrides.
// Paths with components beyond what the pattern anchors do not match.
func (c *Compiled) ParsePath(path string, opts ...RootOption) (Fields, error) {
	fields, _, err := c.parse(path, opts, true)
	return fields, err
}

// ParsePrefix matches the template against a leading, directory-aligned
// portion of the path. It returns the matched prefix, its fields, and the
// remainder with the joining separator stripped.
func (c *Compiled) ParsePrefix(path string, opts ...RootOption) (string, Fields, string, error) {
	fields, end, err := c.parse(path, opts, false)
	if err != nil {
		return "", nil, "", err
	}
	slashed := filepath.ToSlash(path)
	matched := strings.TrimSuffix(slashed[:end], "/")
	return matched, fields, slashed[end:], nil
}

func (c *Compiled) parse(path string, opts []RootOption, exact bool) (Fields, int, error) {
	binding := ApplyRootOptions(opts)
	slashed := filepath.ToSlash(path)

	prefix, order, err := c.rootExprFor(binding)
	if err != nil {
		return nil, 0, err
	}

	expr := "^" + prefix + c.bodyExpr
	if exact {
		expr += "$"
	} else {
		expr += `(?:/|$)`
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, 0, errors.Wrapf(err, errors.ErrInternal,
			"template %q produced an invalid match pattern", c.expanded.Name)
	}

	m := re.FindStringSubmatchIndex(slashed)
	if m == nil {
		return nil, 0, errors.Newf(errors.ErrPathNoMatch,
			"path %q does not match template %q", path, c.expanded.Name).
			WithDetail("template", c.expanded.Name).
			WithDetail("path", path)
	}

	order = append(append([]string{}, order...), c.bodyFields...)
	fields := make(Fields, len(order)+len(c.expanded.Fixed))
	for i, name := range order {
		raw := slashed[m[2*(i+1)]:m[2*(i+1)+1]]
		value, err := c.expanded.Tokens[name].Parse(raw)
		if err != nil {
			return nil, 0, err
		}
		if existing, ok := fields[name]; ok && existing != value {
			return nil, 0, errors.Newf(errors.ErrPathNoMatch,
				"conflicting values for token %q in path %q: %v, %v",
				name, path, existing, value).
				WithDetail("template", c.expanded.Name).
				WithDetail("token", name)
		}
		fields[name] = value
	}
	// Fixed values obey the same agreement rule as repeated captures: a
	// capture that contradicts an override-bound value is a non-match,
	// never silently replaced
	for name, value := range c.expanded.Fixed {
		if existing, ok := fields[name]; ok && existing != value {
			return nil, 0, errors.Newf(errors.ErrPathNoMatch,
				"conflicting values for token %q in path %q: %v, %v",
				name, path, existing, value).
				WithDetail("template", c.expanded.Name).
				WithDetail("token", name)
		}
		fields[name] = value
	}

	c.logger.Trace().
		Str("template", c.expanded.Name).
		Str("path", path).
		Msg("path matched")

	return fields, m[1], nil
}

// FormatPath renders the template into a concrete path. Missing fields
// fall back to their token's default; tokens with neither are reported
// together as a missing-field error.
func (c *Compiled) FormatPath(fields Fields, opts ...RootOption) (string, error) {
	binding := ApplyRootOptions(opts)

	body, err := c.render(c.expanded.Body, fields)
	if err != nil {
		return "", err
	}

	root, err := c.rootPathFor(binding, fields)
	if err != nil {
		return "", err
	}
	if root == "" {
		return body, nil
	}
	return strings.TrimSuffix(root, "/") + "/" + body, nil
}

// rootExprFor resolves the root override tri-state into a match-pattern
// prefix. Only templates that declare a root reference consult the
// binding at all; resolution order for the unspecified state: the
// template's static root, then the process default root, then nothing.
func (c *Compiled) rootExprFor(binding RootBinding) (string, []string, error) {
	if !c.expanded.HasRoot {
		return "", nil, nil
	}
	switch binding.Kind {
	case RootExplicit:
		return quotedPrefix(binding.Path), nil, nil
	case RootNone:
		return "", nil, nil
	}
	if len(c.expanded.Root) > 0 {
		return c.rootExpr + "/", c.rootFields, nil
	}
	if def, ok := c.roots.Get(); ok {
		return quotedPrefix(def), nil, nil
	}
	return "", nil, nil
}

// rootPathFor resolves the root override tri-state into a formatted root
// path, mirroring rootExprFor
func (c *Compiled) rootPathFor(binding RootBinding, fields Fields) (string, error) {
	if !c.expanded.HasRoot {
		return "", nil
	}
	switch binding.Kind {
	case RootExplicit:
		return strings.TrimSuffix(filepath.ToSlash(binding.Path), "/"), nil
	case RootNone:
		return "", nil
	}
	if len(c.expanded.Root) > 0 {
		return c.render(c.expanded.Root, fields)
	}
	if def, ok := c.roots.Get(); ok {
		return strings.TrimSuffix(filepath.ToSlash(def), "/"), nil
	}
	return "", nil
}

// render formats a segment sequence with the given fields
func (c *Compiled) render(segments []Segment, fields Fields) (string, error) {
	var sb strings.Builder
	var missing []string
	for _, seg := range segments {
		switch seg.Kind {
		case KindLiteral:
			sb.WriteString(seg.Text)
		case KindToken:
			spec := c.expanded.Tokens[seg.Name]
			value, ok := fields[seg.Name]
			if !ok {
				value, ok = spec.Default()
			}
			if !ok {
				missing = append(missing, seg.Name)
				continue
			}
			formatted, err := spec.Format(value)
			if err != nil {
				return "", err
			}
			sb.WriteString(formatted)
		}
	}
	if len(missing) > 0 {
		return "", errors.Newf(errors.ErrMissingField,
			"missing required fields for template %q: %s",
			c.expanded.Name, strings.Join(missing, ", ")).
			WithDetail("template", c.expanded.Name).
			WithDetail("fields", missing)
	}
	return sb.String(), nil
}

// buildExpr converts a segment sequence into a regex source and the names
// of its captures in order
func (c *Compiled) buildExpr(segments []Segment) (string, []string, error) {
	var sb strings.Builder
	var order []string
	for _, seg := range segments {
		switch seg.Kind {
		case KindLiteral:
			sb.WriteString(regexp.QuoteMeta(seg.Text))
		case KindToken:
			spec, ok := c.expanded.Tokens[seg.Name]
			if !ok {
				return "", nil, errors.Newf(errors.ErrUnknownReference,
					"template %q references undeclared token %q",
					c.expanded.Name, seg.Name).
					WithDetail("template", c.expanded.Name).
					WithDetail("token", seg.Name)
			}
			sb.WriteString("(" + spec.Pattern() + ")")
			order = append(order, seg.Name)
		case KindTemplate:
			return "", nil, errors.Newf(errors.ErrInternal,
				"template %q was not fully expanded before compiling",
				c.expanded.Name)
		}
	}
	return sb.String(), order, nil
}

func quotedPrefix(path string) string {
	trimmed := strings.TrimSuffix(filepath.ToSlash(path), "/")
	if trimmed == "" {
		return ""
	}
	return regexp.QuoteMeta(trimmed) + "/"
}
