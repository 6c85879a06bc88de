package token

import (
	"fmt"

	"github.com/arthur-debert/pathform/pkg/errors"
)

// Type identifies the value type of a token. The set is closed: exactly
// string, integer and float, each with its own coercion, matching and
// padding behavior.
type Type int

const (
	TypeString Type = iota
	TypeInt
	TypeFloat
)

// String returns the configuration name of the type
func (t Type) String() string {
	switch t {
	case TypeString:
		return "str"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType converts a configuration string to a Type
func ParseType(s string) (Type, error) {
	switch s {
	case "str", "string", "":
		return TypeString, nil
	case "int", "integer":
		return TypeInt, nil
	case "float":
		return TypeFloat, nil
	}
	return TypeString, errors.Newf(errors.ErrTokenConfig, "unknown token type %q", s)
}

// kind carries the per-type behavior. One implementation per Type, nothing
// else may implement it.
type kind interface {
	// coerce converts a raw string to the type's value
	coerce(raw string) (interface{}, error)

	// pattern returns the regex fragment used to capture this type
	pattern() string

	// render stringifies an already-coerced value, applying padding
	render(value interface{}, padding int) (string, error)

	// checkPadding validates a captured raw string against the padding width
	checkPadding(raw string, padding int) bool
}

func kindOf(t Type) kind {
	switch t {
	case TypeInt:
		return intKind{}
	case TypeFloat:
		return floatKind{}
	default:
		return stringKind{}
	}
}

// Spec describes one placeholder's constraints. Immutable once created.
type Spec struct {
	name    string
	typ     Type
	kind    kind
	def     interface{}
	hasDef  bool
	choices []interface{}
	padding int
}

// Option configures optional Spec attributes
type Option func(*specConfig)

type specConfig struct {
	def     string
	hasDef  bool
	choices []string
	padding int
}

// WithDefault sets the token's default value, given in its string form
func WithDefault(raw string) Option {
	return func(c *specConfig) {
		c.def = raw
		c.hasDef = true
	}
}

// WithChoices restricts the token to an ordered set of valid values,
// given in their string form
func WithChoices(raw ...string) Option {
	return func(c *specConfig) {
		c.choices = raw
	}
}

// WithPadding sets the minimum numeric width. Integers are zero-padded on
// the left, floats extend their fractional digits on the right. Padding
// has no effect on string tokens.
func WithPadding(n int) Option {
	return func(c *specConfig) {
		c.padding = n
	}
}

// New creates a Spec for the named token
func New(name string, typ Type, opts ...Option) (*Spec, error) {
	if name == "" {
		return nil, errors.New(errors.ErrTokenConfig, "token name cannot be empty")
	}

	var cfg specConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.padding < 0 {
		return nil, errors.Newf(errors.ErrTokenConfig, "token %q: padding cannot be negative: %d", name, cfg.padding)
	}

	s := &Spec{
		name:    name,
		typ:     typ,
		kind:    kindOf(typ),
		padding: cfg.padding,
	}

	for _, raw := range cfg.choices {
		value, err := s.kind.coerce(raw)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrTokenConfig,
				"token %q: invalid choice %q for type %s", name, raw, typ)
		}
		s.choices = append(s.choices, value)
	}

	// The default is an author-written constant: coerced and checked
	// against choices, but not against padding since formatting pads it
	if cfg.hasDef {
		value, err := s.kind.coerce(cfg.def)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrTokenConfig,
				"token %q: invalid default %q for type %s", name, cfg.def, typ)
		}
		if len(s.choices) > 0 && !s.inChoices(value) {
			return nil, errors.Newf(errors.ErrTokenConfig,
				"token %q: default %v is not one of the valid choices", name, value)
		}
		s.def = value
		s.hasDef = true
	}

	return s, nil
}

// MustNew creates a Spec and panics on configuration errors. Useful for
// statically-known token tables.
func MustNew(name string, typ Type, opts ...Option) *Spec {
	s, err := New(name, typ, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create token %s: %v", name, err))
	}
	return s
}

// Name returns the token's name
func (s *Spec) Name() string {
	return s.name
}

// Type returns the token's value type
func (s *Spec) Type() Type {
	return s.typ
}

// Default returns the token's default value, if one is set
func (s *Spec) Default() (interface{}, bool) {
	return s.def, s.hasDef
}

// Choices returns a copy of the token's valid values, or nil
func (s *Spec) Choices() []interface{} {
	if s.choices == nil {
		return nil
	}
	out := make([]interface{}, len(s.choices))
	copy(out, s.choices)
	return out
}

// Padding returns the token's minimum numeric width
func (s *Spec) Padding() int {
	return s.padding
}

// Pattern returns the regex fragment used to capture this token's value.
// Padding is deliberately not encoded here: a too-short capture must be
// reported as a padding violation, not as a non-match.
func (s *Spec) Pattern() string {
	return s.kind.pattern()
}

// GlobUnit returns the single-level glob used when this token is unbound
// in a wildcard plan. When the token begins a path component the leading
// character class excludes hidden entries; mid-component the value may
// legitimately start with a dot, so the unit stays a plain wildcard.
func (s *Spec) GlobUnit(componentStart bool) string {
	if componentStart {
		return "[^.]*"
	}
	return "*"
}

// Format renders a value into the token's on-disk string form. The value
// may be the typed value or its string form; it is coerced, validated
// against choices, and padded.
func (s *Spec) Format(value interface{}) (string, error) {
	coerced, err := s.coerceValue(value)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrTypeMismatch,
			"invalid value for token %q", s.name).WithDetail("token", s.name)
	}
	if len(s.choices) > 0 && !s.inChoices(coerced) {
		return "", errors.Newf(errors.ErrNotInChoices,
			"invalid value for token %q: %v (valid: %v)", s.name, coerced, s.choices).
			WithDetail("token", s.name)
	}
	return s.kind.render(coerced, s.padding)
}

// Parse converts a captured string into the token's typed value, checking
// padding, type and choices in that order.
func (s *Spec) Parse(raw string) (interface{}, error) {
	if s.padding > 0 && !s.kind.checkPadding(raw, s.padding) {
		return nil, errors.Newf(errors.ErrPaddingViolation,
			"value %q for token %q does not meet padding %d", raw, s.name, s.padding).
			WithDetail("token", s.name)
	}
	value, err := s.kind.coerce(raw)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrTypeMismatch,
			"value %q is not a valid %s for token %q", raw, s.typ, s.name).
			WithDetail("token", s.name)
	}
	if len(s.choices) > 0 && !s.inChoices(value) {
		return nil, errors.Newf(errors.ErrNotInChoices,
			"value %v for token %q is not one of the valid choices %v", value, s.name, s.choices).
			WithDetail("token", s.name)
	}
	return value, nil
}

// Compatible reports whether another Spec can share this token's name in a
// merged namespace. Only the value type has to agree; the stricter of the
// two constraint sets wins at the call site that declared it.
func (s *Spec) Compatible(other *Spec) bool {
	return s.typ == other.typ
}

func (s *Spec) coerceValue(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case string:
		return s.kind.coerce(v)
	default:
		return s.kind.coerce(fmt.Sprintf("%v", v))
	}
}

func (s *Spec) inChoices(value interface{}) bool {
	for _, c := range s.choices {
		if c == value {
			return true
		}
	}
	return false
}
