package template

import (
	"github.com/arthur-debert/pathform/pkg/token"
)

// SegmentKind discriminates the segment variants
type SegmentKind int

const (
	// KindLiteral is verbatim path text
	KindLiteral SegmentKind = iota
	// KindToken is a reference to a named token
	KindToken
	// KindTemplate is a reference to another template
	KindTemplate
)

// RefMode distinguishes how a template reference composes
type RefMode int

const (
	// ModeRelative splices the referenced template in place
	ModeRelative RefMode = iota
	// ModeRoot prefixes the referenced template to the whole pattern
	ModeRoot
)

// Segment is one element of a template's ordered sequence. Sequence order
// is significant and matches path component order left to right.
type Segment struct {
	Kind SegmentKind

	// Text is the literal text, for KindLiteral
	Text string

	// Name is the token or template name, for KindToken and KindTemplate
	Name string

	// Mode applies to KindTemplate only
	Mode RefMode

	// Overrides binds fixed values for the referenced template's tokens,
	// for KindTemplate only. Values are in their string form.
	Overrides map[string]string
}

// Literal creates a literal segment
func Literal(text string) Segment {
	return Segment{Kind: KindLiteral, Text: text}
}

// TokenRef creates a token reference segment
func TokenRef(name string) Segment {
	return Segment{Kind: KindToken, Name: name}
}

// TemplateRef creates a template reference segment
func TemplateRef(name string, mode RefMode, overrides map[string]string) Segment {
	return Segment{Kind: KindTemplate, Name: name, Mode: mode, Overrides: overrides}
}

// Expanded is a template with every template reference resolved, produced
// by the registry and consumed by Compile. Root holds the expansion of the
// template's root reference; it is empty when the template has no root
// reference, or when the root reference is dynamic (satisfied at call time
// by an explicit override or the process default root).
type Expanded struct {
	Name string

	// HasRoot reports whether the pattern carries a root reference
	HasRoot bool

	// RootName is the name of the root reference, when HasRoot
	RootName string

	// Root is the static expansion of the root reference, empty when the
	// root is dynamic
	Root []Segment

	// Body is the expanded non-root segment sequence
	Body []Segment

	// Tokens is the effective token namespace of the expanded sequence
	Tokens map[string]*token.Spec

	// Fixed holds typed values bound by template reference overrides;
	// they appear in parse results but are not caller-suppliable
	Fixed Fields
}
