// Package wildcard converts a partially-bound template into a filesystem
// glob and a validating post-filter. The engine never touches the
// filesystem itself: a Plan's glob goes to the walker collaborator, and
// every candidate path the walker returns is re-validated against the
// constraints a glob cannot express (types, choices, padding).
package wildcard

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/pathform/pkg/errors"
	"github.com/arthur-debert/pathform/pkg/logging"
	"github.com/arthur-debert/pathform/pkg/template"
)

// Plan is a glob pattern for the unbound portions of a template plus the
// validator for candidate results
type Plan struct {
	// Glob is a single-level wildcard pattern. Unbound tokens never
	// expand to a recursive wildcard, and their glob unit excludes
	// hidden entries by construction.
	Glob string

	compiled *template.Compiled
	opts     []template.RootOption
}

// New plans a wildcard discovery for the template with the given known
// fields. Known fields are validated and rendered exactly as formatting
// would; unbound tokens become single-level wildcard units.
func New(compiled *template.Compiled, known template.Fields, opts ...template.RootOption) (*Plan, error) {
	expanded := compiled.Expanded()
	binding := template.ApplyRootOptions(opts)

	root, err := globRoot(compiled, binding, known)
	if err != nil {
		return nil, err
	}
	body, err := globSegments(expanded, expanded.Body, known)
	if err != nil {
		return nil, err
	}

	glob := body
	if root != "" {
		glob = strings.TrimSuffix(root, "/") + "/" + body
	}

	logger := logging.GetLogger("wildcard")
	logger.Debug().
		Str("template", expanded.Name).
		Str("glob", glob).
		Msg("planned wildcard discovery")

	return &Plan{
		Glob:     glob,
		compiled: compiled,
		opts:     opts,
	}, nil
}

// Validate checks one candidate path the walker returned, extracting its
// fields if every token constraint holds. Hidden components are rejected
// here as well, in case the walker expanded the glob more loosely than
// the pattern asked for.
func (p *Plan) Validate(candidate string) (template.Fields, error) {
	for _, part := range strings.Split(filepath.ToSlash(candidate), "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return nil, errors.Newf(errors.ErrPathNoMatch,
				"candidate %q contains a hidden component", candidate).
				WithDetail("path", candidate)
		}
	}
	return p.compiled.ParsePath(candidate, p.opts...)
}

// globRoot resolves the root tri-state into glob text, mirroring the
// formatter's resolution order
func globRoot(compiled *template.Compiled, binding template.RootBinding, known template.Fields) (string, error) {
	expanded := compiled.Expanded()
	if !expanded.HasRoot {
		return "", nil
	}
	switch binding.Kind {
	case template.RootExplicit:
		return filepath.ToSlash(binding.Path), nil
	case template.RootNone:
		return "", nil
	}
	if len(expanded.Root) > 0 {
		return globSegments(expanded, expanded.Root, known)
	}
	if def, ok := compiled.Roots().Get(); ok {
		return filepath.ToSlash(def), nil
	}
	return "", nil
}

// globSegments renders a segment sequence into glob text: literals and
// known token values verbatim, unbound tokens as their wildcard unit.
// Whether a token begins a path component decides its unit: only
// component-leading units exclude hidden entries.
func globSegments(expanded *template.Expanded, segments []template.Segment, known template.Fields) (string, error) {
	var sb strings.Builder
	componentStart := true
	for _, seg := range segments {
		switch seg.Kind {
		case template.KindLiteral:
			sb.WriteString(seg.Text)
			componentStart = strings.HasSuffix(seg.Text, "/")
		case template.KindToken:
			spec := expanded.Tokens[seg.Name]
			value, ok := known[seg.Name]
			if !ok {
				sb.WriteString(spec.GlobUnit(componentStart))
				componentStart = false
				continue
			}
			formatted, err := spec.Format(value)
			if err != nil {
				return "", err
			}
			sb.WriteString(formatted)
			componentStart = false
		}
	}
	return sb.String(), nil
}
