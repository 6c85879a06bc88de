// Package resolver ties the registry, compiler and walker together behind
// the engine's main entry point: register templates, then parse, format
// and discover paths against any of them.
package resolver

import (
	"strings"

	"github.com/arthur-debert/pathform/pkg/errors"
	"github.com/arthur-debert/pathform/pkg/logging"
	"github.com/arthur-debert/pathform/pkg/registry"
	"github.com/arthur-debert/pathform/pkg/rootstate"
	"github.com/arthur-debert/pathform/pkg/template"
	"github.com/arthur-debert/pathform/pkg/token"
	"github.com/arthur-debert/pathform/pkg/walker"
	"github.com/arthur-debert/pathform/pkg/wildcard"
	"github.com/rs/zerolog"
)

// Match is one discovered path with its extracted fields
type Match struct {
	Path   string
	Fields template.Fields
}

// Resolver is the engine facade
type Resolver struct {
	store  *registry.Store
	walker walker.Walker
	roots  *rootstate.State
	logger zerolog.Logger
}

// Option configures a Resolver
type Option func(*Resolver)

// WithWalker sets the filesystem collaborator used for path discovery
func WithWalker(w walker.Walker) Option {
	return func(r *Resolver) {
		r.walker = w
	}
}

// WithRootState sets the root binding state consulted when formatting
// calls leave the root unspecified
func WithRootState(s *rootstate.State) Option {
	return func(r *Resolver) {
		r.roots = s
	}
}

// New creates a Resolver. By default it walks the real filesystem and
// consults the process-wide root binding state.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		store:  registry.NewStore(),
		walker: walker.NewOS(),
		roots:  rootstate.Default(),
		logger: logging.GetLogger("resolver"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Store returns the underlying template registry
func (r *Resolver) Store() *registry.Store {
	return r.store
}

// AddTemplate registers a template pattern with the token specs it
// directly declares
func (r *Resolver) AddTemplate(name, pattern string, specs ...*token.Spec) error {
	return r.store.Add(name, pattern, specs...)
}

// Template resolves and compiles the named template
func (r *Resolver) Template(name string) (*template.Compiled, error) {
	expanded, err := r.store.Resolve(name)
	if err != nil {
		return nil, err
	}
	return template.Compile(expanded, r.roots)
}

// FormatPath renders the named template with the given fields
func (r *Resolver) FormatPath(name string, fields template.Fields, opts ...template.RootOption) (string, error) {
	compiled, err := r.Template(name)
	if err != nil {
		return "", err
	}
	return compiled.FormatPath(fields, opts...)
}

// ParsePath tries the path against every registered template, returning
// the first that matches with its extracted fields. Per-template
// non-matches are the expected try-next signal, not errors.
func (r *Resolver) ParsePath(path string, opts ...template.RootOption) (string, template.Fields, error) {
	for _, name := range r.store.Names() {
		compiled, err := r.Template(name)
		if err != nil {
			return "", nil, err
		}
		fields, err := compiled.ParsePath(path, opts...)
		if err != nil {
			if errors.IsMatchError(err) {
				continue
			}
			return "", nil, err
		}
		return name, fields, nil
	}
	return "", nil, errors.Newf(errors.ErrPathNoMatch,
		"no registered template matches path %q", path).
		WithDetail("path", path)
}

// ExtractClosest finds the template that consumes the longest
// directory-aligned prefix of the path. It returns the template name, the
// matched prefix, its fields, and the remainder with the joining
// separator stripped.
func (r *Resolver) ExtractClosest(path string, opts ...template.RootOption) (string, string, template.Fields, string, error) {
	var (
		bestName    string
		bestMatched string
		bestFields  template.Fields
		bestRest    string
		found       bool
	)

	for _, name := range r.store.Names() {
		compiled, err := r.Template(name)
		if err != nil {
			return "", "", nil, "", err
		}
		matched, fields, rest, err := compiled.ParsePrefix(path, opts...)
		if err != nil {
			if errors.IsMatchError(err) {
				continue
			}
			return "", "", nil, "", err
		}
		if !found || depth(rest) < depth(bestRest) {
			bestName, bestMatched, bestFields, bestRest = name, matched, fields, rest
			found = true
		}
	}

	if !found {
		return "", "", nil, "", errors.Newf(errors.ErrPathNoMatch,
			"no registered template matches a prefix of %q", path).
			WithDetail("path", path)
	}
	return bestName, bestMatched, bestFields, bestRest, nil
}

// Paths discovers the existing paths matching the named template with the
// given fields bound. Missing fields fall back to wildcards, or to their
// token defaults first when useDefaults is set. Candidates the glob
// over-matched are filtered out by re-validation.
func (r *Resolver) Paths(name string, known template.Fields, useDefaults bool, opts ...template.RootOption) ([]Match, error) {
	compiled, err := r.Template(name)
	if err != nil {
		return nil, err
	}

	bound := known.Copy()
	if useDefaults {
		for tokenName, spec := range compiled.Expanded().Tokens {
			if _, ok := bound[tokenName]; ok {
				continue
			}
			if def, ok := spec.Default(); ok {
				bound[tokenName] = def
			}
		}
	}

	plan, err := wildcard.New(compiled, bound, opts...)
	if err != nil {
		return nil, err
	}

	candidates, err := r.walker.Glob(plan.Glob)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInternal,
			"walker failed expanding glob %q", plan.Glob)
	}

	var matches []Match
	for _, candidate := range candidates {
		fields, err := plan.Validate(candidate)
		if err != nil {
			if errors.IsMatchError(err) {
				r.logger.Trace().
					Str("candidate", candidate).
					Str("template", name).
					Msg("candidate rejected by validator")
				continue
			}
			return nil, err
		}
		matches = append(matches, Match{Path: candidate, Fields: fields})
	}

	r.logger.Debug().
		Str("template", name).
		Str("glob", plan.Glob).
		Int("candidates", len(candidates)).
		Int("matches", len(matches)).
		Msg("wildcard discovery completed")

	return matches, nil
}

// ValuesFromPaths discovers paths for the named template and collects the
// distinct values the given field takes across them, in path order
func (r *Resolver) ValuesFromPaths(name, field string, known template.Fields, opts ...template.RootOption) ([]interface{}, error) {
	bound := known.Copy()
	delete(bound, field)

	matches, err := r.Paths(name, bound, false, opts...)
	if err != nil {
		return nil, err
	}

	var values []interface{}
	seen := make(map[interface{}]bool)
	for _, m := range matches {
		value, ok := m.Fields[field]
		if !ok || seen[value] {
			continue
		}
		seen[value] = true
		values = append(values, value)
	}
	return values, nil
}

// depth counts the remaining path components of an extraction remainder
func depth(rest string) int {
	rest = strings.Trim(rest, "/")
	if rest == "" {
		return 0
	}
	return strings.Count(rest, "/") + 1
}
