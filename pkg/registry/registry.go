package registry

import (
	"sort"
	"strings"
	"sync"

	"github.com/arthur-debert/pathform/pkg/errors"
	"github.com/arthur-debert/pathform/pkg/logging"
	"github.com/arthur-debert/pathform/pkg/template"
	"github.com/arthur-debert/pathform/pkg/token"
	"github.com/rs/zerolog"
)

// Definition is a registered template: its raw pattern, parsed segment
// sequence, and the token specs it directly declares. Immutable once
// registered.
type Definition struct {
	name     string
	pattern  string
	segments []template.Segment
	tokens   map[string]*token.Spec
}

// Name returns the template's registered name
func (d *Definition) Name() string {
	return d.name
}

// Pattern returns the raw pattern string the template was registered with
func (d *Definition) Pattern() string {
	return d.pattern
}

// Segments returns the template's parsed segment sequence
func (d *Definition) Segments() []template.Segment {
	out := make([]template.Segment, len(d.segments))
	copy(out, d.segments)
	return out
}

// TokenNames returns the names of the tokens the template directly
// declares, sorted
func (d *Definition) TokenNames() []string {
	names := make([]string, 0, len(d.tokens))
	for name := range d.tokens {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Store is a thread-safe mapping from template name to definition
type Store struct {
	mu     sync.RWMutex
	defs   map[string]*Definition
	logger zerolog.Logger
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{
		defs:   make(map[string]*Definition),
		logger: logging.GetLogger("registry"),
	}
}

// Add parses and registers a template. The pattern is parsed eagerly and
// every token reference must have a spec among the given specs; template
// references are validated lazily at Resolve time so definitions may be
// registered in any order.
func (s *Store) Add(name, pattern string, specs ...*token.Spec) error {
	if name == "" {
		return errors.New(errors.ErrInvalidInput, "template name cannot be empty")
	}

	segments, err := template.Parse(pattern)
	if err != nil {
		return err
	}

	tokens := make(map[string]*token.Spec, len(specs))
	for _, spec := range specs {
		tokens[spec.Name()] = spec
	}
	for _, seg := range segments {
		if seg.Kind == template.KindToken {
			if _, ok := tokens[seg.Name]; !ok {
				return errors.Newf(errors.ErrUnknownReference,
					"template %q references undeclared token %q", name, seg.Name).
					WithDetail("template", name).
					WithDetail("token", seg.Name)
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.defs[name]; exists {
		return errors.Newf(errors.ErrAlreadyExists, "template %q is already registered", name)
	}
	s.defs[name] = &Definition{
		name:     name,
		pattern:  pattern,
		segments: segments,
		tokens:   tokens,
	}

	s.logger.Debug().
		Str("template", name).
		Str("pattern", pattern).
		Msg("registered template")

	return nil
}

// Get retrieves a registered definition
func (s *Store) Get(name string) (*Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	def, ok := s.defs[name]
	if !ok {
		return nil, errors.Newf(errors.ErrNotFound, "template %q not found", name)
	}
	return def, nil
}

// Remove deletes a registered definition
func (s *Store) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.defs[name]; !ok {
		return errors.Newf(errors.ErrNotFound, "template %q not found", name)
	}
	delete(s.defs, name)
	return nil
}

// Has checks if a template is registered
func (s *Store) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.defs[name]
	return ok
}

// Names returns all registered template names in sorted order
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.defs))
	for name := range s.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered templates
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.defs)
}

// Resolve expands every template reference in the named template,
// producing the flat segment sequence the compiler consumes. Resolution
// is pure over the store's state: resolving the same name twice without
// intervening mutation yields structurally identical results.
func (s *Store) Resolve(name string) (*template.Expanded, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.defs[name]; !ok {
		return nil, errors.Newf(errors.ErrNotFound, "template %q not found", name)
	}

	exp, err := s.expand(name, nil)
	if err != nil {
		return nil, err
	}

	return &template.Expanded{
		Name:     name,
		HasRoot:  exp.hasRoot,
		RootName: exp.rootName,
		Root:     mergeLiterals(exp.root),
		Body:     mergeLiterals(exp.body),
		Tokens:   exp.tokens,
		Fixed:    exp.fixed,
	}, nil
}

// expansion is the in-progress result of a depth-first reference walk
type expansion struct {
	hasRoot  bool
	rootName string
	root     []template.Segment
	body     []template.Segment
	tokens   map[string]*token.Spec
	fixed    template.Fields
}

// expand walks the named template's segments depth-first. The stack holds
// the active expansion chain; revisiting a name on it is a cycle.
func (s *Store) expand(name string, stack []string) (*expansion, error) {
	for _, active := range stack {
		if active == name {
			chain := strings.Join(append(append([]string{}, stack...), name), " -> ")
			return nil, errors.Newf(errors.ErrTemplateCycle,
				"template reference cycle: %s", chain).
				WithDetail("chain", chain)
		}
	}

	def, ok := s.defs[name]
	if !ok {
		return nil, errors.Newf(errors.ErrUnknownReference,
			"referenced template %q is not registered", name).
			WithDetail("template", name)
	}

	exp := &expansion{
		tokens: make(map[string]*token.Spec),
		fixed:  make(template.Fields),
	}

	// When a reference contributes only the root, the pattern's own
	// separator after it must not leak into the body: the body stays
	// relative and the formatter joins the root back on.
	stripSep := false
	for _, seg := range def.segments {
		switch seg.Kind {
		case template.KindLiteral:
			if stripSep {
				seg.Text = strings.TrimPrefix(seg.Text, "/")
				stripSep = false
				if seg.Text == "" {
					continue
				}
			}
			exp.body = append(exp.body, seg)

		case template.KindToken:
			stripSep = false
			if err := exp.mergeToken(def.tokens[seg.Name]); err != nil {
				return nil, err
			}
			exp.body = append(exp.body, seg)

		case template.KindTemplate:
			before := len(exp.body)
			if err := s.expandRef(exp, seg, name, stack); err != nil {
				return nil, err
			}
			stripSep = seg.Mode == template.ModeRoot && len(exp.body) == before
		}
	}

	return exp, nil
}

// expandRef splices a referenced template into the enclosing expansion
func (s *Store) expandRef(exp *expansion, seg template.Segment, from string, stack []string) error {
	_, registered := s.defs[seg.Name]

	if !registered {
		// A root reference to an unregistered name is a dynamic root
		// slot, satisfied at call time by an explicit override or the
		// process default root. Every other dangling reference is a
		// definition error.
		if seg.Mode == template.ModeRoot {
			exp.hasRoot = true
			exp.rootName = seg.Name
			return nil
		}
		return errors.Newf(errors.ErrUnknownReference,
			"template %q references unregistered template %q", from, seg.Name).
			WithDetail("template", from).
			WithDetail("reference", seg.Name)
	}

	sub, err := s.expand(seg.Name, append(stack, from))
	if err != nil {
		return err
	}
	if err := sub.applyOverrides(seg.Name, seg.Overrides); err != nil {
		return err
	}

	for _, spec := range sub.tokens {
		if err := exp.mergeToken(spec); err != nil {
			return err
		}
	}
	for k, v := range sub.fixed {
		exp.fixed[k] = v
	}

	if seg.Mode == template.ModeRoot {
		exp.hasRoot = true
		if sub.hasRoot {
			// The chain's innermost root carries through; the
			// intermediate body splices in place
			exp.rootName = sub.rootName
			exp.root = sub.root
			exp.body = append(exp.body, sub.body...)
		} else {
			// A rootless referenced template is itself the static root
			exp.rootName = seg.Name
			exp.root = sub.body
		}
		return nil
	}

	// Relative references embed a reusable sub-pattern mid-path; a
	// referenced template that itself declares a root cannot be embedded
	if sub.hasRoot {
		return errors.Newf(errors.ErrInvalidInput,
			"template %q embeds %q, which declares a root reference", from, seg.Name).
			WithDetail("template", from).
			WithDetail("reference", seg.Name)
	}
	exp.body = append(exp.body, sub.body...)
	return nil
}

// mergeToken adds a token spec to the effective namespace, rejecting
// same-name specs with conflicting types. The first-encountered spec wins
// so the enclosing template's constraints take precedence.
func (e *expansion) mergeToken(spec *token.Spec) error {
	existing, ok := e.tokens[spec.Name()]
	if !ok {
		e.tokens[spec.Name()] = spec
		return nil
	}
	if !existing.Compatible(spec) {
		return errors.Newf(errors.ErrTokenTypeConflict,
			"token %q is declared as both %s and %s in the expanded namespace",
			spec.Name(), existing.Type(), spec.Type()).
			WithDetail("token", spec.Name())
	}
	return nil
}

// applyOverrides substitutes fixed-value token references with formatted
// literals. Substitution is eager and irreversible; an inner expansion's
// binding for a token wins over an enclosing one.
func (e *expansion) applyOverrides(templateName string, overrides map[string]string) error {
	for name, raw := range overrides {
		spec, ok := e.tokens[name]
		if !ok {
			return errors.Newf(errors.ErrUnknownReference,
				"override for unknown token %q on reference to %q", name, templateName).
				WithDetail("template", templateName).
				WithDetail("token", name)
		}
		formatted, err := spec.Format(raw)
		if err != nil {
			return errors.Wrapf(err, errors.ErrTokenConfig,
				"invalid override value %q for token %q on reference to %q",
				raw, name, templateName)
		}
		value, err := spec.Parse(formatted)
		if err != nil {
			return errors.Wrapf(err, errors.ErrTokenConfig,
				"invalid override value %q for token %q on reference to %q",
				raw, name, templateName)
		}

		e.root = substituteToken(e.root, name, formatted)
		e.body = substituteToken(e.body, name, formatted)
		if !referencesToken(e.root, name) && !referencesToken(e.body, name) {
			delete(e.tokens, name)
		}
		if _, bound := e.fixed[name]; !bound {
			e.fixed[name] = value
		}
	}
	return nil
}

func substituteToken(segments []template.Segment, name, formatted string) []template.Segment {
	for i, seg := range segments {
		if seg.Kind == template.KindToken && seg.Name == name {
			segments[i] = template.Literal(formatted)
		}
	}
	return segments
}

func referencesToken(segments []template.Segment, name string) bool {
	for _, seg := range segments {
		if seg.Kind == template.KindToken && seg.Name == name {
			return true
		}
	}
	return false
}

// mergeLiterals joins adjacent literal segments so expansions of the same
// definition are structurally identical regardless of splice boundaries
func mergeLiterals(segments []template.Segment) []template.Segment {
	var out []template.Segment
	for _, seg := range segments {
		if seg.Kind == template.KindLiteral && len(out) > 0 && out[len(out)-1].Kind == template.KindLiteral {
			out[len(out)-1].Text += seg.Text
			continue
		}
		out = append(out, seg)
	}
	return out
}
