// Package config loads token and template definitions from a TOML or
// YAML file. A definitions file carries a `tokens` table, a `templates`
// table, and an optional `default_root`; token entries may use the
// shorthand form `name = "int"` instead of a full table.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/pathform/pkg/errors"
	"github.com/arthur-debert/pathform/pkg/logging"
	"github.com/arthur-debert/pathform/pkg/registry"
	"github.com/arthur-debert/pathform/pkg/template"
	"github.com/arthur-debert/pathform/pkg/token"
)

// EnvDefinitions names the environment variable pointing at the
// definitions file used when no explicit path is given
const EnvDefinitions = "PATHFORM_DEFINITIONS"

// envPrefix is the prefix for environment overrides of file keys,
// e.g. PATHFORM_DEFAULT_ROOT overrides default_root
const envPrefix = "PATHFORM_"

// TokenDef is one token's configuration as written in a definitions file
type TokenDef struct {
	Type    string
	Default string
	HasDef  bool
	Choices []string
	Padding int
}

// Definitions is a loaded, decoded definitions file
type Definitions struct {
	Tokens      map[string]TokenDef
	Templates   map[string]string
	DefaultRoot string
}

// Load reads a definitions file, choosing the parser by extension (.toml,
// .yml, .yaml), then overlays PATHFORM_* environment variables
func Load(path string) (*Definitions, error) {
	k := koanf.New(".")

	parser, err := parserFor(path)
	if err != nil {
		return nil, err
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDefinitionsLoad,
			"failed to load definitions from %s", path)
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(key string) string {
		return strings.ToLower(strings.TrimPrefix(key, envPrefix))
	}), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrDefinitionsLoad,
			"failed to overlay environment variables")
	}

	defs, err := decode(k)
	if err != nil {
		return nil, err
	}

	logger := logging.GetLogger("config")
	logger.Debug().
		Str("path", path).
		Int("tokens", len(defs.Tokens)).
		Int("templates", len(defs.Templates)).
		Msg("loaded definitions")

	return defs, nil
}

// LoadFromEnv reads the definitions file named by PATHFORM_DEFINITIONS
func LoadFromEnv() (*Definitions, error) {
	path := os.Getenv(EnvDefinitions)
	if path == "" {
		return nil, errors.Newf(errors.ErrDefinitionsLoad,
			"%s is not set", EnvDefinitions)
	}
	return Load(path)
}

// Apply registers every token and template in the definitions with the
// store. Each template is registered with the specs of the tokens its
// pattern directly references.
func (d *Definitions) Apply(store *registry.Store) error {
	specs := make(map[string]*token.Spec, len(d.Tokens))
	for name, def := range d.Tokens {
		spec, err := buildSpec(name, def)
		if err != nil {
			return err
		}
		specs[name] = spec
	}

	for name, pattern := range d.Templates {
		segments, err := template.Parse(pattern)
		if err != nil {
			return err
		}
		var local []*token.Spec
		for _, seg := range segments {
			if seg.Kind != template.KindToken {
				continue
			}
			spec, ok := specs[seg.Name]
			if !ok {
				return errors.Newf(errors.ErrUnknownReference,
					"template %q references undefined token %q", name, seg.Name).
					WithDetail("template", name).
					WithDetail("token", seg.Name)
			}
			local = append(local, spec)
		}
		if err := store.Add(name, pattern, local...); err != nil {
			return err
		}
	}
	return nil
}

func buildSpec(name string, def TokenDef) (*token.Spec, error) {
	typ, err := token.ParseType(def.Type)
	if err != nil {
		return nil, err
	}
	var opts []token.Option
	if def.HasDef {
		opts = append(opts, token.WithDefault(def.Default))
	}
	if len(def.Choices) > 0 {
		opts = append(opts, token.WithChoices(def.Choices...))
	}
	if def.Padding > 0 {
		opts = append(opts, token.WithPadding(def.Padding))
	}
	return token.New(name, typ, opts...)
}

func parserFor(path string) (koanf.Parser, error) {
	switch filepath.Ext(path) {
	case ".toml":
		return toml.Parser(), nil
	case ".yml", ".yaml":
		return yaml.Parser(), nil
	}
	return nil, errors.Newf(errors.ErrDefinitionsLoad,
		"unsupported definitions format: %s", path)
}

// decode converts the raw koanf tree into typed definitions, accepting
// the shorthand token form
func decode(k *koanf.Koanf) (*Definitions, error) {
	defs := &Definitions{
		Tokens:      make(map[string]TokenDef),
		Templates:   make(map[string]string),
		DefaultRoot: k.String("default_root"),
	}

	rawTokens, ok := k.Get("tokens").(map[string]interface{})
	if k.Exists("tokens") && !ok {
		return nil, errors.New(errors.ErrDefinitionsParse, "tokens must be a table")
	}
	for name, raw := range rawTokens {
		def, err := decodeToken(name, raw)
		if err != nil {
			return nil, err
		}
		defs.Tokens[name] = def
	}

	rawTemplates, ok := k.Get("templates").(map[string]interface{})
	if k.Exists("templates") && !ok {
		return nil, errors.New(errors.ErrDefinitionsParse, "templates must be a table")
	}
	for name, raw := range rawTemplates {
		pattern, ok := raw.(string)
		if !ok {
			return nil, errors.Newf(errors.ErrDefinitionsParse,
				"template %q must be a pattern string", name)
		}
		defs.Templates[name] = pattern
	}

	return defs, nil
}

func decodeToken(name string, raw interface{}) (TokenDef, error) {
	switch v := raw.(type) {
	case string:
		// Shorthand: name = "int"
		return TokenDef{Type: v}, nil
	case map[string]interface{}:
		def := TokenDef{}
		for key, value := range v {
			switch key {
			case "type":
				def.Type = asString(value)
			case "default":
				def.Default = asString(value)
				def.HasDef = true
			case "padding":
				n, ok := asInt(value)
				if !ok {
					return def, errors.Newf(errors.ErrDefinitionsParse,
						"token %q: padding must be an integer", name)
				}
				def.Padding = n
			case "choices":
				items, ok := value.([]interface{})
				if !ok {
					return def, errors.Newf(errors.ErrDefinitionsParse,
						"token %q: choices must be a list", name)
				}
				for _, item := range items {
					def.Choices = append(def.Choices, asString(item))
				}
			default:
				return def, errors.Newf(errors.ErrDefinitionsParse,
					"token %q: unknown key %q", name, key)
			}
		}
		return def, nil
	}
	return TokenDef{}, errors.Newf(errors.ErrDefinitionsParse,
		"token %q must be a type string or a table", name)
}

func asString(value interface{}) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}

func asInt(value interface{}) (int, bool) {
	switch n := value.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
