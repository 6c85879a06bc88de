package config

import (
	gotoml "github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/pathform/pkg/errors"
)

type sampleToken struct {
	Type    string   `toml:"type"`
	Default string   `toml:"default,omitempty"`
	Choices []string `toml:"choices,omitempty"`
	Padding int      `toml:"padding,omitempty"`
}

type sampleFile struct {
	DefaultRoot string                 `toml:"default_root,omitempty"`
	Tokens      map[string]interface{} `toml:"tokens"`
	Templates   map[string]string      `toml:"templates"`
}

// SampleDefinitions renders an example definitions file in TOML,
// demonstrating the shorthand token form, choices, padding and
// template references
func SampleDefinitions() (string, error) {
	sample := sampleFile{
		DefaultRoot: "/projects",
		Tokens: map[string]interface{}{
			"project": "str",
			"name":    "str",
			"storage": sampleToken{
				Type:    "str",
				Default: "active",
				Choices: []string{"active", "archive"},
			},
			"version": sampleToken{
				Type:    "int",
				Padding: 3,
			},
		},
		Templates: map[string]string{
			"project": "@{root}/{project}",
			"storage": "@{project}/{storage}",
			"asset":   "@{storage}/assets/{name}/v{version}",
		},
	}

	out, err := gotoml.Marshal(sample)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to render sample definitions")
	}
	return string(out), nil
}
