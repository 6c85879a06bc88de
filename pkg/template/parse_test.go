package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/pathform/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    []Segment
	}{
		{
			name:    "literal only",
			pattern: "projects/shared",
			want:    []Segment{Literal("projects/shared")},
		},
		{
			name:    "single token",
			pattern: "{name}",
			want:    []Segment{TokenRef("name")},
		},
		{
			name:    "literal and tokens",
			pattern: "v{version}/output.{extension}",
			want: []Segment{
				Literal("v"),
				TokenRef("version"),
				Literal("/output."),
				TokenRef("extension"),
			},
		},
		{
			name:    "leading reference is the root",
			pattern: "@{project}/{category}",
			want: []Segment{
				TemplateRef("project", ModeRoot, nil),
				Literal("/"),
				TokenRef("category"),
			},
		},
		{
			name:    "embedded reference is relative",
			pattern: "shots/@{shot}/plates",
			want: []Segment{
				Literal("shots/"),
				TemplateRef("shot", ModeRelative, nil),
				Literal("/plates"),
			},
		},
		{
			name:    "reference with overrides",
			pattern: "@{entity:storage=archive,version=3}/final",
			want: []Segment{
				TemplateRef("entity", ModeRoot, map[string]string{
					"storage": "archive",
					"version": "3",
				}),
				Literal("/final"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
	}{
		{"empty pattern", ""},
		{"unclosed brace", "projects/{name"},
		{"stray closing brace", "projects/name}"},
		{"nested braces", "projects/{{name}}"},
		{"empty token name", "projects/{}"},
		{"token name with slash", "projects/{a/b}"},
		{"token name with space", "projects/{a b}"},
		{"empty reference name", "@{}/tail"},
		{"override without value", "@{entity:storage=}/x"},
		{"override without equals", "@{entity:storage}/x"},
		{"override with bad key", "@{entity:sto rage=a}/x"},
		{"duplicate token", "{name}/{name}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.pattern)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrTemplateMalformed),
				"got %v", err)
		})
	}
}

func TestParseSameNameTokenAndReference(t *testing.T) {
	// a token and a template reference may share a name; only token
	// duplicates within one pattern are rejected
	got, err := Parse("@{name}/{name}")
	require.NoError(t, err)
	assert.Equal(t, []Segment{
		TemplateRef("name", ModeRoot, nil),
		Literal("/"),
		TokenRef("name"),
	}, got)
}

func TestFieldsCopyMergeEqual(t *testing.T) {
	a := Fields{"name": "mandible", "version": 3}
	b := a.Copy()
	b["version"] = 4

	assert.Equal(t, 3, a["version"])
	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(Fields{"version": 3, "name": "mandible"}))

	merged := a.Merge(Fields{"version": 9, "extension": "exr"})
	assert.Equal(t, Fields{"name": "mandible", "version": 9, "extension": "exr"}, merged)
	assert.Equal(t, 3, a["version"])
}
