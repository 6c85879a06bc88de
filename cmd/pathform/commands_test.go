package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/pathform/pkg/template"
)

func TestParseFieldArgs(t *testing.T) {
	fields, err := parseFieldArgs([]string{"project_name=bees", "version=7"})
	require.NoError(t, err)
	assert.Equal(t, template.Fields{
		"project_name": "bees",
		"version":      "7",
	}, fields)

	fields, err = parseFieldArgs(nil)
	require.NoError(t, err)
	assert.Empty(t, fields)

	// values may themselves contain an equals sign
	fields, err = parseFieldArgs([]string{"note=a=b"})
	require.NoError(t, err)
	assert.Equal(t, "a=b", fields["note"])
}

func TestParseFieldArgsErrors(t *testing.T) {
	_, err := parseFieldArgs([]string{"no_value"})
	assert.Error(t, err)

	_, err = parseFieldArgs([]string{"=orphan"})
	assert.Error(t, err)
}

func TestRootOptions(t *testing.T) {
	t.Cleanup(func() {
		rootPath = ""
		noRoot = false
	})

	rootPath, noRoot = "", false
	assert.Nil(t, rootOptions())

	rootPath = "/mnt/work"
	opts := rootOptions()
	require.Len(t, opts, 1)
	binding := template.ApplyRootOptions(opts)
	assert.Equal(t, template.RootExplicit, binding.Kind)
	assert.Equal(t, "/mnt/work", binding.Path)

	// --no-root wins over --root
	noRoot = true
	binding = template.ApplyRootOptions(rootOptions())
	assert.Equal(t, template.RootNone, binding.Kind)
}
