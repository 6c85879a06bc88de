package rootstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateLifecycle(t *testing.T) {
	s := NewState()

	_, ok := s.Get()
	assert.False(t, ok)

	s.Set("/mnt/work")
	path, ok := s.Get()
	assert.True(t, ok)
	assert.Equal(t, "/mnt/work", path)

	// re-binding replaces the previous value
	s.Set("/mnt/other")
	path, _ = s.Get()
	assert.Equal(t, "/mnt/other", path)

	s.Clear()
	_, ok = s.Get()
	assert.False(t, ok)
}

func TestEmptyPathIsStillBound(t *testing.T) {
	// binding the empty string is distinct from not being bound
	s := NewState()
	s.Set("")
	path, ok := s.Get()
	assert.True(t, ok)
	assert.Equal(t, "", path)
}

func TestDefaultState(t *testing.T) {
	t.Cleanup(ClearDefaultRoot)

	_, ok := DefaultRoot()
	assert.False(t, ok)

	SetDefaultRoot("/projects")
	path, ok := DefaultRoot()
	assert.True(t, ok)
	assert.Equal(t, "/projects", path)

	// the package-level helpers and Default() share one cell
	got, ok := Default().Get()
	assert.True(t, ok)
	assert.Equal(t, "/projects", got)

	ClearDefaultRoot()
	_, ok = DefaultRoot()
	assert.False(t, ok)
}
