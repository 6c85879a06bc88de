package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/pathform/pkg/errors"
	"github.com/arthur-debert/pathform/pkg/rootstate"
	"github.com/arthur-debert/pathform/pkg/token"
)

// publishExpanded mimics the output of registry resolution for a
// rootless publish template: v{version}/output.{extension}
func publishExpanded() *Expanded {
	return &Expanded{
		Name: "publish",
		Body: []Segment{
			Literal("v"),
			TokenRef("version"),
			Literal("/output."),
			TokenRef("extension"),
		},
		Tokens: map[string]*token.Spec{
			"version":   token.MustNew("version", token.TypeInt, token.WithPadding(3)),
			"extension": token.MustNew("extension", token.TypeString),
		},
	}
}

// rootedExpanded mimics a template with a dynamic root reference:
// @{root}/projects/{name}
func rootedExpanded() *Expanded {
	return &Expanded{
		Name:     "project",
		HasRoot:  true,
		RootName: "root",
		Body: []Segment{
			Literal("projects/"),
			TokenRef("name"),
		},
		Tokens: map[string]*token.Spec{
			"name": token.MustNew("name", token.TypeString),
		},
	}
}

func TestFormatPath(t *testing.T) {
	c, err := Compile(publishExpanded(), rootstate.NewState())
	require.NoError(t, err)

	got, err := c.FormatPath(Fields{"version": 7, "extension": "exr"})
	require.NoError(t, err)
	assert.Equal(t, "v007/output.exr", got)
}

func TestFormatPathMissingFields(t *testing.T) {
	c, err := Compile(publishExpanded(), rootstate.NewState())
	require.NoError(t, err)

	_, err = c.FormatPath(Fields{})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrMissingField))
	// every missing token is reported in one pass
	assert.Contains(t, err.Error(), "version")
	assert.Contains(t, err.Error(), "extension")
}

func TestFormatPathUsesDefaults(t *testing.T) {
	exp := publishExpanded()
	exp.Tokens["extension"] = token.MustNew("extension", token.TypeString,
		token.WithDefault("exr"))
	c, err := Compile(exp, rootstate.NewState())
	require.NoError(t, err)

	got, err := c.FormatPath(Fields{"version": 2})
	require.NoError(t, err)
	assert.Equal(t, "v002/output.exr", got)
}

func TestParsePath(t *testing.T) {
	c, err := Compile(publishExpanded(), rootstate.NewState())
	require.NoError(t, err)

	fields, err := c.ParsePath("v007/output.exr")
	require.NoError(t, err)
	assert.Equal(t, Fields{"version": 7, "extension": "exr"}, fields)
}

func TestParsePathErrors(t *testing.T) {
	c, err := Compile(publishExpanded(), rootstate.NewState())
	require.NoError(t, err)

	tests := []struct {
		name string
		path string
		code errors.ErrorCode
	}{
		{"structural mismatch", "renders/output.exr", errors.ErrPathNoMatch},
		{"extra leading component", "extra/v007/output.exr", errors.ErrPathNoMatch},
		{"extra trailing component", "v007/output.exr/deep", errors.ErrPathNoMatch},
		{"padding too narrow", "v7/output.exr", errors.ErrPaddingViolation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.ParsePath(tt.path)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, tt.code), "got %v", err)
		})
	}
}

func TestParsePathNonGreedyStrings(t *testing.T) {
	exp := &Expanded{
		Name: "file",
		Body: []Segment{
			TokenRef("stem"),
			Literal("."),
			TokenRef("extension"),
		},
		Tokens: map[string]*token.Spec{
			"stem":      token.MustNew("stem", token.TypeString),
			"extension": token.MustNew("extension", token.TypeString),
		},
	}
	c, err := Compile(exp, rootstate.NewState())
	require.NoError(t, err)

	// the first capture stops at the earliest literal anchor
	fields, err := c.ParsePath("scene.v2.ma")
	require.NoError(t, err)
	assert.Equal(t, Fields{"stem": "scene", "extension": "v2.ma"}, fields)
}

func TestParsePathRepeatedCaptureAgreement(t *testing.T) {
	// expansion can legally repeat a token; the captures must agree
	exp := &Expanded{
		Name: "mirrored",
		Body: []Segment{
			TokenRef("name"),
			Literal("/copy_of_"),
			TokenRef("name"),
		},
		Tokens: map[string]*token.Spec{
			"name": token.MustNew("name", token.TypeString),
		},
	}
	// built by hand: Parse would reject the duplicate in one raw pattern
	c, err := Compile(exp, rootstate.NewState())
	require.NoError(t, err)

	fields, err := c.ParsePath("mandible/copy_of_mandible")
	require.NoError(t, err)
	assert.Equal(t, Fields{"name": "mandible"}, fields)

	_, err = c.ParsePath("mandible/copy_of_thorax")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPathNoMatch))
}

func TestParsePathIncludesFixed(t *testing.T) {
	exp := publishExpanded()
	exp.Fixed = Fields{"storage": "archive"}
	c, err := Compile(exp, rootstate.NewState())
	require.NoError(t, err)

	fields, err := c.ParsePath("v007/output.exr")
	require.NoError(t, err)
	assert.Equal(t, Fields{"version": 7, "extension": "exr", "storage": "archive"}, fields)
}

func TestParsePathFixedConflictsWithCapture(t *testing.T) {
	// an override-fixed value and a capture may share a name, as in
	// thumb = "thumb.{ext}" referenced as @{thumb:ext=jpg}/frame.{ext}:
	// the capture must agree with the fixed value, never be replaced by it
	exp := &Expanded{
		Name:     "render",
		HasRoot:  true,
		RootName: "thumb",
		Root: []Segment{
			Literal("thumb.jpg"),
		},
		Body: []Segment{
			Literal("frame."),
			TokenRef("ext"),
		},
		Tokens: map[string]*token.Spec{
			"ext": token.MustNew("ext", token.TypeString),
		},
		Fixed: Fields{"ext": "jpg"},
	}
	c, err := Compile(exp, rootstate.NewState())
	require.NoError(t, err)

	_, err = c.ParsePath("thumb.jpg/frame.png")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPathNoMatch), "got %v", err)

	fields, err := c.ParsePath("thumb.jpg/frame.jpg")
	require.NoError(t, err)
	assert.Equal(t, Fields{"ext": "jpg"}, fields)
}

func TestRootTriState(t *testing.T) {
	roots := rootstate.NewState()
	c, err := Compile(rootedExpanded(), roots)
	require.NoError(t, err)

	// unspecified, no default bound: the root contributes nothing
	got, err := c.FormatPath(Fields{"name": "mandible"})
	require.NoError(t, err)
	assert.Equal(t, "projects/mandible", got)

	// unspecified, default bound: the default prefixes the path
	roots.Set("/mnt/work")
	got, err = c.FormatPath(Fields{"name": "mandible"})
	require.NoError(t, err)
	assert.Equal(t, "/mnt/work/projects/mandible", got)

	// explicit root wins over the default
	got, err = c.FormatPath(Fields{"name": "mandible"}, WithRoot("/tmp/sandbox"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/sandbox/projects/mandible", got)

	// explicit no-root suppresses even the default
	got, err = c.FormatPath(Fields{"name": "mandible"}, WithNoRoot())
	require.NoError(t, err)
	assert.Equal(t, "projects/mandible", got)
}

func TestRootOptionsIgnoredWithoutRootReference(t *testing.T) {
	roots := rootstate.NewState()
	roots.Set("/mnt/work")
	c, err := Compile(publishExpanded(), roots)
	require.NoError(t, err)

	// root handling is scoped to templates that declare a root
	// reference; others stay unprefixed whatever the caller passes
	got, err := c.FormatPath(Fields{"version": 7, "extension": "exr"},
		WithRoot("/tmp/sandbox"))
	require.NoError(t, err)
	assert.Equal(t, "v007/output.exr", got)

	fields, err := c.ParsePath("v007/output.exr", WithRoot("/tmp/sandbox"))
	require.NoError(t, err)
	assert.Equal(t, 7, fields["version"])
}

func TestRootTriStateParse(t *testing.T) {
	roots := rootstate.NewState()
	roots.Set("/mnt/work")
	c, err := Compile(rootedExpanded(), roots)
	require.NoError(t, err)

	fields, err := c.ParsePath("/mnt/work/projects/mandible")
	require.NoError(t, err)
	assert.Equal(t, Fields{"name": "mandible"}, fields)

	// the rooted form no longer matches without its prefix
	_, err = c.ParsePath("projects/mandible")
	assert.True(t, errors.IsErrorCode(err, errors.ErrPathNoMatch))

	fields, err = c.ParsePath("projects/mandible", WithNoRoot())
	require.NoError(t, err)
	assert.Equal(t, Fields{"name": "mandible"}, fields)

	fields, err = c.ParsePath("/elsewhere/projects/mandible", WithRoot("/elsewhere"))
	require.NoError(t, err)
	assert.Equal(t, Fields{"name": "mandible"}, fields)
}

func TestStaticRoot(t *testing.T) {
	exp := &Expanded{
		Name:     "storage",
		HasRoot:  true,
		RootName: "project",
		Root: []Segment{
			Literal("/projects/"),
			TokenRef("project_name"),
		},
		Body: []Segment{
			TokenRef("storage"),
		},
		Tokens: map[string]*token.Spec{
			"project_name": token.MustNew("project_name", token.TypeString),
			"storage": token.MustNew("storage", token.TypeString,
				token.WithChoices("active", "archive")),
		},
	}
	c, err := Compile(exp, rootstate.NewState())
	require.NoError(t, err)

	got, err := c.FormatPath(Fields{"project_name": "bees", "storage": "active"})
	require.NoError(t, err)
	assert.Equal(t, "/projects/bees/active", got)

	fields, err := c.ParsePath("/projects/bees/archive")
	require.NoError(t, err)
	assert.Equal(t, Fields{"project_name": "bees", "storage": "archive"}, fields)

	_, err = c.ParsePath("/projects/bees/working")
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotInChoices))
}

func TestParsePrefix(t *testing.T) {
	roots := rootstate.NewState()
	roots.Set("/mnt/work")
	c, err := Compile(rootedExpanded(), roots)
	require.NoError(t, err)

	matched, fields, rest, err := c.ParsePrefix("/mnt/work/projects/mandible/assets/rig.ma")
	require.NoError(t, err)
	assert.Equal(t, "/mnt/work/projects/mandible", matched)
	assert.Equal(t, Fields{"name": "mandible"}, fields)
	assert.Equal(t, "assets/rig.ma", rest)

	// an exact match leaves no remainder
	matched, _, rest, err = c.ParsePrefix("/mnt/work/projects/mandible")
	require.NoError(t, err)
	assert.Equal(t, "/mnt/work/projects/mandible", matched)
	assert.Equal(t, "", rest)

	// the prefix must stop on a component boundary
	_, _, _, err = c.ParsePrefix("/mnt/other/projects/mandible")
	assert.True(t, errors.IsErrorCode(err, errors.ErrPathNoMatch))
}

func TestCompileUndeclaredToken(t *testing.T) {
	exp := &Expanded{
		Name:   "broken",
		Body:   []Segment{TokenRef("ghost")},
		Tokens: map[string]*token.Spec{},
	}
	_, err := Compile(exp, rootstate.NewState())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnknownReference))
}
