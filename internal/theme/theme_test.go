package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCSS(t *testing.T) {
	css := DefaultCSS()
	require.NotEmpty(t, css)
	assert.Contains(t, css, ".overlay-chip")
	assert.Contains(t, css, ".overlay-enter")
}

func TestReadStyle_UserOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "style.css")
	require.NoError(t, os.WriteFile(path, []byte(".overlay-chip { color: red; }"), 0644))

	css, userStyle, err := ReadStyle(path)
	require.NoError(t, err)
	assert.True(t, userStyle)
	assert.Equal(t, ".overlay-chip { color: red; }", css)
}

func TestReadStyle_MissingFallsBack(t *testing.T) {
	css, userStyle, err := ReadStyle(filepath.Join(t.TempDir(), "style.css"))
	require.NoError(t, err)
	assert.False(t, userStyle)
	assert.Equal(t, DefaultCSS(), css)
}

func TestReadStyle_EmptyPath(t *testing.T) {
	css, userStyle, err := ReadStyle("")
	require.NoError(t, err)
	assert.False(t, userStyle)
	assert.Equal(t, DefaultCSS(), css)
}
