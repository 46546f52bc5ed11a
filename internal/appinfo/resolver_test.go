package appinfo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeDesktopFile writes a desktop entry under dir/applications.
func writeDesktopFile(t *testing.T, dir, app, content string) {
	t.Helper()
	appsDir := filepath.Join(dir, "applications")
	require.NoError(t, os.MkdirAll(appsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(appsDir, app+".desktop"), []byte(content), 0o644))
}

func TestDesktopResolver_Lookup(t *testing.T) {
	dir := t.TempDir()
	writeDesktopFile(t, dir, "org.example.browser", `[Desktop Entry]
Type=Application
Name=Example Browser
Name[de]=Beispiel-Browser
Icon=example-browser
Exec=example-browser %u
`)

	r := NewDesktopResolverWithDirs(nil, []string{dir})

	label, err := r.AppLabel("org.example.browser")
	require.NoError(t, err)
	assert.Equal(t, "Example Browser", label)

	icon, err := r.AppIcon("org.example.browser")
	require.NoError(t, err)
	assert.Equal(t, "example-browser", icon)
}

func TestDesktopResolver_NotFound(t *testing.T) {
	r := NewDesktopResolverWithDirs(nil, []string{t.TempDir()})

	_, err := r.AppLabel("com.example.missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.AppIcon("com.example.missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDesktopResolver_IgnoresOtherGroups(t *testing.T) {
	dir := t.TempDir()
	writeDesktopFile(t, dir, "org.example.tool", `[Desktop Entry]
Name=Tool
Icon=tool-icon

[Desktop Action new-window]
Name=New Window
Icon=other-icon
`)

	r := NewDesktopResolverWithDirs(nil, []string{dir})

	label, err := r.AppLabel("org.example.tool")
	require.NoError(t, err)
	assert.Equal(t, "Tool", label)

	icon, err := r.AppIcon("org.example.tool")
	require.NoError(t, err)
	assert.Equal(t, "tool-icon", icon)
}

func TestDesktopResolver_MissingKeys(t *testing.T) {
	dir := t.TempDir()
	writeDesktopFile(t, dir, "org.example.nameless", `[Desktop Entry]
Type=Application
Exec=nameless
`)

	r := NewDesktopResolverWithDirs(nil, []string{dir})

	_, err := r.AppLabel("org.example.nameless")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.AppIcon("org.example.nameless")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDesktopResolver_DirOrder(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeDesktopFile(t, first, "org.example.app", "[Desktop Entry]\nName=First\n")
	writeDesktopFile(t, second, "org.example.app", "[Desktop Entry]\nName=Second\n")

	r := NewDesktopResolverWithDirs(nil, []string{first, second})

	label, err := r.AppLabel("org.example.app")
	require.NoError(t, err)
	assert.Equal(t, "First", label)
}

func TestDesktopResolver_CachesMisses(t *testing.T) {
	dir := t.TempDir()
	r := NewDesktopResolverWithDirs(nil, []string{dir})

	_, err := r.AppLabel("org.example.late")
	assert.ErrorIs(t, err, ErrNotFound)

	// Entry appears after the first lookup; the miss is cached.
	writeDesktopFile(t, dir, "org.example.late", "[Desktop Entry]\nName=Late\n")
	_, err = r.AppLabel("org.example.late")
	assert.ErrorIs(t, err, ErrNotFound)
}
