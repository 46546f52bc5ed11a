// Package appinfo resolves application display metadata (label and
// icon) from desktop entries.
package appinfo

import (
	"bufio"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNotFound indicates no desktop entry exists for the application, or
// the entry does not carry the requested key.
var ErrNotFound = errors.New("application metadata not found")

// Resolver looks up application display metadata by application ID
// (the desktop-entry basename, e.g. "org.mozilla.firefox").
type Resolver interface {
	// AppLabel returns the human-readable application name.
	AppLabel(app string) (string, error)
	// AppIcon returns the application icon name.
	AppIcon(app string) (string, error)
}

// entry is the parsed subset of a desktop file.
type entry struct {
	name string
	icon string
}

// DesktopResolver resolves metadata by scanning XDG data directories
// for <app>.desktop files. Results are cached; missing entries are
// cached too so repeated lookups for unknown apps stay cheap.
type DesktopResolver struct {
	logger   *slog.Logger
	dataDirs []string

	mu    sync.Mutex
	cache map[string]*entry // nil value = known missing
}

// NewDesktopResolver creates a resolver over the standard XDG data
// directories.
func NewDesktopResolver(logger *slog.Logger) *DesktopResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &DesktopResolver{
		logger:   logger,
		dataDirs: xdgDataDirs(),
		cache:    make(map[string]*entry),
	}
}

// NewDesktopResolverWithDirs creates a resolver over explicit data
// directories. Used in tests.
func NewDesktopResolverWithDirs(logger *slog.Logger, dirs []string) *DesktopResolver {
	r := NewDesktopResolver(logger)
	r.dataDirs = dirs
	return r
}

// AppLabel returns the Name key of the application's desktop entry.
func (r *DesktopResolver) AppLabel(app string) (string, error) {
	e, err := r.lookup(app)
	if err != nil {
		return "", err
	}
	if e.name == "" {
		return "", ErrNotFound
	}
	return e.name, nil
}

// AppIcon returns the Icon key of the application's desktop entry.
func (r *DesktopResolver) AppIcon(app string) (string, error) {
	e, err := r.lookup(app)
	if err != nil {
		return "", err
	}
	if e.icon == "" {
		return "", ErrNotFound
	}
	return e.icon, nil
}

// lookup finds and parses the desktop entry for app, consulting the
// cache first.
func (r *DesktopResolver) lookup(app string) (*entry, error) {
	r.mu.Lock()
	cached, seen := r.cache[app]
	r.mu.Unlock()
	if seen {
		if cached == nil {
			return nil, ErrNotFound
		}
		return cached, nil
	}

	var found *entry
	for _, dir := range r.dataDirs {
		path := filepath.Join(dir, "applications", app+".desktop")
		e, err := parseDesktopFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				r.logger.Debug("failed to parse desktop entry", "path", path, "error", err)
			}
			continue
		}
		found = e
		break
	}

	r.mu.Lock()
	r.cache[app] = found
	r.mu.Unlock()

	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

// parseDesktopFile extracts Name and Icon from the [Desktop Entry]
// group of a desktop file. Localized keys (Name[xx]) are ignored.
func parseDesktopFile(path string) (*entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	e := &entry{}
	inDesktopEntry := false

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			inDesktopEntry = line == "[Desktop Entry]"
			continue
		}
		if !inDesktopEntry {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "Name":
			e.name = strings.TrimSpace(value)
		case "Icon":
			e.icon = strings.TrimSpace(value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return e, nil
}

// xdgDataDirs returns the XDG data directories in lookup order.
func xdgDataDirs() []string {
	var dirs []string

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dataHome = filepath.Join(home, ".local", "share")
		}
	}
	if dataHome != "" {
		dirs = append(dirs, dataHome)
	}

	dataDirs := os.Getenv("XDG_DATA_DIRS")
	if dataDirs == "" {
		dataDirs = "/usr/local/share:/usr/share"
	}
	for _, d := range strings.Split(dataDirs, ":") {
		if d != "" {
			dirs = append(dirs, d)
		}
	}
	return dirs
}
