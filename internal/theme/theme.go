// Package theme provides CSS styling for the overlay chip.
package theme

import (
	"embed"
	"os"
	"path/filepath"
)

// embeddedStyles holds the bundled stylesheet.
//
//go:embed styles/default.css
var embeddedStyles embed.FS

// StylePath returns the path of the user stylesheet override.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func StylePath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "overlayd", "style.css")
}

// DefaultCSS returns the bundled stylesheet.
func DefaultCSS() string {
	data, err := embeddedStyles.ReadFile("styles/default.css")
	if err != nil {
		return ""
	}
	return string(data)
}

// ReadStyle returns the CSS to apply: the user stylesheet at path when
// it exists, the bundled default otherwise. userStyle reports which one
// was chosen.
func ReadStyle(path string) (css string, userStyle bool, err error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			return string(data), true, nil
		}
		if !os.IsNotExist(err) {
			return "", false, err
		}
	}
	return DefaultCSS(), false, nil
}
