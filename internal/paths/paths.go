package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory naming.
	toolName = "kiln"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Default output directory for exported images.
//
//	Linux:   ~/.local/share/kiln/images
//	macOS:   ~/Library/Application Support/kiln/images
func DefaultOutput() string {
	return filepath.Join(xdg.DataHome, toolName, "images")
}

// Directory for recipe and parameter files the user keeps around.
//
//	Linux:   ~/.config/kiln
//	macOS:   ~/Library/Application Support/kiln
func Config() string {
	return filepath.Join(xdg.ConfigHome, toolName)
}
