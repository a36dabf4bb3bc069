package validation

import (
	"fmt"
	"os"
	"path/filepath"
)

// PathHandler resolves the locations mifind reads and writes.
type PathHandler struct {
	validator *FilePathValidator
	roots     *FilePathValidator
}

// NewSecurePathHandler keeps data files under the mifind directories.
func NewSecurePathHandler() *PathHandler {
	return &PathHandler{validator: NewFilePathValidator(), roots: NewPermissiveFilePathValidator()}
}

// NewPermissivePathHandler accepts data files anywhere.
func NewPermissivePathHandler() *PathHandler {
	p := NewPermissiveFilePathValidator()
	return &PathHandler{validator: p, roots: p}
}

func defaultUnder(userPath string, elem ...string) (string, error) {
	if userPath != "" {
		return userPath, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{homeDir}, elem...)...), nil
}

// DBPath validates the record store location.
func (ph *PathHandler) DBPath(userPath string) (string, error) {
	p, err := defaultUnder(userPath, ".mifind", "mifind.db")
	if err != nil {
		return "", err
	}
	return ph.validator.ValidateFile(p)
}

// ConfigPath validates the config file location.
func (ph *PathHandler) ConfigPath(userPath string) (string, error) {
	p, err := defaultUnder(userPath, ".config", "mifind", "config.toml")
	if err != nil {
		return "", err
	}
	return ph.validator.ValidateFile(p)
}

// IndexPath validates the bleve index location, which is a directory.
func (ph *PathHandler) IndexPath(userPath string) (string, error) {
	p, err := defaultUnder(userPath, ".mifind", "index.bleve")
	if err != nil {
		return "", err
	}
	return ph.validator.ValidateDirectory(p, false)
}

// Roots validates index roots. Each must be an existing directory.
func (ph *PathHandler) Roots(roots []string) ([]string, error) {
	out := make([]string, 0, len(roots))
	for _, r := range roots {
		p, err := ph.roots.ValidateAndSanitize(r)
		if err != nil {
			return nil, fmt.Errorf("index root %q: %w", r, err)
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("index root %q: %w", r, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("index root %q is not a directory", r)
		}
		out = append(out, p)
	}
	return out, nil
}

// EnsureDirectory creates a validated directory.
func (ph *PathHandler) EnsureDirectory(path string) (string, error) {
	return ph.validator.ValidateDirectory(path, true)
}
