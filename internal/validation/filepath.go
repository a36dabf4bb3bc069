// Package validation checks user supplied paths before they reach the
// filesystem.
package validation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrEmptyPath   = errors.New("path cannot be empty")
	ErrUnsafePath  = errors.New("unsafe path")
	ErrOutsideBase = errors.New("path not within allowed directories")
)

// FilePathValidator validates and normalizes file paths.
type FilePathValidator struct {
	// AllowedBaseDirs restricts paths to these directories. Empty allows all.
	AllowedBaseDirs    []string
	AllowHomeExpansion bool
	MaxPathLength      int
}

// NewFilePathValidator limits paths to the mifind data and config
// directories and the temp directory.
func NewFilePathValidator() *FilePathValidator {
	homeDir, _ := os.UserHomeDir()
	return &FilePathValidator{
		AllowedBaseDirs: []string{
			filepath.Join(homeDir, ".mifind"),
			filepath.Join(homeDir, ".config", "mifind"),
			os.TempDir(),
		},
		AllowHomeExpansion: true,
		MaxPathLength:      4096,
	}
}

// NewPermissiveFilePathValidator accepts any directory. Index roots and
// user chosen files go through this one.
func NewPermissiveFilePathValidator() *FilePathValidator {
	return &FilePathValidator{
		AllowHomeExpansion: true,
		MaxPathLength:      4096,
	}
}

// ValidateAndSanitize returns the cleaned absolute form of path.
func (v *FilePathValidator) ValidateAndSanitize(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}
	if len(path) > v.MaxPathLength {
		return "", fmt.Errorf("%w: longer than %d characters", ErrUnsafePath, v.MaxPathLength)
	}
	if err := validateCharacters(path); err != nil {
		return "", err
	}
	if hasTraversal(path) {
		return "", fmt.Errorf("%w: directory traversal", ErrUnsafePath)
	}

	p, err := v.expand(path)
	if err != nil {
		return "", err
	}
	if err := v.validateBaseDirs(p); err != nil {
		return "", err
	}
	return p, nil
}

func validateCharacters(path string) error {
	for _, r := range path {
		if r == 0 {
			return fmt.Errorf("%w: null byte", ErrUnsafePath)
		}
		if r < 32 && r != '\t' {
			return fmt.Errorf("%w: control character", ErrUnsafePath)
		}
	}
	return nil
}

func hasTraversal(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return true
		}
	}
	return false
}

func (v *FilePathValidator) expand(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if !v.AllowHomeExpansion {
			return "", fmt.Errorf("%w: tilde expansion not allowed", ErrUnsafePath)
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		path = filepath.Join(homeDir, strings.TrimPrefix(path[1:], "/"))
	} else if strings.HasPrefix(path, "~") {
		return "", fmt.Errorf("%w: unsupported tilde form", ErrUnsafePath)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot make path absolute: %w", err)
	}
	return filepath.Clean(abs), nil
}

func (v *FilePathValidator) validateBaseDirs(path string) error {
	if len(v.AllowedBaseDirs) == 0 {
		return nil
	}
	for _, base := range v.AllowedBaseDirs {
		absBase, err := filepath.Abs(base)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(absBase, path)
		if err != nil {
			continue
		}
		if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrOutsideBase, path)
}

// ValidateDirectory validates path as a directory, creating it on request.
func (v *FilePathValidator) ValidateDirectory(path string, create bool) (string, error) {
	p, err := v.ValidateAndSanitize(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(p)
	switch {
	case os.IsNotExist(err):
		if create {
			if mkErr := os.MkdirAll(p, 0o755); mkErr != nil {
				return "", fmt.Errorf("failed to create directory: %w", mkErr)
			}
		}
		return p, nil
	case err != nil:
		return "", fmt.Errorf("checking directory: %w", err)
	case !info.IsDir():
		return "", fmt.Errorf("path exists but is not a directory: %s", p)
	}
	return p, nil
}

// ValidateFile validates path as a file location. The file need not exist.
func (v *FilePathValidator) ValidateFile(path string) (string, error) {
	p, err := v.ValidateAndSanitize(path)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(p); err == nil && info.IsDir() {
		return "", fmt.Errorf("path is a directory, not a file: %s", p)
	}
	return p, nil
}

// IsPathSafe is a quick check without normalization.
func IsPathSafe(path string) bool {
	return path != "" && len(path) <= 4096 && validateCharacters(path) == nil && !hasTraversal(path)
}
