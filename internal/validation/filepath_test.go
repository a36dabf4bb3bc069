package validation

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewFilePathValidator(t *testing.T) {
	v := NewFilePathValidator()
	if !v.AllowHomeExpansion {
		t.Error("Expected AllowHomeExpansion to be true")
	}
	if v.MaxPathLength != 4096 {
		t.Errorf("Expected MaxPathLength to be 4096, got %d", v.MaxPathLength)
	}
	found := false
	for _, d := range v.AllowedBaseDirs {
		if strings.HasSuffix(d, ".mifind") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected ~/.mifind among allowed dirs, got %v", v.AllowedBaseDirs)
	}
}

func TestValidateAndSanitize(t *testing.T) {
	home, _ := os.UserHomeDir()
	tmp := t.TempDir()
	v := &FilePathValidator{AllowedBaseDirs: []string{tmp}, AllowHomeExpansion: true, MaxPathLength: 64 + len(tmp)}

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr error
	}{
		{"inside base", filepath.Join(tmp, "a.db"), filepath.Join(tmp, "a.db"), nil},
		{"cleaned", tmp + "/x//y/", filepath.Join(tmp, "x", "y"), nil},
		{"empty", "", "", ErrEmptyPath},
		{"traversal", tmp + "/../etc/passwd", "", ErrUnsafePath},
		{"null byte", tmp + "/a\x00b", "", ErrUnsafePath},
		{"control char", tmp + "/a\nb", "", ErrUnsafePath},
		{"outside base", "/etc/passwd", "", ErrOutsideBase},
		{"tilde user form", "~root/x", "", ErrUnsafePath},
		{"too long", tmp + "/" + strings.Repeat("a", 100), "", ErrUnsafePath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ValidateAndSanitize(tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	open := NewPermissiveFilePathValidator()
	got, err := open.ValidateAndSanitize("~/docs")
	if err != nil {
		t.Fatalf("home expansion failed: %v", err)
	}
	if got != filepath.Join(home, "docs") {
		t.Errorf("got %q, want %q", got, filepath.Join(home, "docs"))
	}

	noHome := &FilePathValidator{MaxPathLength: 4096}
	if _, err := noHome.ValidateAndSanitize("~/docs"); !errors.Is(err, ErrUnsafePath) {
		t.Errorf("expected tilde rejection, got %v", err)
	}
}

func TestValidateDirectory(t *testing.T) {
	v := NewPermissiveFilePathValidator()
	tmp := t.TempDir()

	dir := filepath.Join(tmp, "new", "dir")
	got, err := v.ValidateDirectory(dir, false)
	if err != nil || got != dir {
		t.Fatalf("ValidateDirectory(no create) = %q, %v", got, err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatal("directory should not have been created")
	}

	if _, err := v.ValidateDirectory(dir, true); err != nil {
		t.Fatalf("ValidateDirectory(create) error: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatal("directory should exist")
	}

	file := filepath.Join(tmp, "f.txt")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := v.ValidateDirectory(file, false); err == nil {
		t.Error("expected error for a file")
	}
	if _, err := v.ValidateFile(dir); err == nil {
		t.Error("expected error for a directory")
	}
	if got, err := v.ValidateFile(file); err != nil || got != file {
		t.Errorf("ValidateFile = %q, %v", got, err)
	}
}

func TestIsPathSafe(t *testing.T) {
	cases := map[string]bool{
		"/home/u/file.txt": true,
		"relative/ok":      true,
		"":                 false,
		"../up":            false,
		"a/../../b":        false,
		"bad\x00":          false,
		"..hidden":         true,
	}
	for path, want := range cases {
		if got := IsPathSafe(path); got != want {
			t.Errorf("IsPathSafe(%q) = %v, want %v", path, got, want)
		}
	}
}
