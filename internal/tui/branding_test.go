package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/mifind/internal/config"
)

func TestBanner(t *testing.T) {
	out := Banner("1.0.0-test")

	if !strings.Contains(out, "Incremental file name search") {
		t.Errorf("Expected banner to contain the tagline, got: %s", out)
	}
	if !strings.Contains(out, "╔") || !strings.Contains(out, "╝") {
		t.Errorf("Expected banner to contain border characters, got: %s", out)
	}
	if !strings.Contains(out, "v1.0.0-test") {
		t.Errorf("Expected banner to contain version 'v1.0.0-test', got: %s", out)
	}

	if dev := Banner("dev"); strings.Contains(dev, "vdev") {
		t.Errorf("Expected dev builds to omit the version, got: %s", dev)
	}
}

func TestGetCompactBanner(t *testing.T) {
	message := "Test message"
	result := GetCompactBanner(message)

	if !strings.Contains(result, message) {
		t.Errorf("Expected compact banner to contain '%s', got: %s", message, result)
	}
	if !strings.Contains(result, LogoLines[1]) {
		t.Errorf("Expected compact banner to contain logo elements, got: %s", result)
	}
}

func TestGetWelcomeMessage(t *testing.T) {
	result := GetWelcomeMessage(1234)
	if !strings.Contains(result, "1234 files indexed") {
		t.Errorf("Expected welcome message to contain the file count, got: %s", result)
	}

	unknown := GetWelcomeMessage(-1)
	if strings.Contains(unknown, "indexed") {
		t.Errorf("Expected no count when unknown, got: %s", unknown)
	}
	if !strings.Contains(unknown, "Type to search") {
		t.Errorf("Expected welcome message to contain instructions, got: %s", unknown)
	}
}

func TestLogoConstants(t *testing.T) {
	if len(LogoLines) != 4 {
		t.Errorf("Expected 4 logo lines, got %d", len(LogoLines))
	}
	if len(BannerColors) == 0 {
		t.Error("Expected banner colors")
	}
}

func TestApplyTheme(t *testing.T) {
	saved := HighlightColor
	defer ApplyTheme(config.UIColors{Highlight: string(saved)})

	ApplyTheme(config.UIColors{Highlight: "#123456"})
	if HighlightColor != lipgloss.Color("#123456") {
		t.Errorf("HighlightColor = %v, want #123456", HighlightColor)
	}
	if MatchStyle.GetForeground() != lipgloss.Color("#123456") {
		t.Errorf("MatchStyle was not rebuilt")
	}

	before := PrimaryColor
	ApplyTheme(config.UIColors{})
	if PrimaryColor != before {
		t.Errorf("empty colors should keep the palette")
	}
}
