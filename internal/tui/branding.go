package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/mifind/internal/config"
	"github.com/pders01/mifind/internal/finder"
)

const AppName = finder.AppName

// ASCII art logo lines for mifind
var LogoLines = []string{
	"▄▄▄▄▄▄▄  ▄  ▄▄▄▄  ▄  ▄▄   ▄ ▄▄▄▄▄ ",
	"██ ██ ██ ██ ██▄▄  ██ ███▄ ██ ██  ▀█",
	"██ ██ ██ ██ ██▀▀  ██ ██ ▀███ ██   █",
	"██    ██ ██ ██    ██ ██   ██ ██▄▄█▀",
}

const CompactLogo = `mifind ›`

// Banner gradient colors
var BannerColors = []lipgloss.Color{
	lipgloss.Color("#FF6B6B"),
	lipgloss.Color("#FFA86B"),
	lipgloss.Color("#95E1D3"),
	lipgloss.Color("#4ECDC4"),
}

var (
	PrimaryColor   = lipgloss.Color("#FF6B6B")
	SecondaryColor = lipgloss.Color("#4ECDC4")
	AccentColor    = lipgloss.Color("#95E1D3")
	HighlightColor = lipgloss.Color("#FACC15")

	BackgroundColor = lipgloss.Color("#1A1A2E")
	TextColor       = lipgloss.Color("#EAEAEA")
	MutedColor      = lipgloss.Color("#94A3B8")

	ErrorColor   = lipgloss.Color("#F87171")
	SuccessColor = lipgloss.Color("#4ADE80")
)

// Styled components. ApplyTheme rebuilds them from the configured colors.
var (
	LogoStyle          lipgloss.Style
	HeaderStyle        lipgloss.Style
	ColumnHeaderStyle  lipgloss.Style
	TextStyle          lipgloss.Style
	MutedStyle         lipgloss.Style
	MatchStyle         lipgloss.Style
	CursorStyle        lipgloss.Style
	SelectedTextStyle  lipgloss.Style
	ModeOnStyle        lipgloss.Style
	ModeOffStyle       lipgloss.Style
	HelpStyle          lipgloss.Style
	StatusBarStyle     lipgloss.Style
	StatusInfoStyle    lipgloss.Style
	StatusSuccessStyle lipgloss.Style
	StatusWarnStyle    lipgloss.Style
	StatusErrorStyle   lipgloss.Style
	SeparatorStyle     lipgloss.Style
)

func init() {
	buildStyles()
}

// ApplyTheme replaces the palette with non-empty configured colors.
func ApplyTheme(c config.UIColors) {
	set := func(dst *lipgloss.Color, v string) {
		if v != "" {
			*dst = lipgloss.Color(v)
		}
	}
	set(&PrimaryColor, c.Primary)
	set(&SecondaryColor, c.Secondary)
	set(&AccentColor, c.Accent)
	set(&HighlightColor, c.Highlight)
	set(&TextColor, c.Text)
	set(&MutedColor, c.Muted)
	set(&ErrorColor, c.Error)
	set(&SuccessColor, c.Success)
	buildStyles()
}

func buildStyles() {
	LogoStyle = lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Bold(true)

	HeaderStyle = lipgloss.NewStyle().
		Foreground(SecondaryColor).
		Bold(true)

	ColumnHeaderStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Underline(true)

	TextStyle = lipgloss.NewStyle().
		Foreground(TextColor)

	MutedStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	MatchStyle = lipgloss.NewStyle().
		Foreground(HighlightColor).
		Bold(true)

	CursorStyle = lipgloss.NewStyle().
		Foreground(AccentColor).
		Bold(true)

	SelectedTextStyle = lipgloss.NewStyle().
		Foreground(AccentColor)

	ModeOnStyle = lipgloss.NewStyle().
		Foreground(BackgroundColor).
		Background(AccentColor).
		Bold(true).
		Padding(0, 1)

	ModeOffStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Padding(0, 1)

	HelpStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Italic(true)

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Padding(0, 1)

	StatusInfoStyle = lipgloss.NewStyle().
		Foreground(TextColor)

	StatusSuccessStyle = lipgloss.NewStyle().
		Foreground(SuccessColor)

	StatusWarnStyle = lipgloss.NewStyle().
		Foreground(HighlightColor)

	StatusErrorStyle = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)

	SeparatorStyle = lipgloss.NewStyle().
		Foreground(MutedColor)
}

func statusStyle(kind StatusKind) lipgloss.Style {
	switch kind {
	case StatusSuccess:
		return StatusSuccessStyle
	case StatusWarn:
		return StatusWarnStyle
	case StatusError:
		return StatusErrorStyle
	default:
		return StatusInfoStyle
	}
}

func GetWelcomeMessage(indexed int) string {
	msg := "Type to search file names"
	if indexed >= 0 {
		msg = MsgIndexed(indexed) + " • " + msg
	}
	return GetCompactBanner(msg)
}

func GetCompactBanner(message string) string {
	var coloredLines []string
	for _, line := range LogoLines {
		coloredLines = append(coloredLines, LogoStyle.Render(line))
	}

	logo := lipgloss.JoinVertical(lipgloss.Center, coloredLines...)

	return lipgloss.JoinVertical(
		lipgloss.Center,
		logo,
		"",
		HelpStyle.Render(message),
	)
}

// Banner is the boxed logo printed by the version command.
func Banner(version string) string {
	lines := make([]string, len(LogoLines)+1)
	copy(lines, LogoLines)

	tagline := "    Incremental file name search"
	if version != "" && version != "dev" {
		if version[0] != 'v' && version[0] != 'V' {
			version = "v" + version
		}
		tagline = fmt.Sprintf("%s %s", tagline, version)
	}
	lines = append(lines, tagline)

	var coloredLines []string
	for i, line := range lines {
		if line == "" {
			coloredLines = append(coloredLines, line)
			continue
		}
		style := lipgloss.NewStyle().
			Foreground(BannerColors[i%len(BannerColors)]).
			Bold(i < len(LogoLines))
		coloredLines = append(coloredLines, style.Render(line))
	}

	borderChars := lipgloss.Border{
		Top:         "═",
		Bottom:      "═",
		Left:        "║",
		Right:       "║",
		TopLeft:     "╔",
		TopRight:    "╗",
		BottomLeft:  "╚",
		BottomRight: "╝",
	}

	box := lipgloss.NewStyle().
		Border(borderChars).
		BorderForeground(SecondaryColor).
		Padding(1, 3).
		MarginTop(1).
		Render(lipgloss.JoinVertical(lipgloss.Center, coloredLines...))

	return lipgloss.NewStyle().
		Width(70).
		Align(lipgloss.Center).
		Render(box)
}

// ShowBanner prints Banner to stdout.
func ShowBanner(version string) {
	fmt.Println(Banner(version))
}
