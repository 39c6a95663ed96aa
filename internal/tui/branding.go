package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/voizylabs/voizy/internal/config"
)

const AppName = "voizy"

var LogoLines = []string{
	"▄     ▄ ▄████▄  ▄▄▄▄ ▄▄▄▄▄▄ ▄    ▄",
	" █   █ ██    ██   ██     ▄▀  █  █ ",
	"  █ █  ██    ██   ██   ▄▀     ██  ",
	"   █    ▀████▀  ▄▄██▄▄ █▄▄▄▄  ██  ",
}

const CompactLogo = `voizy ›`

// Brand colors, teal-forward to match the waveform theme.
var (
	PrimaryColor = lipgloss.Color("#4ECDC4")
	AccentColor  = lipgloss.Color("#95E1D3")
	TextColor    = lipgloss.Color("#EAEAEA")
	MutedColor   = lipgloss.Color("#94A3B8")
	PlayingColor = lipgloss.Color("#FFE66D")
	ErrorColor   = lipgloss.Color("#F87171")
	SuccessColor = lipgloss.Color("#10B981")
	SurfaceColor = lipgloss.Color("#16213E")
)

var (
	LogoStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	TitleStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Background(SurfaceColor).
			Bold(true).
			Padding(0, 2)

	PlayingItemStyle = lipgloss.NewStyle().
				Foreground(PlayingColor).
				Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)

	TimeStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Faint(true)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Padding(0, 1)

	ErrorMessageStyle = lipgloss.NewStyle().
				Foreground(ErrorColor).
				Bold(true)

	SeparatorStyle = lipgloss.NewStyle().
			Foreground(MutedColor)
)

// palette is the per-app color set, seeded from the brand colors and
// overridden by [ui.colors] in the config file.
type palette struct {
	primary lipgloss.Color
	accent  lipgloss.Color
	muted   lipgloss.Color
	err     lipgloss.Color
}

func paletteFromConfig(cfg *config.Config) palette {
	p := palette{
		primary: PrimaryColor,
		accent:  AccentColor,
		muted:   MutedColor,
		err:     ErrorColor,
	}
	if cfg == nil {
		return p
	}
	if c := cfg.UI.Colors.Primary; c != "" {
		p.primary = lipgloss.Color(c)
	}
	if c := cfg.UI.Colors.Accent; c != "" {
		p.accent = lipgloss.Color(c)
	}
	if c := cfg.UI.Colors.Muted; c != "" {
		p.muted = lipgloss.Color(c)
	}
	if c := cfg.UI.Colors.Error; c != "" {
		p.err = lipgloss.Color(c)
	}
	return p
}

func GetWelcomeMessage() string {
	var coloredLines []string
	for _, line := range LogoLines {
		coloredLines = append(coloredLines, LogoStyle.Render(line))
	}

	logo := lipgloss.JoinVertical(lipgloss.Center, coloredLines...)

	return lipgloss.JoinVertical(
		lipgloss.Center,
		logo,
		"",
		HelpStyle.Render("Your library is empty. Run `voizy import --curated` to seed it."),
	)
}
