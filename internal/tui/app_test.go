package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/voizylabs/voizy/internal/config"
	"github.com/voizylabs/voizy/internal/library"
)

func TestPaletteFromConfig(t *testing.T) {
	assert.Equal(t, AccentColor, paletteFromConfig(nil).accent)

	p := paletteFromConfig(&config.Config{})
	assert.Equal(t, PrimaryColor, p.primary)
	assert.Equal(t, MutedColor, p.muted)
	assert.Equal(t, ErrorColor, p.err)

	cfg := &config.Config{}
	cfg.UI.Colors.Accent = "#FF00FF"
	cfg.UI.Colors.Error = "#112233"
	p = paletteFromConfig(cfg)
	assert.Equal(t, lipgloss.Color("#FF00FF"), p.accent)
	assert.Equal(t, lipgloss.Color("#112233"), p.err)
	assert.Equal(t, PrimaryColor, p.primary, "unset colors keep brand defaults")
	assert.Equal(t, MutedColor, p.muted, "unset colors keep brand defaults")
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name   string
		millis int64
		want   string
	}{
		{"zero is placeholder", 0, "--:--"},
		{"negative is placeholder", -5, "--:--"},
		{"under a minute", 42_000, "0:42"},
		{"minutes and seconds", 185_000, "3:05"},
		{"over an hour keeps minutes", 3_600_000, "60:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDuration(tt.millis))
		})
	}
}

func TestVoizyItemTitle(t *testing.T) {
	v := &library.Voizy{ID: "a", Name: "morning take"}

	plain := voizyItem{voizy: v}
	assert.Equal(t, "morning take", plain.Title())

	playing := voizyItem{voizy: v, playing: true}
	assert.Contains(t, playing.Title(), "▶")
	assert.Contains(t, playing.Title(), "morning take")

	pending := voizyItem{voizy: v, pending: true}
	assert.Contains(t, pending.Title(), "…")
}

func TestVoizyItemDescription(t *testing.T) {
	v := &library.Voizy{
		ID:             "a",
		Name:           "morning take",
		Tags:           []string{"sketch", "piano"},
		DurationMillis: 65_000,
		CreatedAt:      time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC),
	}

	desc := voizyItem{voizy: v}.Description()
	assert.Contains(t, desc, "1:05")
	assert.Contains(t, desc, "sketch, piano")
	assert.Contains(t, desc, "Mar 9")
}

func TestVoizyItemFilterValue(t *testing.T) {
	v := &library.Voizy{ID: "a", Name: "field notes"}
	if got := (voizyItem{voizy: v}).FilterValue(); !strings.Contains(got, "field notes") {
		t.Errorf("unexpected filter value %q", got)
	}
}
