// Package tui is the terminal front end: one searchable, endlessly
// scrolling view of the library with inline playback.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/voizylabs/voizy/internal/config"
	"github.com/voizylabs/voizy/internal/engine"
	"github.com/voizylabs/voizy/internal/library"
	"github.com/voizylabs/voizy/internal/paging"
	"github.com/voizylabs/voizy/internal/playback"
)

// loadMoreMargin is how close to the bottom the cursor may get before the
// next page is requested.
const loadMoreMargin = 5

type View int

const (
	ViewBrowse View = iota
	ViewDeleteConfirm
)

type App struct {
	colors palette
	engine *engine.Engine

	searchInput textinput.Model
	voizyList   list.Model
	view        View

	listing        *paging.Listing
	items          []*library.Voizy
	netState       paging.NetworkState
	initialLoading bool

	playingID     string
	pendingPlayID string
	deleteTarget  *library.Voizy

	listingCh      <-chan *paging.Listing
	listingCancel  func()
	itemsCh        <-chan []*library.Voizy
	itemsCancel    func()
	stateCh        <-chan paging.NetworkState
	stateCancel    func()
	playbackCh     <-chan playback.Info
	playbackCancel func()

	width  int
	height int
	err    error
}

func NewApp(eng *engine.Engine, cfg *config.Config) *App {
	colors := paletteFromConfig(cfg)

	si := textinput.New()
	si.Placeholder = "Search your voizys..."
	si.Prompt = CompactLogo + " "
	si.Focus()

	vl := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	vl.Title = "› library"
	vl.Styles.Title = lipgloss.NewStyle().
		Foreground(colors.primary).
		Bold(true)
	vl.SetShowStatusBar(false)
	vl.SetFilteringEnabled(false)
	vl.SetShowHelp(false)

	app := &App{
		colors:      colors,
		engine:      eng,
		searchInput: si,
		voizyList:   vl,
		view:        ViewBrowse,
	}

	app.listingCh, app.listingCancel = eng.Listing().Subscribe()
	app.playbackCh, app.playbackCancel = eng.PlaybackEvents()

	return app
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.waitListing(),
		a.waitPlayback(),
		textinput.Blink,
		tea.EnterAltScreen,
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.voizyList.SetSize(msg.Width, msg.Height-6)

		inputWidth := msg.Width - 8
		if inputWidth < 20 {
			inputWidth = msg.Width
		}
		a.searchInput.Width = inputWidth

	case tea.KeyMsg:
		return a.handleKey(msg)

	case listingChangedMsg:
		a.adoptListing(msg.listing)
		cmds = append(cmds, a.waitListing(), a.waitItems(), a.waitState())

	case listingItemsMsg:
		if msg.listing == a.listing {
			a.items = msg.items
			a.syncList()
			cmds = append(cmds, a.waitItems())
		}

	case listingStateMsg:
		if msg.listing == a.listing {
			a.netState = msg.state
			if msg.state.Terminal() {
				a.initialLoading = false
			}
			if msg.state.Status == paging.StatusFailed {
				a.err = msg.state.Err
			}
			cmds = append(cmds, a.waitState())
		}

	case playbackEventMsg:
		// Any transition settles the row that was waiting on the player.
		a.pendingPlayID = ""
		a.playingID = a.engine.PlayingID()
		a.syncList()
		cmds = append(cmds, a.waitPlayback())

	case playbackErrMsg:
		a.pendingPlayID = ""
		a.err = msg.err
		a.syncList()

	case streamClosedMsg:
	}

	if a.view == ViewBrowse {
		prev := a.searchInput.Value()

		newInput, cmd := a.searchInput.Update(msg)
		a.searchInput = newInput
		cmds = append(cmds, cmd)

		if v := a.searchInput.Value(); v != prev {
			a.err = nil
			a.engine.SetSearchKeyword(v)
		}

		newList, listCmd := a.voizyList.Update(msg)
		a.voizyList = newList
		cmds = append(cmds, listCmd)

		a.maybeLoadMore()
	}

	return a, tea.Batch(cmds...)
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.view == ViewDeleteConfirm {
		switch msg.String() {
		case "enter":
			if a.deleteTarget != nil {
				if err := a.engine.DeleteVoizy(a.deleteTarget); err != nil {
					a.err = err
				}
			}
			a.deleteTarget = nil
			a.view = ViewBrowse
		case "esc", "q":
			a.deleteTarget = nil
			a.view = ViewBrowse
		}
		return a, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit

	case "esc":
		if a.searchInput.Value() == "" {
			return a, tea.Quit
		}
		a.searchInput.SetValue("")
		a.err = nil
		a.engine.SetSearchKeyword("")
		return a, nil

	case "enter":
		return a, a.toggleSelected()

	case "ctrl+d":
		if item, ok := a.selectedVoizy(); ok {
			a.deleteTarget = item
			a.view = ViewDeleteConfirm
		}
		return a, nil

	case "ctrl+s":
		a.engine.StopPlayback()
		return a, nil

	case "ctrl+r":
		if a.listing != nil && a.netState.Status == paging.StatusFailed {
			a.err = nil
			a.listing.LoadMore()
		}
		return a, nil
	}

	// Navigation keys drive the list; everything else is search text.
	switch msg.String() {
	case "up", "down", "pgup", "pgdown", "home", "end":
		newList, cmd := a.voizyList.Update(msg)
		a.voizyList = newList
		a.maybeLoadMore()
		return a, cmd
	}

	prev := a.searchInput.Value()
	newInput, cmd := a.searchInput.Update(msg)
	a.searchInput = newInput

	if v := a.searchInput.Value(); v != prev {
		a.err = nil
		a.engine.SetSearchKeyword(v)
	}

	return a, cmd
}

func (a *App) toggleSelected() tea.Cmd {
	item, ok := a.selectedVoizy()
	if !ok {
		return nil
	}

	a.pendingPlayID = item.ID
	a.err = nil
	a.syncList()

	eng := a.engine
	return func() tea.Msg {
		if _, err := eng.TogglePlay(item); err != nil {
			return playbackErrMsg{err: err}
		}
		return nil
	}
}

func (a *App) selectedVoizy() (*library.Voizy, bool) {
	sel, ok := a.voizyList.SelectedItem().(voizyItem)
	if !ok {
		return nil, false
	}
	return sel.voizy, true
}

// adoptListing swaps stream subscriptions over to the new listing.
func (a *App) adoptListing(l *paging.Listing) {
	if a.itemsCancel != nil {
		a.itemsCancel()
	}
	if a.stateCancel != nil {
		a.stateCancel()
	}

	a.listing = l
	a.items = l.Items()
	a.netState = paging.NetworkState{Status: paging.StatusLoading}
	a.initialLoading = true
	a.itemsCh, a.itemsCancel = l.ItemsStream().Subscribe()
	a.stateCh, a.stateCancel = l.NetworkState().Subscribe()
	a.syncList()
}

func (a *App) maybeLoadMore() {
	if a.listing == nil || len(a.items) == 0 {
		return
	}
	if a.voizyList.Index() >= len(a.items)-loadMoreMargin {
		a.listing.LoadMore()
	}
}

func (a *App) syncList() {
	items := make([]list.Item, len(a.items))
	for i, v := range a.items {
		items[i] = voizyItem{
			voizy:   v,
			playing: v.ID == a.playingID,
			pending: v.ID == a.pendingPlayID,
		}
	}
	a.voizyList.SetItems(items)
}

func (a *App) View() string {
	if a.view == ViewDeleteConfirm {
		return a.deleteConfirmView()
	}

	searchBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(a.colors.accent).
		Padding(0, 1).
		Width(a.width - 4).
		Render(a.searchInput.View())

	var body string
	switch {
	case a.listing == nil || a.initialLoading:
		body = a.centered(HelpStyle.Render("Loading your library..."))
	case len(a.items) == 0 && a.searchInput.Value() == "":
		body = a.centered(GetWelcomeMessage())
	case len(a.items) == 0:
		body = a.centered(HelpStyle.Render(
			fmt.Sprintf("No voizys match %q", a.searchInput.Value())))
	default:
		body = a.voizyList.View()
	}

	sepWidth := a.width - 2
	if sepWidth < 0 {
		sepWidth = 0
	}
	separator := lipgloss.NewStyle().
		Foreground(a.colors.muted).
		Render(strings.Repeat("─", sepWidth+1))

	return lipgloss.JoinVertical(lipgloss.Top, searchBox, body, separator, a.statusLine())
}

func (a *App) centered(content string) string {
	bodyHeight := a.height - 6
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return lipgloss.NewStyle().
		Width(a.width).
		Height(bodyHeight).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

func (a *App) deleteConfirmView() string {
	name := ""
	if a.deleteTarget != nil {
		name = a.deleteTarget.Name
	}

	return lipgloss.NewStyle().
		Width(a.width).
		Height(a.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(
			lipgloss.JoinVertical(
				lipgloss.Center,
				ErrorMessageStyle.Render("⚠ Delete Voizy"),
				"",
				lipgloss.NewStyle().Foreground(TextColor).Render("Delete this recording?"),
				"",
				PlayingItemStyle.Render(name),
				"",
				HelpStyle.Render("Enter: confirm • Esc: cancel"),
			),
		)
}

func (a *App) statusLine() string {
	if a.err != nil {
		errText := lipgloss.NewStyle().
			Foreground(a.colors.err).
			Bold(true).
			Render(fmt.Sprintf("✗ %v", a.err))
		return StatusBarStyle.Width(a.width).Render(
			errText + HelpStyle.Render("  ctrl+r: retry"))
	}

	var parts []string
	if a.netState.Status == paging.StatusLoading {
		parts = append(parts, "loading…")
	}
	if a.playingID != "" {
		parts = append(parts, "▶ playing • ctrl+s: stop")
	}
	parts = append(parts, "enter: play/pause • ctrl+d: delete • esc: quit")

	return StatusBarStyle.Width(a.width).Render(strings.Join(parts, " • "))
}

type voizyItem struct {
	voizy   *library.Voizy
	playing bool
	pending bool
}

func (i voizyItem) Title() string {
	switch {
	case i.pending:
		return PlayingItemStyle.Render("… " + i.voizy.Name)
	case i.playing:
		return PlayingItemStyle.Render("▶ " + i.voizy.Name)
	default:
		return i.voizy.Name
	}
}

func (i voizyItem) Description() string {
	desc := formatDuration(i.voizy.DurationMillis)
	if len(i.voizy.Tags) > 0 {
		desc += " • " + strings.Join(i.voizy.Tags, ", ")
	}
	if !i.voizy.CreatedAt.IsZero() {
		desc += TimeStyle.Render(" • " + i.voizy.CreatedAt.Format("Jan 2, 15:04"))
	}
	return lipgloss.NewStyle().Foreground(MutedColor).Render(desc)
}

func (i voizyItem) FilterValue() string { return i.voizy.Name }

func formatDuration(millis int64) string {
	if millis <= 0 {
		return "--:--"
	}
	d := time.Duration(millis) * time.Millisecond
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", mins, secs)
}

// Close releases the stream subscriptions; the engine itself is owned by
// the caller.
func (a *App) Close() {
	if a.listingCancel != nil {
		a.listingCancel()
	}
	if a.itemsCancel != nil {
		a.itemsCancel()
	}
	if a.stateCancel != nil {
		a.stateCancel()
	}
	if a.playbackCancel != nil {
		a.playbackCancel()
	}
}
