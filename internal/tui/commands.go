package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/voizylabs/voizy/internal/library"
	"github.com/voizylabs/voizy/internal/paging"
	"github.com/voizylabs/voizy/internal/playback"
)

type listingChangedMsg struct {
	listing *paging.Listing
}

// listingItemsMsg and listingStateMsg carry their listing so updates from
// a superseded listing can be discarded.
type listingItemsMsg struct {
	listing *paging.Listing
	items   []*library.Voizy
}

type listingStateMsg struct {
	listing *paging.Listing
	state   paging.NetworkState
}

type playbackEventMsg struct {
	info playback.Info
}

type playbackErrMsg struct {
	err error
}

type streamClosedMsg struct{}

func (a *App) waitListing() tea.Cmd {
	ch := a.listingCh
	return func() tea.Msg {
		l, ok := <-ch
		if !ok {
			return streamClosedMsg{}
		}
		return listingChangedMsg{listing: l}
	}
}

func (a *App) waitItems() tea.Cmd {
	listing, ch := a.listing, a.itemsCh
	return func() tea.Msg {
		items, ok := <-ch
		if !ok {
			return streamClosedMsg{}
		}
		return listingItemsMsg{listing: listing, items: items}
	}
}

func (a *App) waitState() tea.Cmd {
	listing, ch := a.listing, a.stateCh
	return func() tea.Msg {
		state, ok := <-ch
		if !ok {
			return streamClosedMsg{}
		}
		return listingStateMsg{listing: listing, state: state}
	}
}

func (a *App) waitPlayback() tea.Cmd {
	ch := a.playbackCh
	return func() tea.Msg {
		info, ok := <-ch
		if !ok {
			return streamClosedMsg{}
		}
		return playbackEventMsg{info: info}
	}
}
