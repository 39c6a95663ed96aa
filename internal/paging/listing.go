package paging

import (
	"github.com/voizylabs/voizy/internal/library"
	"github.com/voizylabs/voizy/internal/stream"
)

// Listing is the public result of one search: a lazily growing item
// sequence plus the two state streams of its source. A listing is created
// per keyword and superseded, never mutated, when the next keyword arrives.
type Listing struct {
	source *Source
}

func newListing(source *Source) *Listing {
	return &Listing{source: source}
}

func (l *Listing) Keyword() string { return l.source.Keyword() }

// Items returns a snapshot of the loaded sequence.
func (l *Listing) Items() []*library.Voizy { return l.source.Items() }

// ItemsStream emits a fresh snapshot after every successfully loaded page.
func (l *Listing) ItemsStream() *stream.Value[[]*library.Voizy] {
	return l.source.ItemsStream()
}

// NetworkState tracks the most recent page fetch.
func (l *Listing) NetworkState() *stream.Value[NetworkState] {
	return l.source.NetworkState()
}

// InitialLoading tracks only the first page fetch; it freezes once that
// fetch turns terminal and exists to drive first-load spinner and
// "no results" decisions.
func (l *Listing) InitialLoading() *stream.Value[NetworkState] {
	return l.source.InitialLoading()
}

// LoadMore requests the next page (or retries a failed one).
func (l *Listing) LoadMore() { l.source.LoadMore() }

// Empty reports the "no results" condition: the initial fetch finished and
// nothing was loaded.
func (l *Listing) Empty() bool {
	init, ok := l.source.InitialLoading().Get()
	return ok && init.Terminal() && len(l.source.Items()) == 0
}
