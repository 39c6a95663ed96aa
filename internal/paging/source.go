package paging

import (
	"context"
	"fmt"
	"sync"

	"github.com/voizylabs/voizy/internal/debuglog"
	"github.com/voizylabs/voizy/internal/library"
	"github.com/voizylabs/voizy/internal/stream"
)

const (
	// PageSize is the number of items requested per page.
	PageSize = 25
	// InitialLoadSize is the larger first-page request, cutting down on
	// first-paint latency.
	InitialLoadSize = 2 * PageSize
)

// Source drives paged fetches for a single keyword. At most one fetch is in
// flight at a time; completions re-check the generation counter under the
// source mutex, so results dispatched before an Invalidate can never reach
// the streams.
type Source struct {
	keyword string
	fetcher library.Fetcher

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	gen         uint64
	invalidated bool
	started     bool
	fetching    bool
	exhausted   bool
	initialDone bool
	nextSize    int
	cursor      string
	seen        map[string]bool
	items       []*library.Voizy

	itemsStream *stream.Value[[]*library.Voizy]
	netState    *stream.Value[NetworkState]
	initState   *stream.Value[NetworkState]
}

func newSource(keyword string, fetcher library.Fetcher, initialSize int) *Source {
	ctx, cancel := context.WithCancel(context.Background())
	return &Source{
		keyword:     keyword,
		fetcher:     fetcher,
		ctx:         ctx,
		cancel:      cancel,
		nextSize:    initialSize,
		seen:        make(map[string]bool),
		itemsStream: stream.NewValue[[]*library.Voizy](),
		netState:    stream.NewValue[NetworkState](),
		initState:   stream.NewValue[NetworkState](),
	}
}

func (s *Source) Keyword() string { return s.keyword }

// Items returns a snapshot of everything loaded so far.
func (s *Source) Items() []*library.Voizy {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*library.Voizy, len(s.items))
	copy(out, s.items)
	return out
}

// ItemsStream publishes a fresh snapshot after every successful page.
func (s *Source) ItemsStream() *stream.Value[[]*library.Voizy] { return s.itemsStream }

// NetworkState reflects the most recently issued page fetch.
func (s *Source) NetworkState() *stream.Value[NetworkState] { return s.netState }

// InitialLoading reflects only the very first page fetch; once it reaches a
// terminal state it never changes again.
func (s *Source) InitialLoading() *stream.Value[NetworkState] { return s.initState }

// LoadInitial issues the first page fetch. Subsequent calls are no-ops.
func (s *Source) LoadInitial() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	s.dispatch()
}

// LoadMore issues the next page fetch. After a failed page this re-issues
// the same cursor, so a retry never skips or duplicates data. No-op while a
// fetch is in flight or once the collection is exhausted.
func (s *Source) LoadMore() {
	s.mu.Lock()
	if !s.started {
		s.started = true
		s.mu.Unlock()
		s.dispatch()
		return
	}
	s.mu.Unlock()

	s.dispatch()
}

func (s *Source) dispatch() {
	s.mu.Lock()
	if s.invalidated || s.fetching || s.exhausted {
		s.mu.Unlock()
		return
	}
	s.fetching = true
	gen := s.gen
	cursor := s.cursor
	size := s.nextSize
	ctx := s.ctx

	s.netState.Set(Loading())
	if !s.initialDone {
		s.initState.Set(Loading())
	}
	s.mu.Unlock()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.complete(gen, nil, fmt.Errorf("page fetch panicked: %v", r))
			}
		}()
		page, err := s.fetcher.FetchPage(ctx, s.keyword, cursor, size)
		s.complete(gen, page, err)
	}()
}

func (s *Source) complete(gen uint64, page *library.Page, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		// Superseded while in flight; drop silently.
		debuglog.Debugf("discarding stale page result for keyword %q", s.keyword)
		return
	}
	s.fetching = false

	if err != nil {
		debuglog.WithFields(map[string]any{"keyword": s.keyword}).
			Warnf("page fetch failed: %v", err)
		s.netState.Set(Failed(err))
		if !s.initialDone {
			s.initialDone = true
			s.initState.Set(Failed(err))
		}
		return
	}

	for _, item := range page.Items {
		if s.seen[item.ID] {
			continue
		}
		s.seen[item.ID] = true
		s.items = append(s.items, item)
	}

	s.cursor = page.NextCursor
	s.nextSize = PageSize
	if page.NextCursor == "" {
		s.exhausted = true
	}

	snapshot := make([]*library.Voizy, len(s.items))
	copy(snapshot, s.items)
	s.itemsStream.Set(snapshot)

	s.netState.Set(Loaded())
	if !s.initialDone {
		s.initialDone = true
		s.initState.Set(Loaded())
	}
}

// Invalidate cancels the in-flight fetch (if any) and bumps the generation
// so any already-dispatched completion is discarded. The source issues no
// further fetches afterwards.
func (s *Source) Invalidate() {
	s.mu.Lock()
	s.invalidated = true
	s.gen++
	s.mu.Unlock()

	s.cancel()
}

// SourceFactory owns the current source. Creating a source for a new
// keyword invalidates the previous one first, so only the newest keyword
// can ever deliver results.
type SourceFactory struct {
	fetcher     library.Fetcher
	initialSize int

	mu      sync.Mutex
	current *Source
}

func NewSourceFactory(fetcher library.Fetcher) *SourceFactory {
	return &SourceFactory{fetcher: fetcher, initialSize: InitialLoadSize}
}

// Create invalidates the current source and returns a fresh one for keyword.
func (f *SourceFactory) Create(keyword string) *Source {
	f.mu.Lock()
	prev := f.current
	src := newSource(keyword, f.fetcher, f.initialSize)
	f.current = src
	f.mu.Unlock()

	if prev != nil {
		prev.Invalidate()
	}
	return src
}

// Invalidate tears down the current source without creating a new one.
func (f *SourceFactory) Invalidate() {
	f.mu.Lock()
	prev := f.current
	f.current = nil
	f.mu.Unlock()

	if prev != nil {
		prev.Invalidate()
	}
}
