package paging

import (
	"strings"
	"sync"
	"time"

	"github.com/voizylabs/voizy/internal/analytics"
	"github.com/voizylabs/voizy/internal/debuglog"
	"github.com/voizylabs/voizy/internal/stream"
)

// DefaultDebounce is the quiet period applied to the raw keyword stream so
// rapid typing collapses into a single fetch cycle.
const DefaultDebounce = 500 * time.Millisecond

// Coordinator turns raw keyword changes into listings. Keywords are
// debounced, lower-cased and deduplicated against the previous one; each
// surviving keyword supersedes the current listing with a fresh one and the
// old source is invalidated before the new listing becomes visible.
type Coordinator struct {
	factory  *SourceFactory
	sink     analytics.Sink
	debounce time.Duration

	keywords chan string
	refresh  chan struct{}
	done     chan struct{}
	once     sync.Once

	listing *stream.Value[*Listing]
}

// NewCoordinator starts the coordinator loop. A zero debounce selects
// DefaultDebounce; a nil sink discards analytics.
func NewCoordinator(factory *SourceFactory, sink analytics.Sink, debounce time.Duration) *Coordinator {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if sink == nil {
		sink = analytics.Nop{}
	}

	c := &Coordinator{
		factory:  factory,
		sink:     sink,
		debounce: debounce,
		keywords: make(chan string, 1),
		refresh:  make(chan struct{}, 1),
		done:     make(chan struct{}),
		listing:  stream.NewValue[*Listing](),
	}
	go c.run()
	return c
}

// SetSearchKeyword feeds a raw keyword change into the debounce window.
// Never blocks; within a window only the latest keyword matters, so a
// pending one may be replaced.
func (c *Coordinator) SetSearchKeyword(text string) {
	for {
		select {
		case c.keywords <- text:
			return
		case <-c.done:
			return
		default:
		}
		// Evict the superseded pending keyword and try again.
		select {
		case <-c.keywords:
		default:
		}
	}
}

// Refresh republishes a fresh listing for the settled keyword, bypassing
// both the debounce window and duplicate suppression. Used after a local
// mutation (e.g. a delete) so the visible listing re-fetches. No-op before
// the first keyword settles.
func (c *Coordinator) Refresh() {
	select {
	case c.refresh <- struct{}{}:
	case <-c.done:
	default:
	}
}

// Listing is the stream of current listings; each emission supersedes the
// previous one.
func (c *Coordinator) Listing() *stream.Value[*Listing] { return c.listing }

// Current returns the active listing, or nil before the first keyword
// settles.
func (c *Coordinator) Current() *Listing {
	l, ok := c.listing.Get()
	if !ok {
		return nil
	}
	return l
}

// Close stops the loop and invalidates the active source. Playback of
// keyword changes after Close is a no-op.
func (c *Coordinator) Close() {
	c.once.Do(func() {
		close(c.done)
		c.factory.Invalidate()
		c.listing.Close()
	})
}

func (c *Coordinator) run() {
	timer := time.NewTimer(c.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	var (
		pending     string
		havePending bool
		last        string
		haveLast    bool
	)

	for {
		select {
		case kw := <-c.keywords:
			pending = kw
			havePending = true
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(c.debounce)

		case <-timer.C:
			if !havePending {
				continue
			}
			havePending = false

			kw := strings.ToLower(pending)
			if haveLast && kw == last {
				// Identical consecutive keyword, no new fetch cycle.
				continue
			}
			last, haveLast = kw, true
			c.publish(kw, true)

		case <-c.refresh:
			if !haveLast {
				continue
			}
			c.publish(last, false)

		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) publish(keyword string, logSearch bool) {
	if logSearch && keyword != "" {
		go func() {
			defer func() {
				if r := recover(); r != nil {
					debuglog.Errorf("analytics sink panicked: %v", r)
				}
			}()
			c.sink.LogSearch(keyword)
		}()
	}

	debuglog.Debugf("switching listing to keyword %q", keyword)

	src := c.factory.Create(keyword)
	l := newListing(src)
	src.LoadInitial()
	c.listing.Set(l)
}
