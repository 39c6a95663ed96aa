package playback

import (
	"errors"
	"fmt"
	"sync"

	"github.com/voizylabs/voizy/internal/analytics"
	"github.com/voizylabs/voizy/internal/debuglog"
	"github.com/voizylabs/voizy/internal/library"
	"github.com/voizylabs/voizy/internal/stream"
)

// ErrShutDown is returned by TogglePlay after Shutdown.
var ErrShutDown = errors.New("playback coordinator is shut down")

// Coordinator is a single-flight state machine over "which item is
// playing". Toggle requests are serialized under one mutex, so two rapid
// toggles on different rows are processed in arrival order and can never
// both reach the playing state.
type Coordinator struct {
	player Player
	sink   analytics.Sink

	mu        sync.Mutex
	closed    bool
	playingID string
	// playGen guards against finish callbacks from replaced sessions,
	// the same way a superseded page fetch is discarded.
	playGen uint64

	events *stream.Broadcaster[Info]
}

func NewCoordinator(player Player, sink analytics.Sink) *Coordinator {
	if sink == nil {
		sink = analytics.Nop{}
	}
	return &Coordinator{
		player: player,
		sink:   sink,
		events: stream.NewBroadcaster[Info](),
	}
}

// TogglePlay handles a toggle request for item:
//
//	idle            -> start item, emit START
//	playing item    -> stop, emit STOP
//	playing another -> stop it, start item, emit SWITCH
//
// The returned Info is also broadcast on Events.
func (c *Coordinator) TogglePlay(item *library.Voizy) (Info, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return Info{}, ErrShutDown
	}

	switch {
	case c.playingID == "":
		return c.startLocked(item, EventStart)

	case c.playingID == item.ID:
		c.playGen++
		stopErr := c.player.Stop()
		c.playingID = ""
		info := Info{ItemID: item.ID, Event: EventStop}
		c.events.Publish(info)
		if stopErr != nil {
			return info, fmt.Errorf("stopping playback of %q: %w", item.Name, stopErr)
		}
		return info, nil

	default:
		c.playGen++
		if err := c.player.Stop(); err != nil {
			debuglog.Warnf("stopping %s before switch: %v", c.playingID, err)
		}
		c.playingID = ""
		return c.startLocked(item, EventSwitch)
	}
}

// startLocked begins playback of item and emits ev. On failure the
// coordinator returns to idle and the failure surfaces as a STOP event plus
// an error.
func (c *Coordinator) startLocked(item *library.Voizy, ev Event) (Info, error) {
	c.playGen++
	gen := c.playGen

	duration, err := c.player.Play(item.PlaybackURL, func() { c.onFinished(gen) })
	if err != nil {
		c.playingID = ""
		info := Info{ItemID: item.ID, Event: EventStop}
		c.events.Publish(info)
		return info, fmt.Errorf("starting playback of %q: %w", item.Name, err)
	}

	c.playingID = item.ID
	info := Info{ItemID: item.ID, Event: ev, DurationMillis: duration}
	c.events.Publish(info)

	go func(id, name string) {
		defer func() {
			if r := recover(); r != nil {
				debuglog.Errorf("analytics sink panicked: %v", r)
			}
		}()
		c.sink.LogPlay(id, name)
	}(item.ID, item.Name)

	return info, nil
}

// onFinished handles natural end-of-track. Stale callbacks from sessions
// that were already replaced or stopped are ignored.
func (c *Coordinator) onFinished(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.playGen || c.playingID == "" {
		return
	}
	id := c.playingID
	c.playingID = ""
	c.events.Publish(Info{ItemID: id, Event: EventStop})
}

// PlayingID returns the id of the item currently playing, or "".
func (c *Coordinator) PlayingID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playingID
}

// Events subscribes to the broadcast transition stream.
func (c *Coordinator) Events() (<-chan Info, func()) {
	return c.events.Subscribe()
}

// StopPlayback explicitly stops the current session, emitting STOP if
// something was playing.
func (c *Coordinator) StopPlayback() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.playingID == "" {
		return
	}
	c.playGen++
	if err := c.player.Stop(); err != nil {
		debuglog.Warnf("stopping playback: %v", err)
	}
	id := c.playingID
	c.playingID = ""
	c.events.Publish(Info{ItemID: id, Event: EventStop})
}

// Shutdown unconditionally stops playback and closes the event stream.
// Terminal cleanup: no transition event is emitted.
func (c *Coordinator) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.playGen++
	c.playingID = ""
	if err := c.player.Stop(); err != nil {
		debuglog.Warnf("stopping playback on shutdown: %v", err)
	}
	c.events.Close()
}
