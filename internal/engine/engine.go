// Package engine wires the library, search, playback and save machinery
// into the single facade the UI talks to.
package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/voizylabs/voizy/internal/analytics"
	"github.com/voizylabs/voizy/internal/debuglog"
	"github.com/voizylabs/voizy/internal/library"
	"github.com/voizylabs/voizy/internal/localfile"
	"github.com/voizylabs/voizy/internal/paging"
	"github.com/voizylabs/voizy/internal/playback"
	"github.com/voizylabs/voizy/internal/remote"
	"github.com/voizylabs/voizy/internal/save"
	"github.com/voizylabs/voizy/internal/stream"
	"github.com/voizylabs/voizy/internal/validation"
)

// Options collects the engine's collaborators. Collection, Storage and
// Player are required; Files, Sink and Debounce have working defaults.
type Options struct {
	Collection library.Collection
	Storage    remote.ObjectStorage
	Player     playback.Player
	Files      *localfile.Manager
	Sink       analytics.Sink
	Debounce   time.Duration

	// Prober overrides duration probing; defaults to Files.
	Prober save.DurationProber
}

type Engine struct {
	collection library.Collection
	storage    remote.ObjectStorage
	files      *localfile.Manager

	search *paging.Coordinator
	player *playback.Coordinator
	saves  *save.Queue
}

func New(opts Options) (*Engine, error) {
	if opts.Collection == nil {
		return nil, fmt.Errorf("engine requires a collection")
	}
	if opts.Storage == nil {
		return nil, fmt.Errorf("engine requires object storage")
	}
	if opts.Player == nil {
		return nil, fmt.Errorf("engine requires a player")
	}

	files := opts.Files
	if files == nil {
		var err error
		if files, err = localfile.NewManager(""); err != nil {
			return nil, fmt.Errorf("creating file manager: %w", err)
		}
	}
	sink := opts.Sink
	if sink == nil {
		sink = analytics.Nop{}
	}

	prober := opts.Prober
	if prober == nil {
		prober = files
	}

	factory := paging.NewSourceFactory(opts.Collection)

	e := &Engine{
		collection: opts.Collection,
		storage:    opts.Storage,
		files:      files,
		search:     paging.NewCoordinator(factory, sink, opts.Debounce),
		player:     playback.NewCoordinator(opts.Player, sink),
		saves:      save.NewQueue(prober, opts.Storage, opts.Collection),
	}

	// An engine starts on the unfiltered library, not on a blank screen.
	e.search.SetSearchKeyword("")

	return e, nil
}

// SetSearchKeyword feeds a raw keyword change into the debounced search
// pipeline.
func (e *Engine) SetSearchKeyword(text string) { e.search.SetSearchKeyword(text) }

// Listing is the stream of listings; each emission supersedes the last.
func (e *Engine) Listing() *stream.Value[*paging.Listing] { return e.search.Listing() }

// CurrentListing returns the active listing, or nil before the first
// keyword settles.
func (e *Engine) CurrentListing() *paging.Listing { return e.search.Current() }

// TogglePlay runs the idle/playing/switch transition for item.
func (e *Engine) TogglePlay(item *library.Voizy) (playback.Info, error) {
	return e.player.TogglePlay(item)
}

// PlaybackEvents subscribes to playback transitions.
func (e *Engine) PlaybackEvents() (<-chan playback.Info, func()) { return e.player.Events() }

// PlayingID returns the id of the item currently playing, or "".
func (e *Engine) PlayingID() string { return e.player.PlayingID() }

// StopPlayback stops the current session, if any.
func (e *Engine) StopPlayback() { e.player.StopPlayback() }

// NewRecordingPath returns a fresh temp file path for a recording in
// progress.
func (e *Engine) NewRecordingPath() string { return e.files.TempFilePath() }

// EnqueueSave builds a voizy for a finished local recording and hands it
// to the save pipeline. The returned item is the queued instance; its
// duration, playback URL and remote path fill in as the pipeline runs.
func (e *Engine) EnqueueSave(name string, tags []string, localPath string) (*library.Voizy, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}

	item := &library.Voizy{
		ID:        uuid.NewString(),
		Name:      name,
		Tags:      tags,
		LocalPath: localPath,
		CreatedAt: time.Now(),
	}
	e.saves.Enqueue(item)
	return item, nil
}

// LastSaved is the stream of the most recently saved item.
func (e *Engine) LastSaved() *stream.Value[*library.Voizy] { return e.saves.LastSaved() }

// DownloadURL resolves a short-lived URL for an item's uploaded audio.
func (e *Engine) DownloadURL(item *library.Voizy) (string, error) {
	if item.RemotePath == "" {
		return "", fmt.Errorf("%q has no uploaded audio", item.Name)
	}
	return e.storage.GetDownloadURL(item.RemotePath)
}

// DownloadVoizy copies an item's uploaded audio to destPath.
func (e *Engine) DownloadVoizy(item *library.Voizy, destPath string) error {
	if item.RemotePath == "" {
		return fmt.Errorf("%q has no uploaded audio", item.Name)
	}
	if err := e.storage.Download(item.RemotePath, destPath); err != nil {
		return fmt.Errorf("downloading %q: %w", item.Name, err)
	}
	return nil
}

// DeleteVoizy removes an item's metadata. Playback of the item is stopped
// first so a deleted row cannot keep playing, and the current listing is
// refreshed so the row disappears without a keyword change.
func (e *Engine) DeleteVoizy(item *library.Voizy) error {
	if e.player.PlayingID() == item.ID {
		e.player.StopPlayback()
	}
	if err := e.collection.DeleteItem(item.ID); err != nil {
		return err
	}
	e.search.Refresh()
	return nil
}

// Close tears down the engine: search loop, playback, save worker, then
// the collection.
func (e *Engine) Close() error {
	e.search.Close()
	e.player.Shutdown()
	e.saves.Close()

	if err := e.collection.Close(); err != nil {
		return fmt.Errorf("closing collection: %w", err)
	}
	debuglog.Infof("engine closed")
	return nil
}
