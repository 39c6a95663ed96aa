// Package save runs the background pipeline for newly recorded voizys:
// duration tagging, upload, then metadata commit.
package save

import (
	"sync"

	"github.com/voizylabs/voizy/internal/debuglog"
	"github.com/voizylabs/voizy/internal/library"
	"github.com/voizylabs/voizy/internal/remote"
	"github.com/voizylabs/voizy/internal/stream"
)

// DurationProber reports a local audio file's duration in milliseconds.
// Satisfied by localfile.Manager.
type DurationProber interface {
	ComputeDuration(path string) (int64, error)
}

// Queue serializes saves through a single worker: one item moves through
// duration probing, the last-saved signal, upload and metadata commit
// before the next item starts. A stage failure abandons that item only;
// the worker moves on.
type Queue struct {
	prober     DurationProber
	storage    remote.ObjectStorage
	collection library.Saver

	lastSaved *stream.Value[*library.Voizy]
	pending   chan *library.Voizy
	done      chan struct{}
	wg        sync.WaitGroup
	once      sync.Once
}

func NewQueue(prober DurationProber, storage remote.ObjectStorage, collection library.Saver) *Queue {
	q := &Queue{
		prober:     prober,
		storage:    storage,
		collection: collection,
		lastSaved:  stream.NewValue[*library.Voizy](),
		pending:    make(chan *library.Voizy, 64),
		done:       make(chan struct{}),
	}
	q.wg.Add(1)
	go q.worker()
	return q
}

// Enqueue queues an item for saving without blocking the caller. If the
// queue is saturated the item is dropped and logged; recording more than
// the buffer holds before any upload finishes is not a supported workload.
func (q *Queue) Enqueue(item *library.Voizy) {
	select {
	case q.pending <- item:
	case <-q.done:
	default:
		debuglog.Errorf("save queue full, dropping item %s", item.ID)
	}
}

// LastSaved is the stream of the most recent item queued past the duration
// stage. The item may still be uploading when observed.
func (q *Queue) LastSaved() *stream.Value[*library.Voizy] { return q.lastSaved }

// Close stops the worker after the in-flight item finishes.
func (q *Queue) Close() {
	q.once.Do(func() {
		close(q.done)
		q.wg.Wait()
		q.lastSaved.Close()
	})
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for {
		select {
		case item := <-q.pending:
			q.process(item)
		case <-q.done:
			return
		}
	}
}

func (q *Queue) process(item *library.Voizy) {
	log := debuglog.WithFields(map[string]any{"item": item.ID})

	duration, err := q.prober.ComputeDuration(item.LocalPath)
	if err != nil {
		log.Errorf("probing duration: %v", err)
		return
	}
	item.SetDuration(duration)

	q.lastSaved.Set(item)

	url, remotePath, err := q.storage.Upload(item.LocalPath)
	if err != nil {
		log.Errorf("uploading: %v", err)
		return
	}
	item.PlaybackURL = url
	item.RemotePath = remotePath

	if err := q.collection.SaveItem(item); err != nil {
		log.Errorf("committing metadata: %v", err)
		return
	}

	log.Infof("saved voizy %q", item.Name)
}
