// Package analytics defines the fire-and-forget event sink the engine
// reports to. Implementations must never block the calling pipeline.
package analytics

import "github.com/voizylabs/voizy/internal/debuglog"

// Sink receives usage events. Calls are best-effort; failures are the
// implementation's problem, not the caller's.
type Sink interface {
	LogSearch(keyword string)
	LogPlay(itemID, name string)
}

// LogSink records events to the debug log.
type LogSink struct{}

func NewLogSink() *LogSink { return &LogSink{} }

func (s *LogSink) LogSearch(keyword string) {
	debuglog.WithFields(map[string]any{"keyword": keyword}).Infof("search")
}

func (s *LogSink) LogPlay(itemID, name string) {
	debuglog.WithFields(map[string]any{"item": itemID, "name": name}).Infof("play")
}

// Nop discards all events.
type Nop struct{}

func (Nop) LogSearch(string) {}

func (Nop) LogPlay(string, string) {}
