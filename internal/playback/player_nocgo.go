//go:build linux && !cgo

package playback

import (
	"errors"
	"time"
)

// AudioAvailable indicates whether this build can produce sound. Speaker
// output needs cgo for the native sound libraries on linux.
const AudioAvailable = false

var errNoAudio = errors.New("audio playback not available in this build")

// BeepPlayer is a no-op stand-in for builds without audio support.
type BeepPlayer struct{}

func NewBeepPlayer(time.Duration) *BeepPlayer { return &BeepPlayer{} }

func (p *BeepPlayer) Play(string, func()) (int64, error) { return 0, errNoAudio }

func (p *BeepPlayer) Stop() error { return nil }
