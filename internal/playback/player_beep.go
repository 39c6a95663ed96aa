//go:build (linux && cgo) || windows || darwin

package playback

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
)

// AudioAvailable indicates whether this build can produce sound.
const AudioAvailable = true

// BeepPlayer plays MP3 audio through the speaker. Tracks are fetched fully
// into memory before decoding; voizys are short recordings, not albums.
type BeepPlayer struct {
	client *http.Client

	mu          sync.Mutex
	initialized bool
	sampleRate  beep.SampleRate
	streamer    beep.StreamSeekCloser
	ctrl        *beep.Ctrl
}

func NewBeepPlayer(timeout time.Duration) *BeepPlayer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BeepPlayer{
		client:     &http.Client{Timeout: timeout},
		sampleRate: beep.SampleRate(44100),
	}
}

// Play fetches and starts url, replacing any current playback. onFinished
// runs on its own goroutine when the track ends by itself.
func (p *BeepPlayer) Play(url string, onFinished func()) (int64, error) {
	data, err := p.fetch(url)
	if err != nil {
		return 0, err
	}

	streamer, format, err := mp3.Decode(nopCloser{bytes.NewReader(data)})
	if err != nil {
		return 0, fmt.Errorf("decoding audio: %w", err)
	}
	durationMillis := format.SampleRate.D(streamer.Len()).Milliseconds()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	if !p.initialized {
		if err := speaker.Init(p.sampleRate, p.sampleRate.N(time.Second/10)); err != nil {
			streamer.Close()
			return 0, fmt.Errorf("initializing speaker: %w", err)
		}
		p.initialized = true
	}

	p.streamer = streamer
	resampled := beep.Resample(4, format.SampleRate, p.sampleRate, streamer)
	p.ctrl = &beep.Ctrl{Streamer: resampled}

	speaker.Play(beep.Seq(p.ctrl, beep.Callback(func() {
		if onFinished != nil {
			// Separate goroutine so the callback can drive the
			// coordinator without deadlocking the speaker.
			go onFinished()
		}
	})))

	return durationMillis, nil
}

// Stop halts playback and releases the current streamer.
func (p *BeepPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	return nil
}

func (p *BeepPlayer) stopLocked() {
	if p.ctrl != nil {
		speaker.Lock()
		p.ctrl.Paused = true
		speaker.Unlock()
	}
	if p.streamer != nil {
		p.streamer.Close()
		p.streamer = nil
	}
	p.ctrl = nil
}

func (p *BeepPlayer) fetch(url string) ([]byte, error) {
	if path, ok := strings.CutPrefix(url, "file://"); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading local audio: %w", err)
		}
		return data, nil
	}

	resp, err := p.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetching audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetching audio: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading audio body: %w", err)
	}
	return data, nil
}

// nopCloser wraps a bytes.Reader to satisfy io.ReadCloser for the decoder.
type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }
