// Package localfile handles temp files for freshly recorded voizys and
// probes their audio duration.
package localfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/gopxl/beep/v2/mp3"
)

// Manager hands out temp file paths and inspects local audio files.
type Manager struct {
	dir string
}

// NewManager uses dir for temp files, defaulting to the system temp dir.
func NewManager(dir string) (*Manager, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "voizy")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating temp directory: %w", err)
	}
	return &Manager{dir: dir}, nil
}

// TempFilePath returns a fresh path for a recording; the file is not created.
func (m *Manager) TempFilePath() string {
	return filepath.Join(m.dir, uuid.NewString()+".mp3")
}

// ComputeDuration decodes the file header and returns the audio duration
// in milliseconds.
func (m *Manager) ComputeDuration(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening audio file: %w", err)
	}
	defer f.Close()

	streamer, format, err := mp3.Decode(f)
	if err != nil {
		return 0, fmt.Errorf("decoding audio file: %w", err)
	}
	defer streamer.Close()

	return format.SampleRate.D(streamer.Len()).Milliseconds(), nil
}
