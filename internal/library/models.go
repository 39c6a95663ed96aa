package library

import (
	"time"
)

// Voizy is a single recorded audio entry in the library.
type Voizy struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Tags           []string  `json:"tags"`
	PlaybackURL    string    `json:"playback_url"`
	RemotePath     string    `json:"remote_path"`
	LocalPath      string    `json:"local_path,omitempty"`
	DurationMillis int64     `json:"duration_millis,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// SetDuration records the probed audio duration. The duration is written
// exactly once; later calls are ignored so an already-tagged item can never
// be cleared or overwritten.
func (v *Voizy) SetDuration(millis int64) bool {
	if v.DurationMillis != 0 || millis <= 0 {
		return false
	}
	v.DurationMillis = millis
	return true
}

// Page is one fetched slice of the collection. NextCursor is an opaque
// continuation token; empty means the collection is exhausted.
type Page struct {
	Items      []*Voizy
	NextCursor string
}
