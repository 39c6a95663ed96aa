package playback

// Event is a playback transition.
type Event int

const (
	EventStart Event = iota
	EventSwitch
	EventStop
)

func (e Event) String() string {
	switch e {
	case EventStart:
		return "START"
	case EventSwitch:
		return "SWITCH"
	case EventStop:
		return "STOP"
	default:
		return "UNKNOWN"
	}
}

// Info is one transient playback transition. DurationMillis is only valid
// for START and SWITCH. Every event carries the affected item id so list
// rows can self-filter.
type Info struct {
	ItemID         string
	Event          Event
	DurationMillis int64
}

// Player is the audio capability the coordinator drives. Play replaces any
// current playback and reports the track duration; onFinished is invoked at
// most once, from another goroutine, when the track ends on its own.
type Player interface {
	Play(url string, onFinished func()) (durationMillis int64, err error)
	Stop() error
}
