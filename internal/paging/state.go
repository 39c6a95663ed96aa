package paging

// Status describes where an in-flight page fetch is in its lifecycle.
type Status int

const (
	StatusIdle Status = iota // no fetch issued yet
	StatusLoading
	StatusLoaded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// NetworkState is the observable status of one page fetch. A fetch moves
// strictly from loading to exactly one terminal state; a new fetch starts
// a new lifecycle.
type NetworkState struct {
	Status Status
	Err    error
}

func Loading() NetworkState { return NetworkState{Status: StatusLoading} }

func Loaded() NetworkState { return NetworkState{Status: StatusLoaded} }

func Failed(err error) NetworkState { return NetworkState{Status: StatusFailed, Err: err} }

// Terminal reports whether the fetch finished, successfully or not.
func (n NetworkState) Terminal() bool {
	return n.Status == StatusLoaded || n.Status == StatusFailed
}
