package querycache

import "time"

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Snapshot is a copy of an entry's state handed to observers and callers.
// Data is shared by reference and must be treated as read-only.
type Snapshot struct {
	Key        Key
	Data       any
	HasData    bool
	Err        error
	Status     Status
	FetchCount int
	// Stale is set by Invalidate; the next Fetch reloads.
	Stale     bool
	UpdatedAt time.Time
}

// IsLoading is true only for the first load, when nothing can be shown yet.
func (s Snapshot) IsLoading() bool {
	return s.Status == StatusLoading && !s.HasData
}

// IsFetching is true whenever a load is running, including background
// refetches of stale data.
func (s Snapshot) IsFetching() bool {
	return s.Status == StatusLoading
}

// Fresh reports whether Fetch would serve Data without loading.
func (s Snapshot) Fresh() bool {
	return s.Status == StatusSuccess && !s.Stale
}
