// Package page holds the page controllers behind every dashboard page: filter
// and pagination state, generation tickets that drop superseded responses,
// and mutations followed by a refetch.
package page

// Status is the render state of a page section.
type Status int

// Statuses. Loading and error never hold at the same time; both are reset
// when a new fetch starts.
const (
	StatusIdle Status = iota
	StatusLoading
	StatusError
	StatusEmpty
	StatusPopulated
)

var statusNames = map[Status]string{
	StatusIdle:      "idle",
	StatusLoading:   "loading",
	StatusError:     "error",
	StatusEmpty:     "empty",
	StatusPopulated: "populated",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}

	return "unknown"
}

// Applier commits a fetch result to its controller. It reports false when
// the result belonged to a superseded ticket and was dropped.
type Applier func() bool
