package harvest

import (
	"context"
	"errors"

	"github.com/gomantics/repograph/domains/repos"
)

var (
	// ErrStoreWriteFailed wraps a sink commit that did not go through.
	ErrStoreWriteFailed = errors.New("store write failed")
	// ErrRateLimited stops a run because the remote host refuses further requests.
	ErrRateLimited = errors.New("harvest stopped: rate limited")
)

// State is where a work item is in its lifecycle
type State string

const (
	StatePending  State = "pending"
	StateInFlight State = "in_flight"
	StateDone     State = "done"
	StateFailed   State = "failed"
)

func (s State) String() string {
	return string(s)
}

// WorkItem is one repository moving through the scheduler.
// Counts is set once the item is done; Err once it has failed.
type WorkItem struct {
	Ref    repos.Ref
	State  State
	Counts map[string]int
	Err    error
}

// Source produces the refs of one run.
type Source interface {
	Pending(ctx context.Context) ([]repos.Ref, error)
}

// Pipeline turns one ref into its contributor counts.
type Pipeline interface {
	Harvest(ctx context.Context, ref repos.Ref) (map[string]int, error)
}

// Sink durably records the counts of one ref.
type Sink interface {
	Commit(ctx context.Context, ref repos.Ref, counts map[string]int) error
}

// Progress is a snapshot of a run.
type Progress struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	InFlight int `json:"in_flight"`
	Done     int `json:"done"`
	Failed   int `json:"failed"`
}

// Report summarizes a finished or stopped run.
type Report struct {
	// Done counts items whose results were committed.
	Done int
	// Failed holds every item that failed, in drain order.
	Failed []WorkItem
	// Abandoned counts items in flight when the run stopped early.
	Abandoned int
	// Undispatched counts items never started because the run stopped early.
	Undispatched int
}
