package harvest

import (
	"github.com/gomantics/repograph/api/web"
	"github.com/gomantics/repograph/domains/harvest"
)

// Tracker reports on a running harvest.
type Tracker interface {
	Progress() harvest.Progress
	Completed() int64
}

// ProgressResponse is the live state of the running harvest
type ProgressResponse struct {
	harvest.Progress
	Completed int64 `json:"completed"`
}

// Progress returns the GET /v1/harvest/progress handler for t
func Progress(t Tracker) web.HandlerFunc {
	return func(c web.Context) error {
		return c.OK(ProgressResponse{
			Progress:  t.Progress(),
			Completed: t.Completed(),
		})
	}
}
