package repositories

import (
	"errors"
	"strconv"

	"github.com/gomantics/repograph/api/web"
	"github.com/gomantics/repograph/domains/repos"
	"go.uber.org/zap"
)

// RequeueResponse is the response for requeueing a repository
type RequeueResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Requeue handles POST /v1/repositories/:rank/requeue
func Requeue(c web.Context) error {
	ctx := c.Request().Context()

	rank, err := strconv.ParseInt(c.Param("rank"), 10, 64)
	if err != nil || rank < 0 {
		return c.BadRequest("invalid repository rank")
	}

	err = repos.Requeue(ctx, c.S, rank)
	if errors.Is(err, repos.ErrNotFound) {
		return c.NotFound("repository not found")
	}
	if err != nil {
		c.L.Error("failed to requeue repo", zap.Error(err))
		return c.InternalError("failed to requeue repository")
	}

	c.L.Info("repository requeued", zap.Int64("rank", rank))

	return c.OK(RequeueResponse{
		Status:  repos.StatusPending.String(),
		Message: "Repository will be harvested again on the next run",
	})
}
