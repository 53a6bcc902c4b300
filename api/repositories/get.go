package repositories

import (
	"errors"
	"strconv"

	"github.com/gomantics/repograph/api/web"
	"github.com/gomantics/repograph/domains/contributors"
	"github.com/gomantics/repograph/domains/repos"
	"go.uber.org/zap"
)

// GetResponse is the response for getting a repository
type GetResponse struct {
	RepoSummary
	Contributors []ContributorSummary `json:"contributors"`
}

type ContributorSummary struct {
	Email   string `json:"email"`
	Commits int64  `json:"commits"`
}

// Get handles GET /v1/repositories/:rank
func Get(c web.Context) error {
	ctx := c.Request().Context()

	rank, err := strconv.ParseInt(c.Param("rank"), 10, 64)
	if err != nil || rank < 0 {
		return c.BadRequest("invalid repository rank")
	}

	entry, err := repos.Get(ctx, c.S, rank)
	if errors.Is(err, repos.ErrNotFound) {
		return c.NotFound("repository not found")
	}
	if err != nil {
		c.L.Error("failed to get repo", zap.Error(err))
		return c.InternalError("failed to get repository")
	}

	rows, err := contributors.ForRepository(ctx, c.S, rank)
	if err != nil {
		c.L.Error("failed to list contributors", zap.Int64("rank", rank), zap.Error(err))
		return c.InternalError("failed to get repository")
	}

	resp := GetResponse{
		RepoSummary:  toSummary(entry),
		Contributors: make([]ContributorSummary, len(rows)),
	}
	for i, row := range rows {
		resp.Contributors[i] = ContributorSummary{Email: row.Email, Commits: row.Commits}
	}

	return c.OK(resp)
}
