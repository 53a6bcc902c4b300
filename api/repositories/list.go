package repositories

import (
	"strconv"

	"github.com/gomantics/repograph/api/web"
	"github.com/gomantics/repograph/domains/repos"
	"go.uber.org/zap"
)

// ListResponse is the response for listing repositories
type ListResponse struct {
	Repos []RepoSummary `json:"repos"`
	Total int64         `json:"total"`
}

// RepoSummary is a summary of a repository
type RepoSummary struct {
	Rank             int64  `json:"rank"`
	Owner            string `json:"owner"`
	Project          string `json:"project"`
	Stars            *int64 `json:"stars,omitempty"`
	Status           string `json:"status"`
	LanguagesFetched bool   `json:"languages_fetched"`
}

// List handles GET /v1/repositories
func List(c web.Context) error {
	ctx := c.Request().Context()

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var status *repos.Status
	if raw := c.QueryParam("status"); raw != "" {
		s := repos.Status(raw)
		if s != repos.StatusPending && s != repos.StatusHarvested {
			return c.BadRequest("status must be pending or harvested")
		}
		status = &s
	}

	entries, err := repos.List(ctx, c.S)
	if err != nil {
		c.L.Error("failed to list repos", zap.Error(err))
		return c.InternalError("failed to list repositories")
	}

	matching := entries[:0]
	for _, e := range entries {
		if status == nil || e.Status == *status {
			matching = append(matching, e)
		}
	}

	offset := min((page-1)*limit, len(matching))
	end := min(offset+limit, len(matching))

	summaries := make([]RepoSummary, 0, end-offset)
	for _, e := range matching[offset:end] {
		summaries = append(summaries, toSummary(e))
	}

	return c.OK(ListResponse{
		Repos: summaries,
		Total: int64(len(matching)),
	})
}

func toSummary(e repos.Entry) RepoSummary {
	return RepoSummary{
		Rank:             e.Rank,
		Owner:            e.Owner,
		Project:          e.Project,
		Stars:            e.Stars,
		Status:           e.Status.String(),
		LanguagesFetched: e.LanguagesFetched,
	}
}
