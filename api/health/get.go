package health

import (
	"net/http"

	"github.com/gomantics/repograph/api/web"
)

// GetResponse is the health check response
type GetResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Get handles GET /v1/health
func Get(c web.Context) error {
	ctx := c.Request().Context()

	if c.S == nil {
		return c.JSON(http.StatusServiceUnavailable, GetResponse{Status: "degraded", Database: "not configured"})
	}

	if err := c.S.Ping(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, GetResponse{
			Status:   "degraded",
			Database: "error: " + err.Error(),
		})
	}

	return c.OK(GetResponse{
		Status:   "ok",
		Database: "ok",
	})
}
