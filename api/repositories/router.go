package repositories

import (
	"github.com/gomantics/repograph/api/web"
	"github.com/gomantics/repograph/db"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func Configure(e *echo.Echo, l *zap.Logger, s *db.Store) {
	e.GET("/v1/repositories", web.Wrap(List, l, s))
	e.GET("/v1/repositories/:rank", web.Wrap(Get, l, s))
	e.POST("/v1/repositories/:rank/requeue", web.Wrap(Requeue, l, s))
}
