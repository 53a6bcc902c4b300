package harvest

import (
	"github.com/gomantics/repograph/api/web"
	"github.com/gomantics/repograph/db"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func Configure(e *echo.Echo, l *zap.Logger, s *db.Store, t Tracker) {
	e.GET("/v1/harvest/progress", web.Wrap(Progress(t), l, s))
}
