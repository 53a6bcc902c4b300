package graph

import (
	"bytes"
	"net/http"

	"github.com/gomantics/repograph/api/web"
	"github.com/gomantics/repograph/domains/graph"
	"go.uber.org/zap"
)

var contentTypes = map[graph.Format]string{
	graph.FormatJSON: "application/json",
	graph.FormatGML:  "text/plain; charset=utf-8",
}

// Get handles GET /v1/graph?format=json|gml
func Get(c web.Context) error {
	ctx := c.Request().Context()

	raw := c.QueryParam("format")
	if raw == "" {
		raw = string(graph.FormatJSON)
	}

	format, err := graph.ParseFormat(raw)
	if err != nil {
		return c.BadRequest(err.Error())
	}

	g, err := graph.Load(ctx, c.S)
	if err != nil {
		c.L.Error("failed to load graph", zap.Error(err))
		return c.InternalError("failed to load graph")
	}

	var buf bytes.Buffer
	if err := g.Write(&buf, format); err != nil {
		c.L.Error("failed to encode graph", zap.String("format", raw), zap.Error(err))
		return c.InternalError("failed to encode graph")
	}

	return c.Blob(http.StatusOK, contentTypes[format], buf.Bytes())
}
