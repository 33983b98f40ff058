// Package direct serves mesh queries by computing every cell geometry
// on the request path, with no cache in front.
package direct

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/jpgrid/meshcache/internal/core/config"
	"github.com/jpgrid/meshcache/internal/core/model"
	"github.com/jpgrid/meshcache/internal/core/router"
	"github.com/jpgrid/meshcache/internal/geojson"
	"github.com/jpgrid/meshcache/internal/mapper"
	"github.com/jpgrid/meshcache/internal/scenarios"
)

type Engine struct {
	logger *zerolog.Logger
	mapr   mapper.Interface
}

func init() {
	scenarios.Register("direct", newDirect)
}

func newDirect(_ config.Config, logger *zerolog.Logger, mapr mapper.Interface) (router.QueryHandler, error) {
	return &Engine{logger: logger, mapr: mapr}, nil
}

func (e *Engine) HandleQuery(ctx context.Context, w http.ResponseWriter, r *http.Request, q model.QueryRequest) {
	codes, err := CodesFor(e.mapr, q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	body, err := geojson.Collection(codes, q.Level)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	e.logger.Debug().
		Str("layer", q.Layer).
		Str("level", q.Level.String()).
		Int("cells", len(codes)).
		Msg("direct query served")

	w.Header().Set("Content-Type", "application/geo+json")
	_, _ = w.Write(body)
}

// CodesFor resolves a validated query to the mesh numbers it covers.
// The cached mode reuses it, so selector handling stays identical
// across modes.
func CodesFor(mapr mapper.Interface, q model.QueryRequest) (model.Codes, error) {
	switch {
	case q.BBox != nil:
		codes, err := mapr.CodesForBBox(*q.BBox, q.Level)
		if err != nil {
			return nil, fmt.Errorf("map bbox: %w", err)
		}
		return codes, nil
	case q.Point != nil:
		code, err := mapr.CodeForPoint(*q.Point, q.Level)
		if err != nil {
			return nil, fmt.Errorf("map point: %w", err)
		}
		return model.Codes{code}, nil
	default:
		return q.Codes, nil
	}
}
