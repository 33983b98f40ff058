// Package scenarios wires serving modes to the query handler seam.
package scenarios

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jpgrid/meshcache/internal/core/config"
	"github.com/jpgrid/meshcache/internal/core/router"
	"github.com/jpgrid/meshcache/internal/mapper"
)

type Factory func(cfg config.Config, logger *zerolog.Logger, mapr mapper.Interface) (router.QueryHandler, error)

var reg = map[string]Factory{}

func Register(name string, f Factory) {
	reg[name] = f
}

func New(name string, cfg config.Config, logger *zerolog.Logger, mapr mapper.Interface) (router.QueryHandler, error) {
	if f, ok := reg[name]; ok {
		return f(cfg, logger, mapr)
	}
	if f, ok := reg["direct"]; ok {
		logger.Warn().Str("mode", name).Msg("unknown mode; falling back to direct")
		return f(cfg, logger, mapr)
	}
	return nil, fmt.Errorf("no factory for mode %q and no direct fallback registered", name)
}
