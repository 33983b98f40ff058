// Package mapper converts between geometric queries and mesh codes.
package mapper

import (
	"github.com/jpgrid/meshcache/internal/core/model"
	"github.com/jpgrid/meshcache/pkg/jpmesh"
)

type Interface interface {
	CodesForBBox(bb model.BBox, lv jpmesh.Level) (model.Codes, error)
	CodeForPoint(pt model.Point, lv jpmesh.Level) (uint64, error)
}
