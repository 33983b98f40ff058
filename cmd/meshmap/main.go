// Command meshmap writes the mesh cells covering a bounding box as
// GeoJSON files, one per level.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jpgrid/meshcache/internal/core/model"
	"github.com/jpgrid/meshcache/internal/geojson"
	"github.com/jpgrid/meshcache/internal/logger"
	"github.com/jpgrid/meshcache/internal/mapper/jpmeshmapper"
	"github.com/jpgrid/meshcache/pkg/jpmesh"
)

func main() {
	os.Exit(run())
}

func run() int {
	bboxFlag := flag.String("bbox", "139.5,35.5,140.0,35.9", "area as x1,y1,x2,y2 (EPSG:4326)")
	levelsFlag := flag.String("levels", "10km,1km", "comma-separated mesh levels")
	outFlag := flag.String("out", ".", "output directory")
	maxCells := flag.Int("max-cells", 200000, "refuse areas covering more cells than this")
	flag.Parse()

	zl := logger.Build(logger.Config{Level: "info", Console: true, Component: "meshmap"}, os.Stderr)

	bb, err := parseBBox(*bboxFlag)
	if err != nil {
		zl.Error().Err(err).Msg("invalid -bbox")
		return 2
	}

	var levels []jpmesh.Level
	for _, name := range strings.Split(*levelsFlag, ",") {
		lv, err := jpmesh.ParseLevel(strings.TrimSpace(name))
		if err != nil {
			zl.Error().Err(err).Msg("invalid -levels")
			return 2
		}
		levels = append(levels, lv)
	}

	mapr := jpmeshmapper.New(*maxCells)
	for _, lv := range levels {
		codes, err := mapr.CodesForBBox(bb, lv)
		if err != nil {
			zl.Error().Err(err).Str("level", lv.String()).Msg("mapping failed")
			return 1
		}
		body, err := geojson.Collection(codes, lv)
		if err != nil {
			zl.Error().Err(err).Str("level", lv.String()).Msg("render failed")
			return 1
		}

		path := filepath.Join(*outFlag, fmt.Sprintf("mesh%s.geojson", lv))
		if err := os.WriteFile(path, body, 0o644); err != nil {
			zl.Error().Err(err).Str("path", path).Msg("write failed")
			return 1
		}
		zl.Info().Str("path", path).Int("cells", len(codes)).Msg("wrote level")
	}
	return 0
}

func parseBBox(raw string) (model.BBox, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return model.BBox{}, fmt.Errorf("expected 4 comma-separated values, got %d", len(parts))
	}
	var vals [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return model.BBox{}, fmt.Errorf("value %d: %w", i+1, err)
		}
		vals[i] = f
	}
	if vals[2] <= vals[0] || vals[3] <= vals[1] {
		return model.BBox{}, fmt.Errorf("bbox must satisfy x2>x1 and y2>y1")
	}
	return model.BBox{X1: vals[0], Y1: vals[1], X2: vals[2], Y2: vals[3], SRID: "EPSG:4326"}, nil
}
