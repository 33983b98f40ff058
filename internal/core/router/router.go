package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jpgrid/meshcache/internal/core/config"
	"github.com/jpgrid/meshcache/internal/core/model"
	"github.com/jpgrid/meshcache/internal/core/observability"
	"github.com/jpgrid/meshcache/pkg/jpmesh"
)

// receives validated query requests and serves them
type QueryHandler interface {
	HandleQuery(ctx context.Context, w http.ResponseWriter, r *http.Request, q model.QueryRequest)
}

// validates input query params and calls the handler
func HandleQuery(logger *zerolog.Logger, cfg config.Config, h QueryHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}

		q, warn, err := ParseQueryRequest(r, cfg.Level)
		if warn != "" {
			logger.Warn().Msg(warn)
		}
		if err != nil {
			http.Error(sw, err.Error(), http.StatusBadRequest)
			observability.ObserveHTTP(r.Method, "/query", http.StatusBadRequest, time.Since(start).Seconds())
			return
		}

		h.HandleQuery(r.Context(), sw, r, q)
		observability.ObserveHTTP(r.Method, "/query", sw.code, time.Since(start).Seconds())
	}
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// ParseQueryRequest validates the query string. Exactly one selector
// is accepted: bbox, point, or codes; when both bbox and point appear,
// bbox wins with a warning. The level parameter defaults to the
// service-wide level.
func ParseQueryRequest(r *http.Request, defaultLevel jpmesh.Level) (model.QueryRequest, string, error) {
	var warn string

	layer := strings.TrimSpace(r.URL.Query().Get("layer"))
	if layer == "" {
		return model.QueryRequest{}, "", errors.New("missing required parameter: layer")
	}

	rawBBox := strings.TrimSpace(r.URL.Query().Get("bbox"))
	rawPoint := strings.TrimSpace(r.URL.Query().Get("point"))
	rawCodes := strings.TrimSpace(r.URL.Query().Get("codes"))
	rawLevel := strings.TrimSpace(r.URL.Query().Get("level"))

	if rawBBox != "" && rawPoint != "" {
		warn = "both bbox and point supplied; preferring bbox"
		rawPoint = ""
	}
	if rawCodes != "" && (rawBBox != "" || rawPoint != "") {
		return model.QueryRequest{}, warn, errors.New("codes cannot be combined with bbox or point")
	}
	if rawBBox == "" && rawPoint == "" && rawCodes == "" {
		return model.QueryRequest{}, warn, errors.New("one of bbox, point or codes is required")
	}

	level := defaultLevel
	hasLevel := false
	if rawLevel != "" {
		lv, err := jpmesh.ParseLevel(rawLevel)
		if err != nil {
			return model.QueryRequest{}, warn, fmt.Errorf("invalid level: %w", err)
		}
		level = lv
		hasLevel = true
	}

	var bbox *model.BBox
	if rawBBox != "" {
		bb, err := parseBBOX(rawBBox)
		if err != nil {
			return model.QueryRequest{}, warn, fmt.Errorf("invalid bbox: %w", err)
		}
		bbox = &bb
	}

	var point *model.Point
	if rawPoint != "" {
		pt, err := parsePoint(rawPoint)
		if err != nil {
			return model.QueryRequest{}, warn, fmt.Errorf("invalid point: %w", err)
		}
		point = &pt
	}

	var codes model.Codes
	if rawCodes != "" {
		cs, err := parseCodes(rawCodes)
		if err != nil {
			return model.QueryRequest{}, warn, fmt.Errorf("invalid codes: %w", err)
		}
		codes = cs
	}

	return model.QueryRequest{
		Layer:    layer,
		BBox:     bbox,
		Point:    point,
		Codes:    codes,
		Level:    level,
		HasLevel: hasLevel,
	}, warn, nil
}

func parseBBOX(bboxParam string) (model.BBox, error) {
	parts := strings.Split(bboxParam, ",")
	if len(parts) != 5 {
		return model.BBox{}, errors.New("expected 5 comma-separated values: x1,y1,x2,y2,EPSG:4326")
	}
	xMin, err := parseFloat(parts[0])
	if err != nil {
		return model.BBox{}, fmt.Errorf("x1: %w", err)
	}
	yMin, err := parseFloat(parts[1])
	if err != nil {
		return model.BBox{}, fmt.Errorf("y1: %w", err)
	}
	xMax, err := parseFloat(parts[2])
	if err != nil {
		return model.BBox{}, fmt.Errorf("x2: %w", err)
	}
	yMax, err := parseFloat(parts[3])
	if err != nil {
		return model.BBox{}, fmt.Errorf("y2: %w", err)
	}

	srid := strings.ToUpper(strings.TrimSpace(parts[4]))
	if srid != "EPSG:4326" {
		return model.BBox{}, fmt.Errorf("only EPSG:4326 is supported at this stage (got %q)", srid)
	}

	if !(xMin >= -180 && xMin <= 180 && xMax >= -180 && xMax <= 180) {
		return model.BBox{}, errors.New("longitude must be in [-180,180]")
	}
	if !(yMin >= -90 && yMin <= 90 && yMax >= -90 && yMax <= 90) {
		return model.BBox{}, errors.New("latitude must be in [-90,90]")
	}
	if xMax <= xMin || yMax <= yMin {
		return model.BBox{}, errors.New("coordinates must satisfy x2>x1 and y2>y1")
	}
	return model.BBox{X1: xMin, Y1: yMin, X2: xMax, Y2: yMax, SRID: srid}, nil
}

func parsePoint(raw string) (model.Point, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return model.Point{}, errors.New("expected 2 comma-separated values: lng,lat")
	}
	lng, err := parseFloat(parts[0])
	if err != nil {
		return model.Point{}, fmt.Errorf("lng: %w", err)
	}
	lat, err := parseFloat(parts[1])
	if err != nil {
		return model.Point{}, fmt.Errorf("lat: %w", err)
	}
	if lng < -180 || lng > 180 {
		return model.Point{}, errors.New("longitude must be in [-180,180]")
	}
	if lat < -90 || lat > 90 {
		return model.Point{}, errors.New("latitude must be in [-90,90]")
	}
	return model.Point{Lng: lng, Lat: lat}, nil
}

const maxCodesPerRequest = 1024

func parseCodes(raw string) (model.Codes, error) {
	parts := strings.Split(raw, ",")
	if len(parts) > maxCodesPerRequest {
		return nil, fmt.Errorf("too many codes: %d (limit %d)", len(parts), maxCodesPerRequest)
	}
	out := make(model.Codes, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, errors.New("empty code")
		}
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("code %q: %w", p, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func parseFloat(v string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("parse float: %w", err)
	}
	return f, nil
}
