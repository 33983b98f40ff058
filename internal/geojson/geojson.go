// Package geojson renders mesh cells as GeoJSON features and merges
// per-cell fragments into one FeatureCollection.
package geojson

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jpgrid/meshcache/pkg/jpmesh"
)

type Feature struct {
	Type       string     `json:"type"`
	Properties Properties `json:"properties"`
	Geometry   Geometry   `json:"geometry"`
}

type Properties struct {
	MeshCode uint64 `json:"mesh_code"`
	Level    string `json:"level"`
}

type Geometry struct {
	Type        string         `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}

type FeatureCollection struct {
	Type     string            `json:"type"`
	Features []json.RawMessage `json:"features"`
}

// EncodeFeature renders one mesh cell as a GeoJSON Polygon feature.
// The ring is counter-clockwise and closed, with positions in
// (lng, lat) order.
func EncodeFeature(m jpmesh.Mesh) ([]byte, error) {
	b := m.ToBounds()
	ring := [][2]float64{
		{b.Min.Lng, b.Min.Lat},
		{b.Max.Lng, b.Min.Lat},
		{b.Max.Lng, b.Max.Lat},
		{b.Min.Lng, b.Max.Lat},
		{b.Min.Lng, b.Min.Lat},
	}
	f := Feature{
		Type: "Feature",
		Properties: Properties{
			MeshCode: m.ToNumber(),
			Level:    m.Level().String(),
		},
		Geometry: Geometry{
			Type:        "Polygon",
			Coordinates: [][][2]float64{ring},
		},
	}
	out, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("marshal feature %d: %w", m.ToNumber(), err)
	}
	return out, nil
}

// MergeFeatures assembles raw per-mesh features into one collection,
// dropping duplicates by mesh_code and ordering by code so identical
// inputs always produce identical output.
func MergeFeatures(parts map[uint64][]byte) ([]byte, error) {
	codes := make([]uint64, 0, len(parts))
	for code := range parts {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	fc := FeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]json.RawMessage, 0, len(codes)),
	}
	for _, code := range codes {
		fc.Features = append(fc.Features, json.RawMessage(parts[code]))
	}
	out, err := json.Marshal(fc)
	if err != nil {
		return nil, fmt.Errorf("marshal collection: %w", err)
	}
	return out, nil
}

// Collection renders a full FeatureCollection for the given codes.
func Collection(codes []uint64, lv jpmesh.Level) ([]byte, error) {
	parts := make(map[uint64][]byte, len(codes))
	for _, code := range codes {
		m, err := jpmesh.FromNumber(code, lv)
		if err != nil {
			return nil, fmt.Errorf("code %d: %w", code, err)
		}
		f, err := EncodeFeature(m)
		if err != nil {
			return nil, err
		}
		parts[code] = f
	}
	return MergeFeatures(parts)
}
