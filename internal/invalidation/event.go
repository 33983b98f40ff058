// Package invalidation defines the change event that upstream editors
// publish when features move or disappear.
package invalidation

import (
	"fmt"
	"strings"
	"time"
)

type Event struct {
	Version int       `json:"version"`
	Op      string    `json:"op"`
	Layer   string    `json:"layer"`
	TS      time.Time `json:"ts"`
	Source  string    `json:"source,omitempty"`
	// Level restricts the invalidation to one mesh level; empty means
	// every level the service caches.
	Level string   `json:"level,omitempty"`
	Codes []uint64 `json:"codes,omitempty"`
	BBox  *BBox    `json:"bbox,omitempty"`
}

type BBox struct {
	X1   float64 `json:"x1"`
	Y1   float64 `json:"y1"`
	X2   float64 `json:"x2"`
	Y2   float64 `json:"y2"`
	SRID string  `json:"srid"`
}

func (e Event) Validate() error {
	if e.Version != 1 {
		return fmt.Errorf("version must be 1")
	}
	switch e.Op {
	case "insert", "update", "delete":
	default:
		return fmt.Errorf("op must be insert|update|delete")
	}
	if strings.TrimSpace(e.Layer) == "" {
		return fmt.Errorf("layer is required")
	}
	if e.TS.IsZero() {
		return fmt.Errorf("ts is required")
	}
	hasCodes := len(e.Codes) > 0
	hasBBox := e.BBox != nil
	if hasCodes == hasBBox {
		return fmt.Errorf("exactly one of codes or bbox is required")
	}
	if hasCodes {
		if e.Level == "" {
			return fmt.Errorf("level is required when codes are given")
		}
		return nil
	}
	bb := *e.BBox
	if bb.SRID != "EPSG:4326" {
		return fmt.Errorf("bbox.srid must be EPSG:4326")
	}
	if !(bb.X1 >= -180 && bb.X1 <= 180 && bb.X2 >= -180 && bb.X2 <= 180) {
		return fmt.Errorf("bbox longitude out of range")
	}
	if !(bb.Y1 >= -90 && bb.Y1 <= 90 && bb.Y2 >= -90 && bb.Y2 <= 90) {
		return fmt.Errorf("bbox latitude out of range")
	}
	if !(bb.X2 > bb.X1 && bb.Y2 > bb.Y1) {
		return fmt.Errorf("bbox must satisfy x2>x1 and y2>y1")
	}
	return nil
}
