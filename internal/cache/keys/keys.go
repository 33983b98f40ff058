// Package keys builds cache keys for mesh feature fragments.
package keys

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/jpgrid/meshcache/pkg/jpmesh"
)

// Key identifies one mesh cell's cached feature. The layer tag is
// sanitized and additionally hashed so that unusual layer names can
// never collide after sanitization.
func Key(layer string, lv jpmesh.Level, code uint64) string {
	norm := sanitize(strings.TrimSpace(layer))
	sum := xxhash.Sum64String(layer)
	return fmt.Sprintf("jpmesh:%s:%s:%d:l=%016x", norm, lv, code, sum)
}

// RequestKey hashes a whole area query for in-process collection
// caching.
func RequestKey(layer string, lv jpmesh.Level, bbox string) uint64 {
	return xxhash.Sum64String(layer + "|" + lv.String() + "|" + bbox)
}

func sanitize(s string) string {
	if s == "" {
		return "default"
	}
	var b strings.Builder
	b.Grow(len(s))
	var prev rune
	for _, r := range s {
		out := r
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			out = '_'
		case isAlphaNum(r) || r == '_' || r == '-':
		default:
			out = '-'
		}
		if (out == '_' || out == '-') && out == prev {
			continue
		}
		b.WriteRune(out)
		prev = out
	}
	return b.String()
}

func isAlphaNum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
