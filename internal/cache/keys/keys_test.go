package keys

import (
	"strings"
	"testing"

	"github.com/jpgrid/meshcache/pkg/jpmesh"
)

func TestKey_StableFormat(t *testing.T) {
	k := Key("tokyo", jpmesh.Level1km, 53394611)
	if !strings.HasPrefix(k, "jpmesh:tokyo:1km:53394611:l=") {
		t.Fatalf("unexpected key %q", k)
	}
	if k != Key("tokyo", jpmesh.Level1km, 53394611) {
		t.Fatalf("key must be deterministic")
	}
}

func TestKey_SanitizedLayersStayDistinct(t *testing.T) {
	a := Key("a b", jpmesh.Level1km, 53394611)
	b := Key("a_b", jpmesh.Level1km, 53394611)
	if a == b {
		t.Fatalf("distinct layers must hash to distinct keys")
	}
}

func TestRequestKey_DependsOnAllParts(t *testing.T) {
	base := RequestKey("tokyo", jpmesh.Level1km, "139,35,140,36")
	if base == RequestKey("tokyo", jpmesh.Level500m, "139,35,140,36") {
		t.Fatalf("level must affect the request key")
	}
	if base == RequestKey("tokyo", jpmesh.Level1km, "139,35,140,37") {
		t.Fatalf("bbox must affect the request key")
	}
}
