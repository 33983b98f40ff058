package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveHTTP_CountsByModeAndStatus(t *testing.T) {
	SetMode("direct")
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/query", "200", "direct"))

	ObserveHTTP("GET", "/query", 200, 0.01)

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/query", "200", "direct"))
	if after != before+1 {
		t.Fatalf("counter=%v want %v", after, before+1)
	}
}

func TestCacheResults_HitMiss(t *testing.T) {
	SetMode("cache")
	hitsBefore := testutil.ToFloat64(cacheResults.WithLabelValues("hit", "cache"))
	missesBefore := testutil.ToFloat64(cacheResults.WithLabelValues("miss", "cache"))

	AddCacheHits(3)
	AddCacheMisses(2)

	if got := testutil.ToFloat64(cacheResults.WithLabelValues("hit", "cache")); got != hitsBefore+3 {
		t.Fatalf("hits=%v want %v", got, hitsBefore+3)
	}
	if got := testutil.ToFloat64(cacheResults.WithLabelValues("miss", "cache")); got != missesBefore+2 {
		t.Fatalf("misses=%v want %v", got, missesBefore+2)
	}
	SetMode("direct")
}

func TestObserveMeshMapping(t *testing.T) {
	before := testutil.ToFloat64(meshCellsMapped.WithLabelValues("1km"))
	ObserveMeshMapping("1km", 42, 0.001)
	if got := testutil.ToFloat64(meshCellsMapped.WithLabelValues("1km")); got != before+42 {
		t.Fatalf("cells=%v want %v", got, before+42)
	}
}
