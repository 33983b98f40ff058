// Package cached serves mesh queries from Redis-backed per-cell
// fragments, assembling collections and filling misses on the fly.
package cached

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	cacheiface "github.com/jpgrid/meshcache/internal/cache"
	"github.com/jpgrid/meshcache/internal/cache/keys"
	"github.com/jpgrid/meshcache/internal/cache/lru"
	"github.com/jpgrid/meshcache/internal/cache/redisstore"
	"github.com/jpgrid/meshcache/internal/core/config"
	"github.com/jpgrid/meshcache/internal/core/model"
	"github.com/jpgrid/meshcache/internal/core/router"
	"github.com/jpgrid/meshcache/internal/geojson"
	mylog "github.com/jpgrid/meshcache/internal/logger"
	"github.com/jpgrid/meshcache/internal/mapper"
	"github.com/jpgrid/meshcache/internal/scenarios"
	"github.com/jpgrid/meshcache/internal/scenarios/direct"
	"github.com/jpgrid/meshcache/pkg/jpmesh"
)

type Engine struct {
	logger     *zerolog.Logger
	mapr       mapper.Interface
	store      cacheiface.Interface
	local      *lru.Cache
	rc         *redisstore.Client
	ttl        time.Duration
	maxWorkers int
	opTimeout  time.Duration
}

func init() {
	scenarios.Register("cached", newCached)
}

func newCached(cfg config.Config, logger *zerolog.Logger, mapr mapper.Interface) (router.QueryHandler, error) {
	rc, err := redisstore.New(context.Background(), cfg.RedisAddr)
	if err != nil {
		return nil, fmt.Errorf("redis client: %w", err)
	}
	size := cfg.CacheLRUSize
	if size <= 0 {
		size = 512
	}
	local, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("lru: %w", err)
	}
	return &Engine{
		logger:     logger,
		mapr:       mapr,
		store:      rc,
		local:      local,
		rc:         rc,
		ttl:        cfg.CacheTTLDefault,
		maxWorkers: cfg.CacheFillMaxWorkers,
		opTimeout:  cfg.CacheOpTimeout,
	}, nil
}

// Local exposes the in-process collection cache for invalidation.
func (e *Engine) Local() *lru.Cache { return e.local }

// Store exposes the fragment store for invalidation.
func (e *Engine) Store() cacheiface.Interface { return e.store }

// Readiness reports whether the fragment store is reachable.
func (e *Engine) Readiness() (bool, string) {
	if e.rc == nil {
		return true, ""
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := e.rc.Ping(ctx); err != nil {
		return false, err.Error()
	}
	return true, ""
}

func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.opTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.opTimeout)
}

type result struct {
	code uint64
	key  string
	body []byte
	err  error
}

func (e *Engine) HandleQuery(ctx context.Context, w http.ResponseWriter, r *http.Request, q model.QueryRequest) {
	start := time.Now()

	codes, err := direct.CodesFor(e.mapr, q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(codes) == 0 {
		body, err := geojson.MergeFeatures(nil)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeCollection(w, body)
		return
	}

	// whole-request short circuit for repeated area queries
	var reqKey uint64
	hasReqKey := false
	if q.BBox != nil {
		reqKey = keys.RequestKey(q.Layer, q.Level, q.BBox.String())
		hasReqKey = true
		if body, ok := e.local.Get(reqKey); ok {
			ctx = mylog.WithHitClass(ctx, "local")
			mylog.FromContext(ctx, e.logger).Debug().
				Str("layer", q.Layer).
				Int("cells", len(codes)).
				Dur("dur", time.Since(start)).
				Msg("collection served from local cache")
			writeCollection(w, body)
			return
		}
	}

	keysList := make([]string, len(codes))
	for i, code := range codes {
		keysList[i] = keys.Key(q.Layer, q.Level, code)
	}

	mgetCtx, cancel := e.withTimeout(ctx)
	hits, err := e.store.MGet(mgetCtx, keysList)
	cancel()
	if err != nil {
		e.logger.Warn().Err(err).Msg("cache mget error, continuing with fill path")
		hits = map[string][]byte{}
	}

	parts := make(map[uint64][]byte, len(codes))
	missing := make([]uint64, 0, len(codes))
	for i, k := range keysList {
		if v, ok := hits[k]; ok && len(v) > 0 {
			parts[codes[i]] = v
			continue
		}
		missing = append(missing, codes[i])
	}

	switch {
	case len(missing) == 0:
		ctx = mylog.WithHitClass(ctx, "full_hit")
	case len(parts) > 0:
		ctx = mylog.WithHitClass(ctx, "partial_hit")
	default:
		ctx = mylog.WithHitClass(ctx, "miss")
	}

	if len(missing) > 0 {
		filled, err := e.fill(ctx, q, missing)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for code, body := range filled {
			parts[code] = body
		}
	}

	body, err := geojson.MergeFeatures(parts)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if hasReqKey {
		e.local.Add(reqKey, body)
	}

	mylog.FromContext(ctx, e.logger).Debug().
		Str("layer", q.Layer).
		Str("level", q.Level.String()).
		Int("cells", len(codes)).
		Int("misses", len(missing)).
		Dur("dur", time.Since(start)).
		Msg("cached query served")

	writeCollection(w, body)
}

// fill renders the missing cells with a bounded worker pool and writes
// them back to the fragment store.
func (e *Engine) fill(ctx context.Context, q model.QueryRequest, missing []uint64) (map[uint64][]byte, error) {
	workerN := e.maxWorkers
	if workerN <= 0 {
		workerN = 8
	}
	if workerN > len(missing) {
		workerN = len(missing)
	}

	jobs := make(chan uint64, len(missing))
	results := make(chan result, len(missing))

	var wg sync.WaitGroup
	wg.Add(workerN)
	for range workerN {
		go func() {
			defer wg.Done()
			for code := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				res := e.renderCell(ctx, q, code)
				select {
				case results <- res:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	for _, code := range missing {
		jobs <- code
	}
	close(jobs)
	wg.Wait()
	close(results)

	out := make(map[uint64][]byte, len(missing))
	var errs []error
	for r := range results {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		out[r.code] = r.body
	}
	if len(errs) > 0 {
		sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
		return nil, fmt.Errorf("%d/%d cells failed: %w", len(errs), len(missing), errs[0])
	}
	if len(out) != len(missing) {
		return nil, fmt.Errorf("fill incomplete: %d/%d cells rendered", len(out), len(missing))
	}
	return out, nil
}

func (e *Engine) renderCell(ctx context.Context, q model.QueryRequest, code uint64) result {
	key := keys.Key(q.Layer, q.Level, code)

	m, err := jpmesh.FromNumber(code, q.Level)
	if err != nil {
		return result{code: code, key: key, err: fmt.Errorf("code %d: %w", code, err)}
	}
	body, err := geojson.EncodeFeature(m)
	if err != nil {
		return result{code: code, key: key, err: err}
	}

	setCtx, cancel := e.withTimeout(ctx)
	defer cancel()
	if err := e.store.Set(setCtx, key, body, e.ttl); err != nil {
		// serve anyway; the write can succeed next time
		e.logger.Warn().Err(err).Str("key", key).Msg("fragment write failed")
	}
	return result{code: code, key: key, body: body}
}

func writeCollection(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/geo+json")
	_, _ = w.Write(body)
}
