// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jpgrid/meshcache/pkg/jpmesh"
)

type InvalidationCfg struct {
	Enabled bool
	Topic   string
	Brokers string
	GroupID string
}

type Config struct {
	Addr                string
	LogLevel            string
	Mode                string
	Layer               string
	Level               jpmesh.Level
	MaxCells            int
	RedisAddr           string
	CacheOpTimeout      time.Duration
	CacheTTLDefault     time.Duration
	CacheLRUSize        int
	CacheFillMaxWorkers int
	Invalidation        InvalidationCfg
}

func FromEnv() Config {
	level := jpmesh.Level1km
	if v := os.Getenv("MESH_LEVEL"); v != "" {
		if lv, err := jpmesh.ParseLevel(strings.TrimSpace(v)); err == nil {
			level = lv
		}
	}

	return Config{
		Addr:                getenv("ADDR", ":8090"),
		LogLevel:            getenv("LOG_LEVEL", "info"),
		Mode:                getenv("MODE", "direct"),
		Layer:               getenv("MESH_LAYER", "jpmesh"),
		Level:               level,
		MaxCells:            getint("MESH_MAX_CELLS", 50000),
		RedisAddr:           getenv("REDIS_ADDR", "localhost:6379"),
		CacheOpTimeout:      getduration("CACHE_OP_TIMEOUT", 250*time.Millisecond),
		CacheTTLDefault:     getduration("CACHE_TTL_DEFAULT", 10*time.Minute),
		CacheLRUSize:        getint("CACHE_LRU_SIZE", 256),
		CacheFillMaxWorkers: getint("CACHE_FILL_MAX_WORKERS", 8),
		Invalidation: InvalidationCfg{
			Enabled: getbool("INVALIDATION_ENABLED", false),
			Topic:   getenv("KAFKA_TOPIC", "mesh-invalidation"),
			Brokers: getenv("KAFKA_BROKERS", "localhost:9092"),
			GroupID: getenv("KAFKA_GROUP_ID", "meshcache-invalidator"),
		},
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
