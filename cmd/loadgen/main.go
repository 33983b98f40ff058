// Command loadgen drives random area queries against a meshcache
// server and can interleave invalidation events on Kafka to exercise
// the consumer path.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/IBM/sarama"

	"github.com/jpgrid/meshcache/internal/invalidation"
	"github.com/jpgrid/meshcache/internal/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	target := flag.String("target", "http://localhost:8090", "server base URL")
	layer := flag.String("layer", "jpmesh", "layer name")
	level := flag.String("level", "1km", "mesh level")
	rate := flag.Duration("interval", 100*time.Millisecond, "delay between requests")
	seed := flag.Int64("seed", 1, "rng seed")
	invalidateEvery := flag.Int("invalidate-every", 0, "publish an invalidation event every N requests (0 disables)")
	brokers := flag.String("brokers", "localhost:9092", "kafka brokers (comma-separated)")
	topic := flag.String("topic", "mesh-invalidation", "kafka topic for invalidation events")
	flag.Parse()

	zl := logger.Build(logger.Config{Level: "info", Console: true, Component: "loadgen"}, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var producer sarama.SyncProducer
	if *invalidateEvery > 0 {
		cfg := sarama.NewConfig()
		cfg.Producer.Return.Successes = true
		cfg.Version = sarama.V2_1_0_0
		p, err := sarama.NewSyncProducer(splitCSV(*brokers), cfg)
		if err != nil {
			zl.Error().Err(err).Msg("kafka producer create failed")
			return 1
		}
		defer func() { _ = p.Close() }()
		producer = p
	}

	rng := rand.New(rand.NewSource(*seed))
	client := &http.Client{Timeout: 10 * time.Second}

	var sent, failed int
	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			zl.Info().Int("sent", sent).Int("failed", failed).Msg("loadgen done")
			return 0
		case <-time.After(*rate):
		}

		bb := randomBBox(rng)
		url := fmt.Sprintf("%s/query?layer=%s&level=%s&bbox=%s,EPSG:4326",
			strings.TrimRight(*target, "/"), *layer, *level, bb)
		if err := get(ctx, client, url); err != nil {
			failed++
			zl.Warn().Err(err).Msg("query failed")
		}
		sent++

		if producer != nil && *invalidateEvery > 0 && (i+1)%*invalidateEvery == 0 {
			if err := publishInvalidation(producer, *topic, *layer, bb); err != nil {
				zl.Warn().Err(err).Msg("invalidation publish failed")
			}
		}
	}
}

// randomBBox picks a small box around the Kanto area so cache hits
// actually happen.
func randomBBox(rng *rand.Rand) string {
	x1 := 139.0 + rng.Float64()*1.5
	y1 := 35.0 + rng.Float64()*1.0
	w := 0.02 + rng.Float64()*0.1
	h := 0.02 + rng.Float64()*0.08
	return fmt.Sprintf("%.4f,%.4f,%.4f,%.4f", x1, y1, x1+w, y1+h)
}

func get(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

func publishInvalidation(p sarama.SyncProducer, topic, layer, bbox string) error {
	parts := strings.Split(bbox, ",")
	ev := invalidation.Event{
		Version: 1,
		Op:      "update",
		Layer:   layer,
		TS:      time.Now().UTC(),
		Source:  "loadgen",
		BBox:    &invalidation.BBox{SRID: "EPSG:4326"},
	}
	if _, err := fmt.Sscanf(strings.Join(parts, " "), "%f %f %f %f",
		&ev.BBox.X1, &ev.BBox.Y1, &ev.BBox.X2, &ev.BBox.Y2); err != nil {
		return fmt.Errorf("parse bbox: %w", err)
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	_, _, err = p.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(body),
	})
	return err
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
