// Package kafkaconsumer drops cached mesh fragments when change events
// arrive on the invalidation topic.
package kafkaconsumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/jpgrid/meshcache/internal/cache"
	"github.com/jpgrid/meshcache/internal/cache/keys"
	"github.com/jpgrid/meshcache/internal/core/model"
	obs "github.com/jpgrid/meshcache/internal/core/observability"
	"github.com/jpgrid/meshcache/internal/invalidation"
	"github.com/jpgrid/meshcache/pkg/jpmesh"
)

type CodeMapper interface {
	CodesForBBox(bbox model.BBox, level jpmesh.Level) (model.Codes, error)
}

// CollectionPurger empties the in-process collection cache. Assembled
// bodies do not record which cells they contain, so any cell change
// purges them all.
type CollectionPurger interface {
	Purge()
}

type Consumer struct {
	cfg    Config
	log    *zerolog.Logger
	cache  cache.Interface
	mapper CodeMapper
	purger CollectionPurger
	levels []jpmesh.Level
}

func New(cfg Config, log *zerolog.Logger, c cache.Interface, mapper CodeMapper, purger CollectionPurger, levels []jpmesh.Level) *Consumer {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &Consumer{
		cfg:    cfg.Defaults(),
		log:    log,
		cache:  c,
		mapper: mapper,
		purger: purger,
		levels: levels,
	}
}

// Start consumes invalidation events until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	if c.cache == nil || c.mapper == nil {
		return errors.New("kafkaconsumer: missing dependencies (cache/mapper)")
	}
	if len(c.levels) == 0 {
		return errors.New("kafkaconsumer: no mesh levels configured")
	}

	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_1_0_0
	cfg.Consumer.Group.Session.Timeout = c.cfg.SessionTimeout
	cfg.Consumer.Group.Heartbeat.Interval = c.cfg.Heartbeat
	cfg.Consumer.Group.Rebalance.Timeout = c.cfg.RebalanceTimeout
	if c.cfg.InitialOffsetOldest {
		cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	}
	cfg.Consumer.Offsets.AutoCommit.Enable = true

	group, err := sarama.NewConsumerGroup(c.cfg.Brokers, c.cfg.GroupID, cfg)
	if err != nil {
		return fmt.Errorf("create consumer group: %w", err)
	}
	defer func() { _ = group.Close() }()

	handler := &groupHandler{process: c.ProcessOne}

	c.log.Info().
		Strs("brokers", c.cfg.Brokers).
		Str("topic", c.cfg.Topic).
		Str("group", c.cfg.GroupID).
		Msg("kafka invalidation consumer starting")

	for {
		select {
		case <-ctx.Done():
			c.log.Info().Msg("kafka invalidation consumer shutting down")
			return nil
		default:
			if err := group.Consume(ctx, []string{c.cfg.Topic}, handler); err != nil {
				c.log.Error().Err(err).
					Strs("brokers", c.cfg.Brokers).
					Str("topic", c.cfg.Topic).
					Msg("kafka consumer error")
				time.Sleep(2 * time.Second)
			}
		}
	}
}

// ProcessOne handles a single invalidation message.
func (c *Consumer) ProcessOne(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var ev invalidation.Event
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		obs.IncKafkaConsumerError("decode")
		obs.IncInvalidation("error")
		c.log.Error().
			Str("kind", "decode").
			Str("topic", msg.Topic).
			Int32("partition", msg.Partition).
			Int64("offset", msg.Offset).
			Msg("kafka message decode failed")
		return fmt.Errorf("json decode: %w", err)
	}
	if err := ev.Validate(); err != nil {
		obs.IncKafkaConsumerError("validate")
		obs.IncInvalidation("error")
		return fmt.Errorf("event validate: %w", err)
	}

	byLevel, err := c.codesForEvent(ev)
	if err != nil {
		obs.IncInvalidation("error")
		return fmt.Errorf("derive codes: %w", err)
	}

	delKeys := make([]string, 0, 64)
	for lv, codes := range byLevel {
		for _, code := range codes {
			delKeys = append(delKeys, keys.Key(ev.Layer, lv, code))
		}
	}
	if len(delKeys) == 0 {
		obs.IncInvalidation("skip")
		c.log.Debug().Str("layer", ev.Layer).Str("op", ev.Op).
			Msg("no keys to invalidate (skipping)")
		return nil
	}

	opCtx, cancel := context.WithTimeout(ctx, c.cfg.OpTimeout)
	defer cancel()
	if err := c.cache.Del(opCtx, delKeys...); err != nil {
		obs.IncKafkaConsumerError("redis_del")
		obs.IncInvalidation("error")
		c.log.Error().
			Str("kind", "redis_del").
			Str("topic", msg.Topic).
			Int32("partition", msg.Partition).
			Int("keys", len(delKeys)).
			Msg("kafka invalidation delete failed")
		return fmt.Errorf("redis del: %w", err)
	}

	if c.purger != nil {
		c.purger.Purge()
	}

	obs.IncInvalidation("ok")
	c.log.Info().
		Str("event", "invalidation").
		Str("op", ev.Op).Str("layer", ev.Layer).
		Int("keys", len(delKeys)).
		Msg("invalidated keys")
	return nil
}

// codesForEvent resolves the affected mesh codes per level. Explicit
// codes bind to the event's level; a bbox is mapped at every level the
// service caches, or only the named one when the event sets it.
func (c *Consumer) codesForEvent(ev invalidation.Event) (map[jpmesh.Level][]uint64, error) {
	levels := c.levels
	if ev.Level != "" {
		lv, err := jpmesh.ParseLevel(ev.Level)
		if err != nil {
			return nil, fmt.Errorf("event level: %w", err)
		}
		levels = []jpmesh.Level{lv}
	}

	out := make(map[jpmesh.Level][]uint64, len(levels))
	if len(ev.Codes) > 0 {
		for _, lv := range levels {
			out[lv] = ev.Codes
		}
		return out, nil
	}

	bb := model.BBox{X1: ev.BBox.X1, Y1: ev.BBox.Y1, X2: ev.BBox.X2, Y2: ev.BBox.Y2, SRID: ev.BBox.SRID}
	for _, lv := range levels {
		codes, err := c.mapper.CodesForBBox(bb, lv)
		if err != nil {
			return nil, fmt.Errorf("CodesForBBox at %s: %w", lv, err)
		}
		out[lv] = codes
	}
	return out, nil
}
