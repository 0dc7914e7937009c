package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmhernandez2525/learning-hall/internal/platform/logger"
	"github.com/dmhernandez2525/learning-hall/internal/realtime"
)

const (
	defaultChannel = "learning-hall:sse"
	publishTimeout = 2 * time.Second
	envelopeV1     = 1
)

type RedisConfig struct {
	Addr     string
	Password string
	Channel  string
	// Origin names this instance in published envelopes. Defaults to the hostname.
	Origin string
}

// envelope is the wire format on the Redis channel. Origin is informational; every instance,
// the sender included, re-broadcasts what it receives.
type envelope struct {
	V      int                 `json:"v"`
	Origin string              `json:"origin,omitempty"`
	Msg    realtime.SSEMessage `json:"msg"`
}

type redisBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
	origin  string
}

func NewRedisBus(log *logger.Logger, cfg RedisConfig) (Bus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(cfg.Channel)
	if ch == "" {
		ch = defaultChannel
	}
	origin := strings.TrimSpace(cfg.Origin)
	if origin == "" {
		origin, _ = os.Hostname()
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	busLog := log.With("service", "RedisSSEBus", "channel", ch)
	busLog.Info("Redis SSE bus connected", "addr", addr, "origin", origin)
	return &redisBus{
		log:     busLog,
		rdb:     rdb,
		channel: ch,
		origin:  origin,
	}, nil
}

func (b *redisBus) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis SSE bus not initialized")
	}
	if msg.Channel == "" {
		return errors.New("sse message without channel")
	}
	raw, err := json.Marshal(envelope{V: envelopeV1, Origin: b.origin, Msg: msg})
	if err != nil {
		return fmt.Errorf("encode sse envelope: %w", err)
	}
	// autosave status events are fire-and-forget; never let a slow Redis hold a save
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, publishTimeout)
		defer cancel()
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *redisBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis SSE bus not initialized")
	}
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)

	// wait for the subscription confirmation so nothing published after return is lost
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					b.log.Warn("Redis SSE subscription closed")
					return
				}
				msg, err := decodeEnvelope([]byte(m.Payload))
				if err != nil {
					b.log.Warn("Dropping Redis SSE payload", "error", err)
					continue
				}
				onMsg(msg)
			}
		}
	}()

	return nil
}

func decodeEnvelope(raw []byte) (realtime.SSEMessage, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return realtime.SSEMessage{}, fmt.Errorf("decode sse envelope: %w", err)
	}
	if env.V != envelopeV1 {
		return realtime.SSEMessage{}, fmt.Errorf("unsupported sse envelope version %d", env.V)
	}
	if env.Msg.Channel == "" {
		return realtime.SSEMessage{}, errors.New("sse envelope without channel")
	}
	return env.Msg, nil
}

func (b *redisBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
