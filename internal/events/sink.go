package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"cosmossdk.io/log"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// Sink receives committed notifications.
type Sink interface {
	Emit(ctx context.Context, ev Event) error
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) Emit(context.Context, Event) error { return nil }

// MultiSink fans out to every sink and joins their errors.
type MultiSink []Sink

func (m MultiSink) Emit(ctx context.Context, ev Event) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Emit(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogSink writes one structured log line per event.
type LogSink struct {
	Logger log.Logger
}

func (s LogSink) Emit(_ context.Context, ev Event) error {
	if s.Logger == nil {
		return nil
	}
	kv := []any{"kind", string(ev.Kind), "session", ev.SessionID, "height", ev.Height}
	switch {
	case ev.Dealer != "":
		kv = append(kv, "dealer", ev.Dealer)
	case ev.Winner != "":
		kv = append(kv, "winner", ev.Winner)
	case ev.Player != "":
		kv = append(kv, "player", ev.Player)
	}
	if ev.Action != "" {
		kv = append(kv, "action", ev.Action)
	}
	if ev.Round != "" {
		kv = append(kv, "round", ev.Round)
	}
	if !ev.Amount.IsZero() {
		kv = append(kv, "amount", ev.Amount.String())
	}
	s.Logger.Info("session event", kv...)
	return nil
}

// RedisEnvelope is the pub/sub payload. ID lets consumers drop duplicates
// when a node replays a block.
type RedisEnvelope struct {
	ID    string `json:"id"`
	Event Event  `json:"event"`
}

// RedisSink publishes each event as JSON on a Redis channel.
type RedisSink struct {
	client  redis.UniversalClient
	channel string
}

func NewRedisSink(client redis.UniversalClient, channel string) *RedisSink {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	return &RedisSink{client: client, channel: channel}
}

const DefaultRedisChannel = "pokerescrow:events"

func (s *RedisSink) Emit(ctx context.Context, ev Event) error {
	if s == nil || s.client == nil {
		return nil
	}
	b, err := json.Marshal(RedisEnvelope{ID: uuid.NewString(), Event: ev})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := s.client.Publish(ctx, s.channel, b).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", s.channel, err)
	}
	return nil
}

// MetricsSink counts events by kind and accumulates settled pot value.
type MetricsSink struct {
	events  *prometheus.CounterVec
	potPaid prometheus.Counter
}

func NewMetricsSink(reg prometheus.Registerer) (*MetricsSink, error) {
	m := &MetricsSink{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pokerescrow",
			Name:      "session_events_total",
			Help:      "Committed session lifecycle notifications by kind.",
		}, []string{"kind"}),
		potPaid: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pokerescrow",
			Name:      "pot_paid_ether_total",
			Help:      "Total pot value paid to winners, in ether.",
		}),
	}
	if reg != nil {
		if err := reg.Register(m.events); err != nil {
			return nil, fmt.Errorf("register events counter: %w", err)
		}
		if err := reg.Register(m.potPaid); err != nil {
			return nil, fmt.Errorf("register pot counter: %w", err)
		}
	}
	return m, nil
}

func (m *MetricsSink) Emit(_ context.Context, ev Event) error {
	m.events.WithLabelValues(string(ev.Kind)).Inc()
	if ev.Kind == KindSessionEnded && !ev.Amount.IsZero() {
		m.potPaid.Add(weiToEther(ev.Amount.BigInt()))
	}
	return nil
}

func weiToEther(wei *big.Int) float64 {
	f := new(big.Float).SetInt(wei)
	f.Quo(f, big.NewFloat(1e18))
	out, _ := f.Float64()
	return out
}
