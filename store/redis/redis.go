// Package redis registers the Redis backend for redis:// and rediss://
// store URIs. Each collection is a list; every record is appended as one
// JSON document.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/gonogo/logger"
	"github.com/kbukum/gonogo/store"
)

func init() {
	store.Register("redis", Dial)
	store.Register("rediss", Dial)
}

// Backend appends records to Redis lists.
type Backend struct {
	rdb    *goredis.Client
	addr   string
	db     int
	closed bool
	mu     sync.Mutex
}

var _ store.Backend = (*Backend)(nil)

// document is the JSON form of a stored record.
type document struct {
	Data       any        `json:"data"`
	SessionID  string     `json:"session_id,omitempty"`
	ReceivedAt *time.Time `json:"received_at,omitempty"`
}

// Dial parses cfg.URI, opens a client and pings the server.
func Dial(ctx context.Context, cfg store.Config, log *logger.Logger) (store.Backend, error) {
	opts, err := goredis.ParseURL(cfg.URI)
	if err != nil {
		return nil, fmt.Errorf("parse redis uri: %w", err)
	}
	opts.DialTimeout = cfg.Timeout()
	if cfg.TLS.Enabled() {
		tlsCfg, err := cfg.TLS.Build()
		if err != nil {
			return nil, fmt.Errorf("redis tls: %w", err)
		}
		if tlsCfg.ServerName == "" {
			tlsCfg.ServerName, _, _ = net.SplitHostPort(opts.Addr)
		}
		opts.TLSConfig = tlsCfg
	}

	rdb := goredis.NewClient(opts)
	pong, err := rdb.Ping(ctx).Result()
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	if pong != "PONG" {
		_ = rdb.Close()
		return nil, fmt.Errorf("unexpected redis ping response: %s", pong)
	}

	log.Debug("Redis client created", map[string]interface{}{
		"addr": opts.Addr,
		"db":   opts.DB,
	})
	return &Backend{rdb: rdb, addr: opts.Addr, db: opts.DB}, nil
}

// Encode returns the JSON document stored for rec.
func Encode(rec store.Record) ([]byte, error) {
	doc := document{Data: rec.Data, SessionID: rec.SessionID}
	if !rec.ReceivedAt.IsZero() {
		at := rec.ReceivedAt.UTC()
		doc.ReceivedAt = &at
	}
	return json.Marshal(doc)
}

func (b *Backend) Name() string { return "redis" }

func (b *Backend) Target() string { return fmt.Sprintf("%s/%d", b.addr, b.db) }

func (b *Backend) Insert(ctx context.Context, collection string, rec store.Record) error {
	data, err := Encode(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return b.rdb.RPush(ctx, collection, data).Err()
}

// Close closes the client. Safe to call multiple times.
func (b *Backend) Close(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.rdb.Close()
}
