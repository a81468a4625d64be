package store

import (
	"context"
	"strings"
	"sync"

	"github.com/kbukum/gonogo/logger"
)

func init() {
	Register("memory", func(_ context.Context, cfg Config, _ *logger.Logger) (Backend, error) {
		return NewMemoryBackend(strings.TrimPrefix(cfg.URI, "memory://")), nil
	})
}

// MemoryBackend keeps records in process memory. It backs memory:// URIs
// for local runs and is the recording backend in tests.
type MemoryBackend struct {
	name string

	mu      sync.Mutex
	records map[string][]Record
	closed  bool

	// InsertErr, when set, is returned by every Insert.
	InsertErr error
	// CloseErr, when set, is returned by Close.
	CloseErr error
}

// NewMemoryBackend returns an empty backend labelled name.
func NewMemoryBackend(name string) *MemoryBackend {
	if name == "" {
		name = "local"
	}
	return &MemoryBackend{name: name, records: make(map[string][]Record)}
}

func (m *MemoryBackend) Name() string   { return "memory" }
func (m *MemoryBackend) Target() string { return m.name }

func (m *MemoryBackend) Insert(_ context.Context, collection string, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertErr != nil {
		return m.InsertErr
	}
	if m.closed {
		return ErrClosed
	}
	m.records[collection] = append(m.records[collection], rec)
	return nil
}

func (m *MemoryBackend) Close(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return m.CloseErr
}

// Records returns a copy of the records written to collection.
func (m *MemoryBackend) Records(collection string) []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Record(nil), m.records[collection]...)
}

// Closed reports whether Close has been called.
func (m *MemoryBackend) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
