package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/kbukum/gonogo/logger"
)

// Record is one stored submission. Data is the participant's payload as
// decoded from JSON; SessionID and ReceivedAt are set only when session
// recording is enabled.
type Record struct {
	Data       any
	SessionID  string
	ReceivedAt time.Time
}

// Backend is an open connection to a document store.
type Backend interface {
	// Name identifies the store kind in logs ("mongodb", "redis", ...).
	Name() string
	// Target describes where records go, without credentials.
	Target() string
	// Insert writes rec as one document into collection.
	Insert(ctx context.Context, collection string, rec Record) error
	// Close releases the connection.
	Close(ctx context.Context) error
}

// Dialer opens a Backend for cfg.URI. It must verify the store is reachable
// before returning.
type Dialer func(ctx context.Context, cfg Config, log *logger.Logger) (Backend, error)

var (
	dialersMu sync.RWMutex
	dialers   = make(map[string]Dialer)
)

// Register makes a backend available for a URI scheme. Backend packages
// call it from init.
func Register(scheme string, d Dialer) {
	dialersMu.Lock()
	defer dialersMu.Unlock()
	dialers[strings.ToLower(scheme)] = d
}

// Schemes returns the registered URI schemes, sorted.
func Schemes() []string {
	dialersMu.RLock()
	defer dialersMu.RUnlock()
	out := make([]string, 0, len(dialers))
	for s := range dialers {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

func dialerFor(uri string) (Dialer, string, error) {
	scheme, _, ok := strings.Cut(uri, "://")
	if !ok || scheme == "" {
		return nil, "", fmt.Errorf("%w: URI has no scheme", ErrUnknownScheme)
	}
	scheme = strings.ToLower(scheme)

	dialersMu.RLock()
	d, found := dialers[scheme]
	dialersMu.RUnlock()
	if !found {
		return nil, scheme, fmt.Errorf("%w %q (registered: %s)", ErrUnknownScheme, scheme, strings.Join(Schemes(), ", "))
	}
	return d, scheme, nil
}
