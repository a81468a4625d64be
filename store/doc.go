// Package store connects to the experiment's document store and records
// submissions.
//
// Connect never fails: with no URI, or when the backend cannot be reached,
// it returns a Disconnected handle and the experiment keeps running without
// persistence.
//
//	h := store.Connect(ctx, cfg, log)
//	if err := h.Insert(ctx, store.Record{Data: payload}); err != nil { ... }
//
// The URI scheme selects the backend. Backends register themselves from
// their packages, so the binary blank-imports the ones it ships:
//
//	import (
//	    _ "github.com/kbukum/gonogo/store/mongo"  // mongodb://, mongodb+srv://
//	    _ "github.com/kbukum/gonogo/store/redis"  // redis://, rediss://
//	    _ "github.com/kbukum/gonogo/store/sqlite" // sqlite://
//	)
//
// The in-process memory:// backend is always available.
package store
