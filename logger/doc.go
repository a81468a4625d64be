// Package logger provides structured logging built on zerolog.
//
// A process initialises the global logger once from Config; packages then
// derive component-scoped loggers:
//
//	log := logger.Get("store")
//	log.Info("Connected to database", map[string]interface{}{"backend": "mongodb"})
package logger
