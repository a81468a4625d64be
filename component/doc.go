// Package component defines lifecycle-managed infrastructure: anything the
// process starts before serving and stops on shutdown (the document store
// connection, the HTTP server).
//
// Components are started in registration order and stopped in reverse.
// Optional interfaces let a component describe itself and its HTTP routes
// for the startup summary.
package component
