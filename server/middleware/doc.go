// Package middleware holds the HTTP middleware stack: request IDs, CORS,
// body size limits and request logging at the handler level, plus gin-level
// panic recovery and request metrics.
package middleware
