// Package endpoint serves the operational probes: component health,
// readiness, liveness and build info.
package endpoint
