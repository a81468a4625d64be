// Package server provides the HTTP server: a gin engine served over HTTP/1.1
// and h2c, with a handler-level middleware chain and the operational
// endpoints.
//
//	srv := server.New(cfg, log)
//	srv.ApplyMiddleware(metrics)
//	srv.RegisterDefaultEndpoints("gonogo", registry.HealthAll)
//	srv.Engine().GET("/", page)
//	_ = registry.Register(server.NewComponent(srv))
//
// Middleware (server/middleware): request ID, CORS, body size limit and
// request logging wrap every request; panic recovery and metrics run inside
// gin.
//
// Endpoints (server/endpoint): /health aggregates component health, /ready
// fails only when a component is unhealthy, /alive always answers, /info
// reports the build.
package server
