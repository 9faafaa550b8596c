// Package server provides the HTTP server for the API: Gin mounted on a
// root ServeMux with h2c so HTTP/2 works without TLS.
//
// # Middleware
//
// Built-in middleware (server/middleware):
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: request ID generation and propagation
//   - Correlation: correlation IDs and audit breadcrumbs
//   - CORS: cross-origin resource sharing
//   - BodySizeLimit: request body size limits
//   - RequestLogger: request logging with duration and metrics
//   - RateLimit: sliding-window rate limiting
//   - RequireAuth: bearer-token authentication
//
// # Endpoints
//
// Built-in endpoints (server/endpoint):
//
//   - /health: component health aggregation
//   - /info: version and build information
//   - /metrics: runtime metrics snapshot
package server
