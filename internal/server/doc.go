// Package server provides the optional read-only HTTP status surface of the
// weather panel.
//
//   - GET /: the embedded status page
//   - GET /api/status: power state, health and both slot snapshots as JSON
//   - GET /api/sse: Server-Sent Events stream of slot commits
//   - GET /healthz: liveness probe
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests. It is started by
// [weatherpanel.Panel.Start] when a status port is configured.
package server
