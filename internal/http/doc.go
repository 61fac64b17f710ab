// Package http contains the Gin handlers for the tool service: liveness
// and health checks, service and tool listings, tool execution, and the
// per-service status panel.
package http
