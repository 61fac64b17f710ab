// Package server wires the tool providers, middleware, and routes into a
// runnable HTTP service with graceful shutdown.
package server
