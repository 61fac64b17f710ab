// Package middleware provides Gin middleware for the HTTP surface:
// permissive CORS and per-client-IP rate limiting.
package middleware
