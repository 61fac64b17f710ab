// Command server runs the agent tool service: persistent shell sessions,
// file tools, and skills behind an HTTP API. Configuration comes from the
// environment (SHELL_*, SERVER_*, LOG_*, RATE_LIMIT_* variables).
package main
