// Package types defines the shared vocabulary of the tool layer.
//
// Core Types:
//   - Service: Provider metadata with tool definitions
//   - Tool/Parameter: Structured tool descriptions handed to the agent loop
//   - Result: Uniform {success, data, error} execution outcome
//   - Context: Per-call execution context
//   - ExecuteRequest: Tool execution request
package types
