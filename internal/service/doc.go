// Package service implements tool discovery and dispatch.
//
// Providers register a Service definition whose tools are indexed by flat
// tool id; Execute routes a call to the owning provider and converts panics
// into structured failures so one misbehaving tool cannot take down the
// process. Providers implementing StatusReporter contribute to the status
// surface consumed by dashboards.
package service
