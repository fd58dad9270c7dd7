// Package metrics exposes Prometheus instruments for RPC handling, tool
// dispatch, and backend calls. A nil *Metrics is a working no-op, so the
// instrument set only exists when the metrics endpoint is enabled.
package metrics
