// Package analytics derives the chart-ready dashboard metrics from the
// canonical record collections produced by internal/ingest. Compute is the
// single entry point; it is pure and deterministic, so running it twice on
// the same collections yields a deep-equal snapshot.
package analytics
