// Package metrics collects per-matcher statistics: call and failure counts,
// latency percentiles and the number of attempts the retry loop needed.
package metrics
