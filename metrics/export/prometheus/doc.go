// Package prometheus provides Prometheus collectors for chatgate metrics.
//
// [NewPrometheusExporter] accepts a [chatgate.Engine] and exposes an
// [http.Handler] that renders all chatgate counters in Prometheus text
// exposition format. Counter names are prefixed chatgate_*_total.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry; callers mount the Handler.
//   - Mutate engine state.
package prometheus
