/*
Package observability provides Prometheus metrics for the flipper
pipeline.

Metrics are driven by domain.LifecycleHooks, so the engine stays
decoupled from the metrics backend: the daemon bridges the two by
passing Metrics.Hooks() to the engine and mounting Metrics.Handler()
on the status server.
*/
package observability
