// Package observability wires OpenTelemetry metrics and tracing for the
// service: OTLP HTTP exporters, a meter provider with auth- and
// request-level instruments, and health reporting types shared by the
// health endpoint and the Mongo layer.
package observability
