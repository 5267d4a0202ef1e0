// Package httpapi serves the hub as a JSON API under /v1, with Prometheus
// metrics on /metrics and a liveness probe on /healthz.
package httpapi
