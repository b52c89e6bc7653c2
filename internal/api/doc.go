// Package api hosts the optional read-only HTTP surface of the poller:
//   - GET /healthz for liveness probes.
//   - GET /metrics for Prometheus scraping.
//   - GET /v1/observation for the last successful observation.
package api
