// Package services holds the business logic between the HTTP transport and
// the ingest/analytics packages. DashboardService owns the session state
// machine; HealthService answers liveness and readiness probes.
package services
