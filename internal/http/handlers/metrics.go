package handlers

import "net/http"

// MetricsHandler serves the Prometheus registry, or 404 when metrics are disabled.
func (a *App) MetricsHandler() http.Handler {
	if a.Metrics == nil {
		return http.HandlerFunc(a.NotFound)
	}
	return a.Metrics.Handler()
}
