package httptransport

import "expvar"

var (
	metricPublicRequests = expvar.NewInt("http_public_requests_total")
	metricPublicErrors   = expvar.NewInt("http_public_errors_total")
	metricAdminRejected  = expvar.NewInt("http_admin_rejected_total")
	metricHealthFailures = expvar.NewInt("http_health_failures_total")
)
