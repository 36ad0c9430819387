package eventbus

import "expvar"

var (
	metricPublished     = expvar.NewInt("eventbus_published_total")
	metricPublishErrors = expvar.NewInt("eventbus_publish_errors_total")
)
