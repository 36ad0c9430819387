package spectatorgateway

import "expvar"

var (
	metricFeedStreamsTotal  = expvar.NewInt("room_feed_streams_total")
	metricFeedStreamsActive = expvar.NewInt("room_feed_streams_active")
	metricFeedReplayed      = expvar.NewInt("room_feed_replayed_events_total")
	metricFeedStateReads    = expvar.NewInt("room_feed_state_reads_total")
)
