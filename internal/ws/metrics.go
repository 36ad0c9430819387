package ws

import "expvar"

var (
	metricConnectionsOpen  = expvar.NewInt("ws_connections_open")
	metricConnectionsTotal = expvar.NewInt("ws_connections_total")
	metricMessagesIn       = expvar.NewInt("ws_messages_in_total")
	metricRateLimited      = expvar.NewInt("ws_rate_limited_total")
	metricSlowClients      = expvar.NewInt("ws_slow_clients_total")
)
