package hub

import "expvar"

var (
	metricRoomsCreated = expvar.NewInt("hub_rooms_created_total")
	metricRoomsClosed  = expvar.NewInt("hub_rooms_closed_total")
	metricRoomsActive  = expvar.NewInt("hub_rooms_active")

	metricGamesStarted  = expvar.NewInt("hub_games_started_total")
	metricGamesFinished = expvar.NewInt("hub_games_finished_total")

	metricActionsTotal  = expvar.NewInt("hub_game_actions_total")
	metricActionErrors  = expvar.NewInt("hub_game_action_errors_total")
	metricSessionPanics = expvar.NewInt("hub_game_session_panics_total")

	metricDisconnects   = expvar.NewInt("hub_player_disconnects_total")
	metricRejoins       = expvar.NewInt("hub_player_rejoins_total")
	metricGraceExpiries = expvar.NewInt("hub_grace_expiries_total")
	metricDroppedSends  = expvar.NewInt("hub_dropped_sends_total")
)
