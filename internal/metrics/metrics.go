package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Exported via /metrics in cmd/app.
var (
	GamesStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wargame_games_started_total",
		Help: "Matches that reached two seated players.",
	})

	RoundsPlayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wargame_rounds_played_total",
		Help: "Resolved reveal rounds across all matches.",
	})

	Timeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wargame_timebank_timeouts_total",
		Help: "Matches concluded by timebank expiry.",
	})

	Reconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wargame_reconnects_total",
		Help: "Joins that resumed an existing seat.",
	})

	Disconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wargame_disconnects_total",
		Help: "Connections that dropped while mapped to a match.",
	})

	ActiveGames = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wargame_active_games",
		Help: "Full matches currently indexed by the registry.",
	})

	ConnectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wargame_connected_clients",
		Help: "Open websocket connections.",
	})
)
