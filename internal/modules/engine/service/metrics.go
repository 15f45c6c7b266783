package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики торгового ядра: счётчики жизненного цикла позиций и гейджи
// состояния капитала. Экспонируются на /metrics health-сервера.

var PositionsOpened = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "paper_bot",
		Subsystem: "engine",
		Name:      "positions_opened_total",
		Help:      "Total number of opened positions",
	},
	[]string{"symbol", "direction"},
)

var PositionsClosed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "paper_bot",
		Subsystem: "engine",
		Name:      "positions_closed_total",
		Help:      "Total number of closed positions by reason",
	},
	[]string{"symbol", "reason"},
)

var SignalsSkipped = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "paper_bot",
		Subsystem: "engine",
		Name:      "signals_skipped_total",
		Help:      "Signals dropped instead of opening a position",
	},
	[]string{"reason"},
)

var RealizedPnL = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "paper_bot",
		Subsystem: "engine",
		Name:      "realized_pnl",
		Help:      "Cumulative realized PnL since process start",
	},
)

var OpenPositions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "paper_bot",
		Subsystem: "engine",
		Name:      "open_positions",
		Help:      "Currently open positions",
	},
)

var TotalBalance = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "paper_bot",
		Subsystem: "engine",
		Name:      "total_balance",
		Help:      "Sum of sub-portfolio balances",
	},
)

var LedgerPending = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "paper_bot",
		Subsystem: "engine",
		Name:      "ledger_pending_records",
		Help:      "Closed trades buffered in memory awaiting persistence",
	},
)
