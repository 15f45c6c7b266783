package models

import "time"

// RiskState — счётчики одного инстанса бота.
// DailyTradeCount и DailyRiskUsed сбрасываются при смене календарной даты,
// ConsecutiveLosses и LastLossAt переживают границу дня — так работал источник,
// и это осознанно сохранено (см. DESIGN.md).
type RiskState struct {
	Date              string    `json:"date"` // YYYY-MM-DD последнего сброса
	DailyTradeCount   int       `json:"dailyTradeCount"`
	ConsecutiveLosses int       `json:"consecutiveLossCount"`
	LastLossAt        time.Time `json:"lastLossTimestamp,omitempty"`
	DailyRiskUsed     float64   `json:"dailyRiskUsed"` // доля капитала, открытая сегодня
}

// DailyStats — агрегат по закрытым сделкам за календарный день.
type DailyStats struct {
	Date        string  `json:"date"`
	TradesCount int     `json:"tradesCount"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	ProfitLoss  float64 `json:"profitLoss"`
	WinRate     float64 `json:"winRate"`
}

func (s *DailyStats) Add(pnl float64) {
	s.TradesCount++
	if pnl > 0 {
		s.Wins++
	} else {
		s.Losses++
	}
	s.ProfitLoss += pnl
	if s.TradesCount > 0 {
		s.WinRate = float64(s.Wins) / float64(s.TradesCount) * 100
	}
}
