package models

import "time"

// BotState — снапшот всего мутируемого состояния для рестарта процесса.
type BotState struct {
	SavedAt    time.Time       `json:"savedAt"`
	Risk       RiskState       `json:"risk"`
	Portfolios []*SubPortfolio `json:"portfolios"`
	Open       []*Position     `json:"openPositions"`
}

// TradeRecord — строка Trade Ledger: закрытая позиция плюс срез дневной
// статистики на момент закрытия.
type TradeRecord struct {
	Position Position   `json:"position"`
	Daily    DailyStats `json:"dailyStats"`
}
