package models

import "time"

type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

type PositionStatus string

const (
	StatusOpen   PositionStatus = "OPEN"
	StatusClosed PositionStatus = "CLOSED"
)

// CloseReason — почему позиция была закрыта.
type CloseReason string

const (
	CloseStopLoss   CloseReason = "STOP_LOSS"
	CloseTakeProfit CloseReason = "TAKE_PROFIT"
	CloseTimeExit   CloseReason = "TIME_EXIT"
	CloseStagnation CloseReason = "STAGNATION_EXIT"
	CloseManualStop CloseReason = "MANUAL_STOP"
)

// Position — одна сделка. После перехода в CLOSED запись не мутируется.
type Position struct {
	ID           string         `json:"id"`
	Symbol       string         `json:"symbol"`
	Direction    Direction      `json:"direction"`
	EntryPrice   float64        `json:"entryPrice"`
	Quantity     float64        `json:"quantity"`
	PositionSize float64        `json:"positionSize"` // EntryPrice * Quantity, фиксируется при открытии
	StopLoss     float64        `json:"stopLossPrice"`
	TakeProfit   float64        `json:"takeProfitPrice"`
	OpenedAt     time.Time      `json:"openedAt"`
	PortfolioID  string         `json:"portfolioId"`
	Status       PositionStatus `json:"status"`

	// Заполняются только при закрытии.
	ExitPrice   float64     `json:"exitPrice,omitempty"`
	ClosedAt    time.Time   `json:"closedAt,omitempty"`
	RealizedPnL float64     `json:"realizedPnL,omitempty"`
	PnLPercent  float64     `json:"pnlPercent,omitempty"`
	CloseReason CloseReason `json:"closeReason,omitempty"`
}

func (p *Position) IsOpen() bool { return p.Status == StatusOpen }

// UnrealizedPnL по текущей цене (для стагнационного выхода и /status).
func (p *Position) UnrealizedPnL(price float64) float64 {
	if p.Direction == DirectionLong {
		return (price - p.EntryPrice) * p.Quantity
	}
	return (p.EntryPrice - price) * p.Quantity
}

func (p *Position) UnrealizedPnLPercent(price float64) float64 {
	if p.PositionSize <= 0 {
		return 0
	}
	return p.UnrealizedPnL(price) / p.PositionSize * 100
}
