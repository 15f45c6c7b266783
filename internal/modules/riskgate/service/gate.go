package service

import (
	"fmt"
	"time"

	"paper_bot/internal/helper"
	"paper_bot/internal/models"
	"paper_bot/internal/modules/config"
)

// Gate — единственная точка принятия решения "можно ли открывать сделку".
// Вызывается только из тикового цикла движка, поэтому без мьютекса.
type Gate struct {
	cfg   *config.Config
	state models.RiskState
}

func NewGate(cfg *config.Config) *Gate {
	return &Gate{
		cfg: cfg,
		state: models.RiskState{
			Date: helper.DateKey(time.Now()),
		},
	}
}

// CanOpen — проверка без побочных эффектов, кроме сброса дневных счётчиков
// при смене календарной даты. ConsecutiveLosses и кулдаун границу дня
// переживают: так вёл себя источник, поведение сохранено намеренно.
func (g *Gate) CanOpen(now time.Time) (bool, string) {
	g.rollover(now)

	if g.state.DailyTradeCount >= g.cfg.MaxTradesPerDay {
		return false, fmt.Sprintf("daily trade limit reached (%d/%d)",
			g.state.DailyTradeCount, g.cfg.MaxTradesPerDay)
	}
	if g.state.ConsecutiveLosses >= g.cfg.MaxConsecutiveLosses {
		return false, fmt.Sprintf("consecutive loss limit reached (%d/%d)",
			g.state.ConsecutiveLosses, g.cfg.MaxConsecutiveLosses)
	}
	if !g.state.LastLossAt.IsZero() && now.Sub(g.state.LastLossAt) <= g.cfg.CooldownAfterLoss {
		return false, fmt.Sprintf("cooldown after loss until %s",
			g.state.LastLossAt.Add(g.cfg.CooldownAfterLoss).Format(time.RFC3339))
	}
	return true, ""
}

func (g *Gate) rollover(now time.Time) {
	key := helper.DateKey(now)
	if key == g.state.Date {
		return
	}
	g.state.Date = key
	g.state.DailyTradeCount = 0
	g.state.DailyRiskUsed = 0
}

// RecordOpened фиксирует открытие: дневной счётчик и использованный риск.
func (g *Gate) RecordOpened(now time.Time, positionSize float64) {
	g.rollover(now)
	g.state.DailyTradeCount++
	if g.cfg.TotalCapital > 0 {
		g.state.DailyRiskUsed += positionSize / g.cfg.TotalCapital
	}
}

// RecordClosed: прибыль обнуляет серию убытков, убыток наращивает её и
// взводит кулдаун.
func (g *Gate) RecordClosed(now time.Time, pnl float64) {
	if pnl > 0 {
		g.state.ConsecutiveLosses = 0
		return
	}
	g.state.ConsecutiveLosses++
	g.state.LastLossAt = now
}

func (g *Gate) State() models.RiskState { return g.state }

func (g *Gate) SetState(s models.RiskState) { g.state = s }
