package service

import (
	"context"
	"time"

	"paper_bot/internal/models"
	"paper_bot/pkg/logger"
)

// evaluateCloses проверяет открытые позиции символа в детерминированном
// порядке условий: стоп-лосс, тейк-профит, выход по времени, стагнация.
// Первый сработавший выигрывает.
func (e *Engine) evaluateCloses(ctx context.Context, symbol string, price float64, now time.Time) {
	for _, p := range e.openPositions() {
		if p.Symbol != symbol {
			continue
		}
		if reason, ok := e.closeReason(p, price, now); ok {
			e.closePosition(ctx, p, price, now, reason)
			e.saveSnapshot(ctx)
		}
	}
}

func (e *Engine) closeReason(p *models.Position, price float64, now time.Time) (models.CloseReason, bool) {
	long := p.Direction == models.DirectionLong

	// 1. стоп-лосс
	if (long && price <= p.StopLoss) || (!long && price >= p.StopLoss) {
		return models.CloseStopLoss, true
	}
	// 2. тейк-профит
	if (long && price >= p.TakeProfit) || (!long && price <= p.TakeProfit) {
		return models.CloseTakeProfit, true
	}

	held := now.Sub(p.OpenedAt)

	// 3. максимальное время удержания
	if e.cfg.MaxHoldDuration > 0 && held >= e.cfg.MaxHoldDuration {
		return models.CloseTimeExit, true
	}
	// 4. мягкий выход: долго висим без минимальной прибыли
	if e.cfg.StagnationAfter > 0 && held >= e.cfg.StagnationAfter &&
		p.UnrealizedPnLPercent(price) < e.cfg.StagnationMinProfitPct {
		return models.CloseStagnation, true
	}

	return "", false
}

// closePosition — единственный путь OPEN -> CLOSED. Закрытая запись дальше
// не мутируется, только уходит в леджер.
func (e *Engine) closePosition(ctx context.Context, p *models.Position, exitPrice float64, now time.Time, reason models.CloseReason) {
	if p.Status == models.StatusClosed {
		e.fatalf("double close of position %s", p.ID)
		return
	}

	var pnl float64
	if p.Direction == models.DirectionLong {
		pnl = (exitPrice - p.EntryPrice) * p.Quantity
	} else {
		pnl = (p.EntryPrice - exitPrice) * p.Quantity
	}

	p.Status = models.StatusClosed
	p.ExitPrice = exitPrice
	p.ClosedAt = now
	p.RealizedPnL = pnl
	p.PnLPercent = pnl / p.PositionSize * 100
	p.CloseReason = reason

	if err := e.alloc.Credit(p.PortfolioID, p.PositionSize+pnl); err != nil {
		e.fatalf("close %s: %v", p.ID, err)
		return
	}
	e.realizedPnL += pnl

	e.gate.RecordClosed(now, pnl)

	// сбой стора буферизуется внутри леджера; ошибка здесь — нарушение
	// инварианта (двойная запись), а не проблема персистентности
	if err := e.ledger.Append(ctx, *p); err != nil {
		e.fatalf("ledger append %s: %v", p.ID, err)
		return
	}

	delete(e.open, p.ID)

	PositionsClosed.WithLabelValues(p.Symbol, string(reason)).Inc()
	e.publish()

	logger.Info("[CLOSE] %s %s %s @ %.4f -> %.4f pnl=%.4f (%.2f%%) reason=%s",
		p.ID, p.Symbol, p.Direction, p.EntryPrice, exitPrice, pnl, p.PnLPercent, reason)
	e.sendf("%s CLOSE %s %s @ %.4f | pnl=%.4f (%.2f%%) | %s",
		pnlEmoji(pnl), p.Symbol, p.Direction, exitPrice, pnl, p.PnLPercent, reason)

	e.assertConservation()
}

func pnlEmoji(pnl float64) string {
	if pnl > 0 {
		return "💰"
	}
	return "🔻"
}
