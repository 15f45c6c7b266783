package service

import (
	"context"
	"time"

	"paper_bot/internal/models"
	"paper_bot/pkg/logger"
)

// attemptOpen — попытка открытия по сигналу. Любой отказ — молчаливый скип
// с логом: сигналы без капасити не ставятся в очередь, а дропаются.
func (e *Engine) attemptOpen(ctx context.Context, sig models.Signal, now time.Time) {
	if sig.Confidence < e.cfg.MinConfidence {
		logger.Info("[SKIP] %s %s conf=%.2f < %.2f", sig.Symbol, sig.Side, sig.Confidence, e.cfg.MinConfidence)
		SignalsSkipped.WithLabelValues("low_confidence").Inc()
		return
	}
	if sig.Price <= 0 {
		SignalsSkipped.WithLabelValues("bad_price").Inc()
		return
	}

	if ok, reason := e.gate.CanOpen(now); !ok {
		logger.Info("[SKIP] %s %s: %s", sig.Symbol, sig.Side, reason)
		SignalsSkipped.WithLabelValues("risk_gate").Inc()
		return
	}

	sub, ok := e.alloc.Available()
	if !ok {
		logger.Info("[SKIP] %s %s: no free sub-portfolio", sig.Symbol, sig.Side)
		SignalsSkipped.WithLabelValues("no_capacity").Inc()
		return
	}

	size := e.alloc.Size(sub, sig.Volatility, e.cfg.StopLossPct, e.cfg.MaxPositionPct)
	if size <= 0 {
		logger.Info("[SKIP] %s %s: sized to zero", sig.Symbol, sig.Side)
		SignalsSkipped.WithLabelValues("zero_size").Inc()
		return
	}

	dir := sig.Side.Direction()
	var sl, tp float64
	if dir == models.DirectionLong {
		sl = sig.Price * (1 - e.cfg.StopLossPct)
		tp = sig.Price * (1 + e.cfg.TakeProfitPct)
	} else {
		sl = sig.Price * (1 + e.cfg.StopLossPct)
		tp = sig.Price * (1 - e.cfg.TakeProfitPct)
	}

	p := &models.Position{
		ID:           newPositionID(now),
		Symbol:       sig.Symbol,
		Direction:    dir,
		EntryPrice:   sig.Price,
		Quantity:     size / sig.Price,
		PositionSize: size,
		StopLoss:     sl,
		TakeProfit:   tp,
		OpenedAt:     now,
		PortfolioID:  sub.ID,
		Status:       models.StatusOpen,
	}

	if err := e.alloc.Debit(sub.ID, size); err != nil {
		// Available уже выбрал свободный слайс, ошибка тут — баг учёта
		e.fatalf("open %s: %v", p.ID, err)
		return
	}

	e.open[p.ID] = p
	e.gate.RecordOpened(now, size)

	PositionsOpened.WithLabelValues(p.Symbol, string(p.Direction)).Inc()
	e.publish()

	logger.Info("[OPEN] %s %s %s @ %.4f size=%.2f SL=%.4f TP=%.4f %s (%s)",
		p.ID, p.Symbol, p.Direction, p.EntryPrice, size, sl, tp, sub.ID, sig.Reason)
	e.sendf("✅ OPEN %s %s @ %.4f | size=%.2f SL=%.4f TP=%.4f | %s",
		p.Symbol, p.Direction, p.EntryPrice, size, sl, tp, sub.ID)

	e.saveSnapshot(ctx)
}
