package service

import (
	"context"
	"fmt"

	"paper_bot/internal/helper"
	"paper_bot/internal/models"
	"paper_bot/pkg/logger"
)

// Store — персистентный слой леджера. Append обязан писать сделку и дневной
// агрегат атомарно (одна транзакция).
type Store interface {
	AppendTrade(ctx context.Context, rec *models.TradeRecord) error
	WriteDailySummary(ctx context.Context, stats models.DailyStats) error
	LoadDay(ctx context.Context, date string) ([]*models.TradeRecord, error)
}

// Ledger — append-only журнал закрытых сделок плюс текущий дневной агрегат.
// Упавшая запись буферизуется и повторяется: закрытая сделка не теряется.
type Ledger struct {
	store Store

	stats   models.DailyStats
	seen    map[string]bool // position id -> уже в журнале
	pending []*models.TradeRecord
}

func NewLedger(store Store) *Ledger {
	return &Ledger{
		store: store,
		seen:  map[string]bool{},
	}
}

// Recover пересчитывает дневной агрегат из журнала — отдельно сохранённому
// агрегату после рестарта не доверяем, пересчёт идемпотентен.
func (l *Ledger) Recover(ctx context.Context, date string) error {
	recs, err := l.store.LoadDay(ctx, date)
	if err != nil {
		return fmt.Errorf("ledger recover: %w", err)
	}

	l.stats = models.DailyStats{Date: date}
	for _, r := range recs {
		l.stats.Add(r.Position.RealizedPnL)
		l.seen[r.Position.ID] = true
	}
	logger.Info("ledger recovered: date=%s trades=%d pnl=%.4f",
		date, l.stats.TradesCount, l.stats.ProfitLoss)
	return nil
}

// Append фиксирует закрытую позицию. Каждый id попадает в журнал не более
// одного раза — повтор означает двойное закрытие и это ошибка инварианта.
func (l *Ledger) Append(ctx context.Context, pos models.Position) error {
	if pos.Status != models.StatusClosed {
		return fmt.Errorf("ledger: position %s is not closed", pos.ID)
	}
	if l.seen[pos.ID] {
		return fmt.Errorf("ledger: duplicate append for position %s", pos.ID)
	}

	day := helper.DateKey(pos.ClosedAt)
	if l.stats.Date != "" && l.stats.Date != day {
		// граница дня: итог прошлого дня уходит в сводку
		if err := l.store.WriteDailySummary(ctx, l.stats); err != nil {
			logger.Error("ledger: daily summary for %s failed: %v", l.stats.Date, err)
		}
		l.stats = models.DailyStats{}
	}
	if l.stats.Date == "" {
		l.stats.Date = day
	}

	l.stats.Add(pos.RealizedPnL)
	l.seen[pos.ID] = true

	rec := &models.TradeRecord{Position: pos, Daily: l.stats}
	l.pending = append(l.pending, rec)
	l.Flush(ctx)
	return nil
}

// Flush пытается дописать всё забуференное; на первой ошибке останавливается,
// остальное повторится на следующем тике.
func (l *Ledger) Flush(ctx context.Context) {
	for len(l.pending) > 0 {
		rec := l.pending[0]
		if err := l.store.AppendTrade(ctx, rec); err != nil {
			logger.Error("ledger: append %s failed, %d buffered: %v",
				rec.Position.ID, len(l.pending), err)
			return
		}
		l.pending = l.pending[1:]
	}
}

func (l *Ledger) PendingCount() int { return len(l.pending) }

func (l *Ledger) Daily() models.DailyStats { return l.stats }

// CloseDay — сводка при шатдауне (и для форс-записи на границе дня).
func (l *Ledger) CloseDay(ctx context.Context) error {
	l.Flush(ctx)
	if l.stats.Date == "" {
		return nil
	}
	if err := l.store.WriteDailySummary(ctx, l.stats); err != nil {
		return fmt.Errorf("ledger close day: %w", err)
	}
	return nil
}
