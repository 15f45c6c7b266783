package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"paper_bot/internal/models"

	"go.uber.org/zap"

	zlog "paper_bot/pkg/logger"
)

func init() {
	zlog.Init(zap.NewNop())
}

type fakeStore struct {
	trades    []*models.TradeRecord
	summaries []models.DailyStats
	failNext  int // сколько ближайших AppendTrade должны упасть
}

func (f *fakeStore) AppendTrade(_ context.Context, rec *models.TradeRecord) error {
	if f.failNext > 0 {
		f.failNext--
		return errors.New("store unavailable")
	}
	f.trades = append(f.trades, rec)
	return nil
}

func (f *fakeStore) WriteDailySummary(_ context.Context, s models.DailyStats) error {
	f.summaries = append(f.summaries, s)
	return nil
}

func (f *fakeStore) LoadDay(_ context.Context, date string) ([]*models.TradeRecord, error) {
	var out []*models.TradeRecord
	for _, r := range f.trades {
		if r.Daily.Date == date {
			out = append(out, r)
		}
	}
	return out, nil
}

func closedPosition(id string, pnl float64, closedAt time.Time) models.Position {
	return models.Position{
		ID:           id,
		Symbol:       "BTC-USDT",
		Direction:    models.DirectionLong,
		EntryPrice:   45000,
		ExitPrice:    45225,
		Quantity:     0.002778,
		PositionSize: 125,
		PortfolioID:  "portfolio_1",
		Status:       models.StatusClosed,
		OpenedAt:     closedAt.Add(-time.Hour),
		ClosedAt:     closedAt,
		RealizedPnL:  pnl,
		PnLPercent:   pnl / 125 * 100,
		CloseReason:  models.CloseTakeProfit,
	}
}

func TestAppendAggregatesDailyStats(t *testing.T) {
	store := &fakeStore{}
	l := NewLedger(store)
	ctx := context.Background()
	day := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	if err := l.Append(ctx, closedPosition("t1", 0.625, day)); err != nil {
		t.Fatal(err)
	}
	if err := l.Append(ctx, closedPosition("t2", -1.5, day.Add(time.Hour))); err != nil {
		t.Fatal(err)
	}

	stats := l.Daily()
	if stats.TradesCount != 2 || stats.Wins != 1 || stats.Losses != 1 {
		t.Fatalf("stats = %+v, want 2 trades, 1 win, 1 loss", stats)
	}
	if stats.WinRate != 50 {
		t.Fatalf("WinRate = %v, want 50", stats.WinRate)
	}
	if len(store.trades) != 2 {
		t.Fatalf("persisted trades = %d, want 2", len(store.trades))
	}
	// каждая запись несёт срез статистики на момент закрытия
	if store.trades[0].Daily.TradesCount != 1 || store.trades[1].Daily.TradesCount != 2 {
		t.Fatalf("records carry wrong stats snapshots: %+v / %+v",
			store.trades[0].Daily, store.trades[1].Daily)
	}
}

func TestAppendRejectsDuplicateAndOpenPositions(t *testing.T) {
	l := NewLedger(&fakeStore{})
	ctx := context.Background()
	day := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	pos := closedPosition("t1", 1, day)
	if err := l.Append(ctx, pos); err != nil {
		t.Fatal(err)
	}
	if err := l.Append(ctx, pos); err == nil {
		t.Fatal("duplicate Append succeeded, want error")
	}

	open := pos
	open.ID = "t2"
	open.Status = models.StatusOpen
	if err := l.Append(ctx, open); err == nil {
		t.Fatal("Append of open position succeeded, want error")
	}
}

func TestAppendBuffersOnStoreFailure(t *testing.T) {
	store := &fakeStore{failNext: 2}
	l := NewLedger(store)
	ctx := context.Background()
	day := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	if err := l.Append(ctx, closedPosition("t1", 1, day)); err != nil {
		t.Fatal(err)
	}
	if l.PendingCount() != 1 {
		t.Fatalf("PendingCount = %d, want 1", l.PendingCount())
	}

	// вторая попытка тоже падает, буфер сохраняет порядок
	if err := l.Append(ctx, closedPosition("t2", -1, day)); err != nil {
		t.Fatal(err)
	}
	if l.PendingCount() != 2 {
		t.Fatalf("PendingCount = %d, want 2", l.PendingCount())
	}

	// стор ожил — флаш доносит всё в исходном порядке
	l.Flush(ctx)
	if l.PendingCount() != 0 {
		t.Fatalf("PendingCount after flush = %d, want 0", l.PendingCount())
	}
	if len(store.trades) != 2 || store.trades[0].Position.ID != "t1" {
		t.Fatalf("flushed trades out of order: %+v", store.trades)
	}
}

func TestDayRolloverWritesSummary(t *testing.T) {
	store := &fakeStore{}
	l := NewLedger(store)
	ctx := context.Background()

	day1 := time.Date(2026, 8, 28, 23, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 29, 1, 0, 0, 0, time.UTC)

	if err := l.Append(ctx, closedPosition("t1", 2, day1)); err != nil {
		t.Fatal(err)
	}
	if err := l.Append(ctx, closedPosition("t2", 3, day2)); err != nil {
		t.Fatal(err)
	}

	if len(store.summaries) != 1 || store.summaries[0].Date != "2026-08-28" {
		t.Fatalf("summaries = %+v, want one for 2026-08-28", store.summaries)
	}
	if got := l.Daily(); got.Date != "2026-08-29" || got.TradesCount != 1 {
		t.Fatalf("Daily after rollover = %+v, want fresh day with 1 trade", got)
	}
}

func TestRecoverRebuildsStatsFromLedger(t *testing.T) {
	store := &fakeStore{}
	l := NewLedger(store)
	ctx := context.Background()
	day := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	_ = l.Append(ctx, closedPosition("t1", 2, day))
	_ = l.Append(ctx, closedPosition("t2", -1, day))

	restored := NewLedger(store)
	if err := restored.Recover(ctx, "2026-08-28"); err != nil {
		t.Fatal(err)
	}

	if restored.Daily() != l.Daily() {
		t.Fatalf("recovered stats = %+v, want %+v", restored.Daily(), l.Daily())
	}
	// восстановленный леджер не принимает уже записанные id
	if err := restored.Append(ctx, closedPosition("t1", 2, day)); err == nil {
		t.Fatal("Append of recovered id succeeded, want duplicate error")
	}
}
