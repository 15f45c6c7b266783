package service

import (
	"context"

	"paper_bot/internal/models"
	"paper_bot/pkg/db"

	"github.com/bytedance/sonic"
	"github.com/jackc/pgx/v5"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
)

const (
	insertTradeSQL = `
		INSERT INTO trades (
			id, symbol, direction, portfolio_id,
			entry_price, exit_price, quantity, position_size,
			realized_pnl, pnl_percent, close_reason,
			opened_at, closed_at, record
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`

	upsertDailySQL = `
		INSERT INTO daily_stats (date, trades_count, wins, losses, profit_loss, win_rate)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (date) DO UPDATE SET
			trades_count = EXCLUDED.trades_count,
			wins         = EXCLUDED.wins,
			losses       = EXCLUDED.losses,
			profit_loss  = EXCLUDED.profit_loss,
			win_rate     = EXCLUDED.win_rate`

	selectDaySQL = `SELECT record FROM trades WHERE closed_at::date = $1::date ORDER BY closed_at`
)

// PgStore implement ledger store on Postgres.
type PgStore struct {
	tx *db.PgTxManager
}

func NewPgStore(tx *db.PgTxManager) *PgStore {
	return &PgStore{tx: tx}
}

// AppendTrade пишет сделку и дневной агрегат в одной транзакции: после сбоя
// между ними журнал и агрегат не могут разъехаться.
func (s *PgStore) AppendTrade(ctx context.Context, rec *models.TradeRecord) (err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ledger.append_trade")
	defer span.Finish()

	defer func() {
		if err != nil {
			err = errors.Wrap(err, "PgStore.AppendTrade")
		}
	}()

	var data []byte
	data, err = sonic.Marshal(rec)
	if err != nil {
		return err
	}

	p := rec.Position
	return s.tx.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx, insertTradeSQL,
			p.ID, p.Symbol, string(p.Direction), p.PortfolioID,
			p.EntryPrice, p.ExitPrice, p.Quantity, p.PositionSize,
			p.RealizedPnL, p.PnLPercent, string(p.CloseReason),
			p.OpenedAt, p.ClosedAt, data,
		)
		if err != nil {
			return err
		}

		d := rec.Daily
		_, err = tx.Exec(ctxTx, upsertDailySQL,
			d.Date, d.TradesCount, d.Wins, d.Losses, d.ProfitLoss, d.WinRate)
		return err
	})
}

func (s *PgStore) WriteDailySummary(ctx context.Context, d models.DailyStats) (err error) {
	defer func() {
		if err != nil {
			err = errors.Wrap(err, "PgStore.WriteDailySummary")
		}
	}()

	return s.tx.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx, upsertDailySQL,
			d.Date, d.TradesCount, d.Wins, d.Losses, d.ProfitLoss, d.WinRate)
		return err
	})
}

func (s *PgStore) LoadDay(ctx context.Context, date string) (recs []*models.TradeRecord, err error) {
	defer func() {
		if err != nil {
			err = errors.Wrap(err, "PgStore.LoadDay")
		}
	}()

	err = s.tx.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		rows, err := tx.Query(ctxTx, selectDaySQL, date)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var data []byte
			if err := rows.Scan(&data); err != nil {
				return err
			}
			var rec models.TradeRecord
			if err := sonic.Unmarshal(data, &rec); err != nil {
				return err
			}
			recs = append(recs, &rec)
		}
		return rows.Err()
	})
	return recs, err
}
