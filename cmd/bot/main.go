package main

import (
	"context"
	"log"

	"paper_bot/internal/modules/config"
	"paper_bot/internal/modules/engine"
	"paper_bot/internal/modules/health"
	"paper_bot/internal/modules/ledger"
	zlog "paper_bot/internal/modules/logger"
	"paper_bot/internal/modules/marketdata"
	"paper_bot/internal/modules/portfolio"
	"paper_bot/internal/modules/postgres"
	"paper_bot/internal/modules/riskgate"
	"paper_bot/internal/modules/state"
	"paper_bot/internal/modules/strategy"
	telegram "paper_bot/internal/modules/telegram_bot"
	"paper_bot/internal/modules/tracing"

	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		zlog.Module(),
		config.Module(),
		tracing.Module(),
		postgres.Module(),
		state.Module(),
		health.Module(),
		marketdata.Module(),
		strategy.Module(),
		riskgate.Module(),
		portfolio.Module(),
		ledger.Module(),
		telegram.Module(),
		engine.Module(),
	)
	if err := app.Start(context.Background()); err != nil {
		log.Fatal(err)
	}
	<-app.Done()
	if err := app.Stop(context.Background()); err != nil {
		log.Fatal(err)
	}
}
