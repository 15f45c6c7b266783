package logger

import (
	"paper_bot/pkg/logger"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module("logger",
		fx.Provide(
			func() (*zap.Logger, error) {
				return zap.NewProduction()
			},
		),
		fx.Invoke(func(l *zap.Logger) {
			logger.Init(l)
			logger.SetServiceName("paper_bot")
		}),
	)
}
