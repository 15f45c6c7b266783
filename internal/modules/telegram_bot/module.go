package telegram

import (
	"context"

	"paper_bot/internal/modules/config"
	enginesvc "paper_bot/internal/modules/engine/service"
	healthsvc "paper_bot/internal/modules/health/service"
	"paper_bot/internal/notify"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("telegram",
		fx.Provide(
			func(cfg *config.Config, commands chan<- enginesvc.Command, health *healthsvc.State) (*notify.Telegram, error) {
				return notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, commands, health)
			},
			func(t *notify.Telegram) enginesvc.Notifier { return t },
		),

		fx.Invoke(func(lc fx.Lifecycle, t *notify.Telegram, ctx context.Context) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go t.Start(ctx)
					return nil
				},
			})
		}),
	)
}
