package marketdata

import (
	"context"

	"paper_bot/internal/models"
	"paper_bot/internal/modules/config"
	"paper_bot/internal/modules/marketdata/service"
	"paper_bot/pkg/logger"

	"go.uber.org/fx"
)

func newTickChan() chan models.CandleTick {
	return make(chan models.CandleTick, 4096)
}
func asRecvOnlyTicks(ch chan models.CandleTick) <-chan models.CandleTick { return ch }

// Feed — любой источник закрытых свечей.
type Feed interface {
	Run(ctx context.Context, out chan<- models.CandleTick) error
}

func newFeed(cfg *config.Config) Feed {
	if cfg.Feed == "okx" {
		return service.NewOKXFeed(cfg)
	}
	return service.NewSyntheticFeed(cfg)
}

func Module() fx.Option {
	return fx.Module("marketdata",
		fx.Provide(
			newTickChan,     // chan models.CandleTick
			asRecvOnlyTicks, // <-chan models.CandleTick
			newFeed,
		),

		fx.Invoke(func(lc fx.Lifecycle, ctx context.Context, feed Feed, ticks chan models.CandleTick) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go func() {
						if err := feed.Run(ctx, ticks); err != nil && ctx.Err() == nil {
							logger.Error("[FEED] stopped: %v", err)
						}
					}()
					return nil
				},
			})
		}),
	)
}
