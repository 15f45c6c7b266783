package state

import (
	"context"

	"paper_bot/internal/modules/config"
	"paper_bot/internal/modules/state/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("state",
		fx.Provide(
			func(lc fx.Lifecycle, ctx context.Context, cfg *config.Config) (service.BlobStore, error) {
				store, err := service.NewRedisStore(ctx, service.RedisConfig{
					Addr:     cfg.Redis.Addr,
					Password: cfg.Redis.Password,
					DB:       cfg.Redis.DB,
				})
				if err != nil {
					return nil, err
				}
				lc.Append(fx.Hook{
					OnStop: func(_ context.Context) error {
						return store.Close()
					},
				})
				return store, nil
			},
			service.NewKeeper,
		),
	)
}
