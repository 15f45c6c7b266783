package engine

import (
	"context"

	"paper_bot/internal/models"
	"paper_bot/internal/modules/engine/service"

	"go.uber.org/fx"
)

func newCommandChan() chan service.Command {
	return make(chan service.Command, 64)
}
func asSendOnlyCommands(ch chan service.Command) chan<- service.Command { return ch }

func Module() fx.Option {
	return fx.Module("engine",
		fx.Provide(
			newCommandChan,     // chan service.Command
			asSendOnlyCommands, // chan<- service.Command
			service.NewEngine,
		),

		fx.Invoke(func(
			lc fx.Lifecycle,
			e *service.Engine,
			ticks <-chan models.CandleTick,
			commands chan service.Command,
			ctx context.Context,
		) {
			runCtx, cancel := context.WithCancel(ctx)
			done := make(chan struct{})

			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					e.Bootstrap(runCtx)
					go func() {
						defer close(done)
						e.Run(runCtx, ticks, commands)
					}()
					return nil
				},
				OnStop: func(stopCtx context.Context) error {
					// цикл останавливаем до дренажа: мутации остаются
					// в одном логическом потоке
					cancel()
					<-done
					e.Drain(stopCtx)
					return nil
				},
			})
		}),
	)
}
