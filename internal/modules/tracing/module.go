package tracing

import (
	"context"
	"paper_bot/internal/modules/config"
	"paper_bot/pkg/tracing"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("tracing",
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config) error {
			tracer, closeFn, err := tracing.InitTracer(tracing.Config{
				Host: cfg.Jaeger.Host,
				Port: cfg.Jaeger.Port,
			})
			if err != nil {
				return err
			}
			opentracing.SetGlobalTracer(tracer)
			lc.Append(fx.Hook{
				OnStop: func(_ context.Context) error {
					closeFn()
					return nil
				},
			})
			return nil
		}),
	)
}
