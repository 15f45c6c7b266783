package portfolio

import (
	"paper_bot/internal/modules/portfolio/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("portfolio",
		fx.Provide(
			service.NewAllocator,
		),
	)
}
