package riskgate

import (
	"paper_bot/internal/modules/riskgate/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("riskgate",
		fx.Provide(
			service.NewGate,
		),
	)
}
