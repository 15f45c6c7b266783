package ledger

import (
	"paper_bot/internal/modules/ledger/service"
	"paper_bot/pkg/db"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("ledger",
		fx.Provide(
			func(tx *db.PgTxManager) service.Store {
				return service.NewPgStore(tx)
			},
			service.NewLedger,
		),
	)
}
