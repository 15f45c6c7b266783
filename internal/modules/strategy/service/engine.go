package service

import "paper_bot/internal/models"

type Engine interface {
	// ok==true когда есть сигнал
	OnCandle(t models.CandleTick) (sig models.Signal, ok bool)

	IsReady(symbol string) bool
	Dump(symbol string) string
	Name() string
}
