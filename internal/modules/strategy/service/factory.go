package service

import (
	"paper_bot/internal/modules/config"
)

func NewEngine(cfg *config.Config) Engine {
	return NewEMARSI(cfg)
}
