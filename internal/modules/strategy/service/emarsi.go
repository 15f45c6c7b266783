package service

import (
	"fmt"
	"sync"

	"paper_bot/internal/helper"
	"paper_bot/internal/models"
	"paper_bot/internal/modules/config"
)

// EMARSI — сигнальный движок: кросс EMA(short)/EMA(long) с RSI-фильтром.
// История цен держится per-symbol, индикаторы считаются чистыми функциями.
type EMARSI struct {
	mu sync.Mutex

	cfg *config.Config

	history  map[string][]float64
	lastSide map[string]models.Side // один сигнал на смену стороны
}

func NewEMARSI(cfg *config.Config) *EMARSI {
	return &EMARSI{
		cfg:      cfg,
		history:  map[string][]float64{},
		lastSide: map[string]models.Side{},
	}
}

func (e *EMARSI) Name() string { return "emarsi" }

func (e *EMARSI) warmup() int {
	w := e.cfg.EMALong
	if e.cfg.RSIPeriod+1 > w {
		w = e.cfg.RSIPeriod + 1
	}
	if e.cfg.VolPeriod > w {
		w = e.cfg.VolPeriod
	}
	return w
}

// capacity истории: хватает на самый длинный индикатор с запасом.
func (e *EMARSI) maxHistory() int {
	return e.warmup() * 3
}

func (e *EMARSI) OnCandle(t models.CandleTick) (models.Signal, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if t.Close <= 0 {
		return models.Signal{}, false
	}

	h := append(e.history[t.Symbol], t.Close)
	if over := len(h) - e.maxHistory(); over > 0 {
		h = h[over:]
	}
	e.history[t.Symbol] = h

	if len(h) < e.warmup() {
		return models.Signal{}, false
	}

	emaShort := EMA(h, e.cfg.EMAShort)
	emaLong := EMA(h, e.cfg.EMALong)
	rsi := RSI(h, e.cfg.RSIPeriod)
	vol := Volatility(h, e.cfg.VolPeriod)

	var side models.Side
	if emaShort > emaLong && rsi < e.cfg.RSIOversold {
		side = models.SideBuy
	} else if emaShort < emaLong && rsi > e.cfg.RSIOverbought {
		side = models.SideSell
	}
	if side == models.SideNone {
		return models.Signal{}, false
	}

	if side == e.lastSide[t.Symbol] {
		return models.Signal{}, false
	}
	e.lastSide[t.Symbol] = side

	return models.Signal{
		Symbol:     t.Symbol,
		Side:       side,
		Price:      t.Close,
		Confidence: e.confidence(side, rsi, emaShort, emaLong),
		Volatility: vol,
		Reason:     fmt.Sprintf("EMA %.5f/%.5f RSI %.1f", emaShort, emaLong, rsi),
	}, true
}

// confidence — 0.5 на пороге, растёт с глубиной RSI за порогом и с
// расхождением EMA (1% расхождения даёт полный вклад).
func (e *EMARSI) confidence(side models.Side, rsi, emaShort, emaLong float64) float64 {
	var rsiScore float64
	if side == models.SideBuy {
		if e.cfg.RSIOversold > 0 {
			rsiScore = (e.cfg.RSIOversold - rsi) / e.cfg.RSIOversold
		}
	} else {
		if e.cfg.RSIOverbought < 100 {
			rsiScore = (rsi - e.cfg.RSIOverbought) / (100 - e.cfg.RSIOverbought)
		}
	}
	rsiScore = helper.Clamp(rsiScore, 0, 1)

	var emaScore float64
	if emaLong > 0 {
		sep := emaShort - emaLong
		if sep < 0 {
			sep = -sep
		}
		emaScore = helper.Clamp(sep/emaLong/0.01, 0, 1)
	}

	return helper.Clamp(0.5+0.3*rsiScore+0.2*emaScore, 0, 1)
}

func (e *EMARSI) IsReady(symbol string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.history[symbol]) >= e.warmup()
}

func (e *EMARSI) Dump(symbol string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	h := e.history[symbol]
	return fmt.Sprintf("EMA_S=%.4f EMA_L=%.4f RSI=%.1f",
		EMA(h, e.cfg.EMAShort), EMA(h, e.cfg.EMALong), RSI(h, e.cfg.RSIPeriod))
}
