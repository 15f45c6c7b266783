package service

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"paper_bot/internal/models"
	"paper_bot/internal/modules/config"
	"paper_bot/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// стартовые цены для знакомых символов, остальным — дефолт
var basePrices = map[string]float64{
	"BTC-USDT": 45000,
	"ETH-USDT": 2500,
	"SOL-USDT": 100,
}

const defaultBasePrice = 50

// SyntheticFeed — бумажный источник данных: случайное блуждание по каждому
// символу на интервале тика. Seed фиксируется по имени символа, прогон
// воспроизводим.
type SyntheticFeed struct {
	cfg *config.Config
}

func NewSyntheticFeed(cfg *config.Config) *SyntheticFeed {
	return &SyntheticFeed{cfg: cfg}
}

// Run гонит свечи по всем символам в общий канал до отмены контекста.
func (f *SyntheticFeed) Run(ctx context.Context, out chan<- models.CandleTick) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, symbol := range f.cfg.Symbols {
		symbol := symbol
		g.Go(func() error {
			return f.runSymbol(ctx, symbol, out)
		})
	}
	return g.Wait()
}

func (f *SyntheticFeed) runSymbol(ctx context.Context, symbol string, out chan<- models.CandleTick) error {
	price := basePrices[symbol]
	if price == 0 {
		price = defaultBasePrice
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(symbol))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	ticker := time.NewTicker(f.cfg.TickInterval)
	defer ticker.Stop()

	logger.Info("[FEED] synthetic %s started @ %.2f", symbol, price)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			open := price
			// шаг блуждания ±0.4% с лёгким возвратом к средней
			drift := rng.NormFloat64() * 0.004
			price = open * (1 + drift)

			high := math.Max(open, price) * (1 + rng.Float64()*0.001)
			low := math.Min(open, price) * (1 - rng.Float64()*0.001)
			vol := 10 + rng.Float64()*90

			tick := models.CandleTick{
				Symbol:      symbol,
				Open:        open,
				High:        high,
				Low:         low,
				Close:       price,
				Volume:      vol,
				QuoteVolume: vol * price,
				Start:       now.Add(-f.cfg.TickInterval),
				End:         now,
			}

			select {
			case out <- tick:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
