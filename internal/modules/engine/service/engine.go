package service

import (
	"context"
	"math"
	"strings"
	"time"

	"paper_bot/internal/helper"
	"paper_bot/internal/models"
	"paper_bot/internal/modules/config"
	healthsvc "paper_bot/internal/modules/health/service"
	ledgersvc "paper_bot/internal/modules/ledger/service"
	portfoliosvc "paper_bot/internal/modules/portfolio/service"
	riskgatesvc "paper_bot/internal/modules/riskgate/service"
	statesvc "paper_bot/internal/modules/state/service"
	strategysvc "paper_bot/internal/modules/strategy/service"
	"paper_bot/pkg/logger"

	"github.com/google/uuid"
)

// Command — внешние воздействия на цикл (телеграм, шатдаун). Мутаций извне
// нет: всё заезжает в единственную горутину через канал.
type Command struct {
	StopPositionID string // закрыть конкретную позицию
	StopAll        bool   // закрыть всё
}

type Notifier interface {
	Sendf(format string, args ...any)
}

// Engine — владелец всего мутируемого состояния: открытые позиции,
// суб-портфели, риск-счётчики. Один логический поток: Run крутится в одной
// горутине, все входы (свечи, команды) — каналы.
type Engine struct {
	cfg    *config.Config
	strat  strategysvc.Engine
	gate   *riskgatesvc.Gate
	alloc  *portfoliosvc.Allocator
	ledger *ledgersvc.Ledger
	keeper *statesvc.Keeper
	health *healthsvc.State
	n      Notifier

	open        map[string]*models.Position
	lastPrice   map[string]float64
	warmupDone  map[string]bool

	// Базис для проверки сохранения капитала. После Restore пересчитывается,
	// иначе равен TotalCapital.
	baseline    float64
	realizedPnL float64

	now    func() time.Time
	fatalf func(format string, args ...any)
}

func NewEngine(
	cfg *config.Config,
	strat strategysvc.Engine,
	gate *riskgatesvc.Gate,
	alloc *portfoliosvc.Allocator,
	led *ledgersvc.Ledger,
	keeper *statesvc.Keeper,
	health *healthsvc.State,
	n Notifier,
) *Engine {
	return &Engine{
		cfg:       cfg,
		strat:     strat,
		gate:      gate,
		alloc:     alloc,
		ledger:    led,
		keeper:    keeper,
		health:    health,
		n:         n,
		open:       map[string]*models.Position{},
		lastPrice:  map[string]float64{},
		warmupDone: map[string]bool{},
		baseline:  cfg.TotalCapital,
		now:       time.Now,
		fatalf:    logger.Fatal,
	}
}

// Bootstrap грузит снапшот (если есть) и накатывает его до старта цикла.
func (e *Engine) Bootstrap(ctx context.Context) {
	if e.cfg.PaperTrading {
		logger.Info("paper trading: %.2f across %d sub-portfolios, strategy %s",
			e.cfg.TotalCapital, e.cfg.SubPortfolios, e.strat.Name())
	}

	state, err := e.keeper.Load(ctx)
	if err != nil {
		logger.Error("snapshot load failed, starting fresh: %v", err)
		state = nil
	}
	e.Restore(ctx, state)
}

// Restore накатывает снапшот до старта цикла. Базис сохранения капитала
// пересчитывается от восстановленного состояния.
func (e *Engine) Restore(ctx context.Context, state *models.BotState) {
	if state != nil {
		e.gate.SetState(state.Risk)
		e.alloc.SetState(state.Portfolios)
		for _, p := range state.Open {
			e.open[p.ID] = p
			e.lastPrice[p.Symbol] = p.EntryPrice
		}
		logger.Info("restored snapshot: %d open positions, balance %.2f",
			len(e.open), e.alloc.TotalBalance())
	}
	e.baseline = e.alloc.TotalBalance() + e.openSizeSum()
	e.realizedPnL = 0

	if err := e.ledger.Recover(ctx, helper.DateKey(e.now())); err != nil {
		logger.Error("ledger recover failed, stats start empty: %v", err)
	}
	e.publish()
}

// Run — тиковый цикл. Тики сериализованы: следующий не начинается, пока не
// применены все мутации предыдущего.
func (e *Engine) Run(ctx context.Context, ticks <-chan models.CandleTick, commands <-chan Command) {
	e.health.SetReady(true)
	defer e.health.SetReady(false)

	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-ticks:
			if !ok {
				return
			}
			e.onTick(ctx, t)
		case cmd := <-commands:
			e.onCommand(ctx, cmd)
		}
	}
}

func (e *Engine) onTick(ctx context.Context, t models.CandleTick) {
	now := e.now()
	e.lastPrice[t.Symbol] = t.Close
	e.health.TouchTick(now)

	if !e.warmupDone[t.Symbol] && e.strat.IsReady(t.Symbol) {
		e.warmupDone[t.Symbol] = true
		logger.Info("[STRAT] %s warmed up: %s", t.Symbol, e.strat.Dump(t.Symbol))
	}

	// сперва закрытия по открытым позициям этого символа
	e.evaluateCloses(ctx, t.Symbol, t.Close, now)

	// затем сигнал и попытка открытия
	if sig, ok := e.strat.OnCandle(t); ok {
		e.attemptOpen(ctx, sig, now)
	}

	// догоняем незаписанные сделки
	e.ledger.Flush(ctx)
	LedgerPending.Set(float64(e.ledger.PendingCount()))

	e.assertConservation()
}

func (e *Engine) onCommand(ctx context.Context, cmd Command) {
	now := e.now()
	switch {
	case cmd.StopAll:
		e.Drain(ctx)
	case cmd.StopPositionID != "":
		p, ok := e.open[cmd.StopPositionID]
		if !ok {
			e.sendf("position %s not found", cmd.StopPositionID)
			return
		}
		e.closePosition(ctx, p, e.exitPrice(p), now, models.CloseManualStop)
		e.saveSnapshot(ctx)
	}
}

// Drain — graceful-останов: всё открытое закрывается по последней известной
// цене, день сводится, снапшот сохраняется.
func (e *Engine) Drain(ctx context.Context) {
	now := e.now()
	for _, p := range e.openPositions() {
		e.closePosition(ctx, p, e.exitPrice(p), now, models.CloseManualStop)
	}
	if err := e.ledger.CloseDay(ctx); err != nil {
		logger.Error("drain: %v", err)
	}
	e.saveSnapshot(ctx)
}

func (e *Engine) exitPrice(p *models.Position) float64 {
	if px, ok := e.lastPrice[p.Symbol]; ok && px > 0 {
		return px
	}
	return p.EntryPrice
}

// openPositions — стабильный срез, чтобы можно было мутировать map в цикле.
func (e *Engine) openPositions() []*models.Position {
	out := make([]*models.Position, 0, len(e.open))
	for _, p := range e.open {
		out = append(out, p)
	}
	return out
}

func (e *Engine) openSizeSum() float64 {
	var sum float64
	for _, p := range e.open {
		sum += p.PositionSize
	}
	return sum
}

// Сохранение капитала: sum(balance) + sum(openSize) == baseline + realizedPnL.
// Расхождение — баг, продолжать в битом состоянии нельзя.
func (e *Engine) assertConservation() {
	got := e.alloc.TotalBalance() + e.openSizeSum()
	want := e.baseline + e.realizedPnL
	if math.Abs(got-want) > 1e-6 {
		e.fatalf("capital conservation broken: have %.8f want %.8f", got, want)
	}
}

func (e *Engine) saveSnapshot(ctx context.Context) {
	state := &models.BotState{
		SavedAt:    e.now(),
		Risk:       e.gate.State(),
		Portfolios: e.alloc.Portfolios(),
		Open:       e.openPositions(),
	}
	if err := e.keeper.Save(ctx, state); err != nil {
		// не фатально: повторим после следующего изменения состояния
		logger.Error("snapshot save failed: %v", err)
	}
}

func (e *Engine) publish() {
	e.health.SetOpenPositions(len(e.open))
	e.health.SetTotalBalance(e.alloc.TotalBalance())
	e.health.SetRealizedPnL(e.realizedPnL)
	OpenPositions.Set(float64(len(e.open)))
	TotalBalance.Set(e.alloc.TotalBalance())
	RealizedPnL.Set(e.realizedPnL)
}

func (e *Engine) sendf(format string, args ...any) {
	if e.n != nil {
		e.n.Sendf(format, args...)
	}
}

func newPositionID(now time.Time) string {
	suffix := strings.SplitN(uuid.New().String(), "-", 2)[0]
	return now.Format("20060102T150405") + "-" + suffix
}
