package service

import (
	"fmt"
	"sort"

	"paper_bot/internal/helper"
	"paper_bot/internal/models"
	"paper_bot/internal/modules/config"
)

// referenceStopLoss — опорный стоп для riskAdjustment при расчёте размера.
const referenceStopLoss = 0.02

// Allocator владеет фиксированным набором суб-портфелей. Капитал делится
// поровну на старте, один суб-портфель держит максимум одну позицию.
// Мутируется только из тикового цикла движка.
type Allocator struct {
	cfg        *config.Config
	portfolios []*models.SubPortfolio
}

func NewAllocator(cfg *config.Config) *Allocator {
	n := cfg.SubPortfolios
	slice := cfg.TotalCapital / float64(n)

	ps := make([]*models.SubPortfolio, 0, n)
	for i := 1; i <= n; i++ {
		ps = append(ps, &models.SubPortfolio{
			ID:             fmt.Sprintf("portfolio_%d", i),
			Balance:        slice,
			InitialBalance: slice,
		})
	}
	return &Allocator{cfg: cfg, portfolios: ps}
}

// Available возвращает свободный суб-портфель с наименьшим балансом,
// при равенстве — с меньшим номером. Политика "сначала просевшие" взята
// из источника как есть (см. DESIGN.md).
func (a *Allocator) Available() (*models.SubPortfolio, bool) {
	var best *models.SubPortfolio
	for _, p := range a.portfolios {
		if !p.Free() {
			continue
		}
		if best == nil || p.Balance < best.Balance {
			best = p
		}
	}
	return best, best != nil
}

// Size — базовый размер balance*maxPositionPct, скорректированный на
// волатильность и глубину стопа. maxPositionPct остаётся жёстким верхом:
// корректировки размер только уменьшают. Поверх всего — потолок 10% баланса.
func (a *Allocator) Size(p *models.SubPortfolio, volatility, stopLossPct, maxPositionPct float64) float64 {
	base := p.Balance * maxPositionPct

	volAdj := 1.0
	if volatility > 0 {
		volAdj = helper.Clamp(1/volatility, 0.5, 1.5)
	}
	riskAdj := stopLossPct / referenceStopLoss

	size := base * volAdj * riskAdj
	if size > base {
		size = base
	}
	if ceiling := p.Balance * 0.10; size > ceiling {
		size = ceiling
	}
	if size > p.Balance {
		size = p.Balance
	}
	return size
}

// Debit списывает размер позиции и занимает суб-портфель. Ровно один Debit
// на открытие; нарушение — сигнал о баге, вызывающий обязан остановить бота.
func (a *Allocator) Debit(id string, amount float64) error {
	p, ok := a.byID(id)
	if !ok {
		return fmt.Errorf("allocator: unknown portfolio %s", id)
	}
	if !p.Free() {
		return fmt.Errorf("allocator: double debit on %s", id)
	}
	if amount <= 0 {
		return fmt.Errorf("allocator: non-positive debit %.4f on %s", amount, id)
	}
	if amount > p.Balance {
		return fmt.Errorf("allocator: debit %.4f exceeds balance %.4f on %s", amount, p.Balance, id)
	}
	p.Balance -= amount
	p.ActivePosition = 1
	return nil
}

// Credit возвращает размер позиции плюс PnL и освобождает суб-портфель.
// Ровно один Credit на закрытие.
func (a *Allocator) Credit(id string, amount float64) error {
	p, ok := a.byID(id)
	if !ok {
		return fmt.Errorf("allocator: unknown portfolio %s", id)
	}
	if p.Free() {
		return fmt.Errorf("allocator: credit without debit on %s", id)
	}
	p.Balance += amount
	p.ActivePosition = 0
	if p.Balance < 0 {
		return fmt.Errorf("allocator: negative balance %.4f on %s", p.Balance, id)
	}
	return nil
}

func (a *Allocator) byID(id string) (*models.SubPortfolio, bool) {
	for _, p := range a.portfolios {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

func (a *Allocator) TotalBalance() float64 {
	var sum float64
	for _, p := range a.portfolios {
		sum += p.Balance
	}
	return sum
}

func (a *Allocator) Portfolios() []*models.SubPortfolio { return a.portfolios }

// SetState восстанавливает балансы из снапшота; порядок нормализуем по id.
func (a *Allocator) SetState(ps []*models.SubPortfolio) {
	if len(ps) == 0 {
		return
	}
	sort.Slice(ps, func(i, j int) bool {
		if len(ps[i].ID) != len(ps[j].ID) {
			return len(ps[i].ID) < len(ps[j].ID)
		}
		return ps[i].ID < ps[j].ID
	})
	a.portfolios = ps
}
