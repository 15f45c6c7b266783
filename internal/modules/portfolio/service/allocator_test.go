package service

import (
	"math"
	"testing"

	"paper_bot/internal/modules/config"
)

func allocConfig() *config.Config {
	return &config.Config{
		TotalCapital:   10000,
		SubPortfolios:  4,
		MaxPositionPct: 0.05,
		StopLossPct:    0.015,
	}
}

func TestNewAllocatorSplitsCapitalEvenly(t *testing.T) {
	a := NewAllocator(allocConfig())

	ps := a.Portfolios()
	if len(ps) != 4 {
		t.Fatalf("portfolios = %d, want 4", len(ps))
	}
	for _, p := range ps {
		if p.Balance != 2500 || p.InitialBalance != 2500 {
			t.Fatalf("%s balance = %v/%v, want 2500/2500", p.ID, p.Balance, p.InitialBalance)
		}
	}
	if a.TotalBalance() != 10000 {
		t.Fatalf("TotalBalance = %v, want 10000", a.TotalBalance())
	}
}

func TestAvailablePrefersSmallestBalance(t *testing.T) {
	a := NewAllocator(allocConfig())
	ps := a.Portfolios()

	ps[2].Balance = 1800 // просевший слайс должен выбираться первым
	p, ok := a.Available()
	if !ok || p.ID != "portfolio_3" {
		t.Fatalf("Available() = %v, want portfolio_3", p)
	}

	// занятые пропускаются
	if err := a.Debit("portfolio_3", 100); err != nil {
		t.Fatal(err)
	}
	p, ok = a.Available()
	if !ok || p.ID != "portfolio_1" {
		t.Fatalf("Available() = %v, want portfolio_1 (tie-break by id)", p)
	}
}

func TestAvailableNoneWhenAllBusy(t *testing.T) {
	cfg := allocConfig()
	cfg.SubPortfolios = 2
	a := NewAllocator(cfg)

	if err := a.Debit("portfolio_1", 100); err != nil {
		t.Fatal(err)
	}
	if err := a.Debit("portfolio_2", 100); err != nil {
		t.Fatal(err)
	}
	if _, ok := a.Available(); ok {
		t.Fatal("Available() = true with all portfolios busy, want false")
	}
}

func TestSize(t *testing.T) {
	a := NewAllocator(allocConfig())
	p := a.Portfolios()[0] // balance 2500

	tests := []struct {
		name        string
		vol         float64
		stopLossPct float64
		maxPosPct   float64
		want        float64
	}{
		{
			// корректировки выше base не поднимают: 125*1.5*0.75=140.6 -> 125
			name:        "base is a hard upper bound",
			vol:         0.01,
			stopLossPct: 0.015,
			maxPosPct:   0.05,
			want:        125,
		},
		{
			// riskAdj = 0.5 тянет размер вниз: 125*1*0.5 = 62.5
			name:        "shallow stop scales size down",
			vol:         1.0, // volAdj = 1.0
			stopLossPct: 0.01,
			maxPosPct:   0.05,
			want:        62.5,
		},
		{
			// 10% потолок: base 1250, adjusted >= base -> 1250 -> cap 250
			name:        "ten percent ceiling",
			vol:         0.01,
			stopLossPct: 0.02,
			maxPosPct:   0.5,
			want:        250,
		},
		{
			// vol огромная -> volAdj = 0.5
			name:        "high volatility halves size",
			vol:         10,
			stopLossPct: 0.02,
			maxPosPct:   0.05,
			want:        62.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Size(p, tt.vol, tt.stopLossPct, tt.maxPosPct)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("Size() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDebitCreditConservation(t *testing.T) {
	a := NewAllocator(allocConfig())

	if err := a.Debit("portfolio_1", 125); err != nil {
		t.Fatal(err)
	}
	if got := a.TotalBalance(); got != 9875 {
		t.Fatalf("TotalBalance after debit = %v, want 9875", got)
	}

	// закрытие с прибылью: size + pnl
	if err := a.Credit("portfolio_1", 125+0.625); err != nil {
		t.Fatal(err)
	}
	if got := a.TotalBalance(); math.Abs(got-10000.625) > 1e-9 {
		t.Fatalf("TotalBalance after credit = %v, want 10000.625", got)
	}
	if p := a.Portfolios()[0]; math.Abs(p.Balance-2500.625) > 1e-9 || !p.Free() {
		t.Fatalf("portfolio_1 = %+v, want balance 2500.625 and free", p)
	}
}

func TestDebitCreditInvariants(t *testing.T) {
	a := NewAllocator(allocConfig())

	if err := a.Debit("portfolio_1", 125); err != nil {
		t.Fatal(err)
	}
	if err := a.Debit("portfolio_1", 125); err == nil {
		t.Fatal("second Debit succeeded, want double-debit error")
	}
	if err := a.Credit("portfolio_2", 100); err == nil {
		t.Fatal("Credit without debit succeeded, want error")
	}
	if err := a.Debit("portfolio_2", 1e9); err == nil {
		t.Fatal("Debit above balance succeeded, want error")
	}
	if err := a.Debit("nope", 10); err == nil {
		t.Fatal("Debit on unknown portfolio succeeded, want error")
	}
}
