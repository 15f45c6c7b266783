package service

import (
	"math"
	"sync/atomic"
	"time"
)

// State — атомарный слепок для health-эндпоинтов и /status: читается из
// HTTP/телеграма, пишется только тиковым циклом движка.
type State struct {
	ready     atomic.Bool
	startedAt time.Time

	lastTickUnix  atomic.Int64 // unix seconds
	openPositions atomic.Int64
	balanceBits   atomic.Uint64
	pnlBits       atomic.Uint64
}

func NewState() *State {
	s := &State{startedAt: time.Now()}
	s.ready.Store(false)
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

func (s *State) TouchTick(t time.Time) { s.lastTickUnix.Store(t.Unix()) }
func (s *State) LastTick() time.Time {
	u := s.lastTickUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

func (s *State) SetOpenPositions(n int) { s.openPositions.Store(int64(n)) }
func (s *State) OpenPositions() int     { return int(s.openPositions.Load()) }

func (s *State) SetTotalBalance(v float64) { s.balanceBits.Store(math.Float64bits(v)) }
func (s *State) TotalBalance() float64     { return math.Float64frombits(s.balanceBits.Load()) }

func (s *State) SetRealizedPnL(v float64) { s.pnlBits.Store(math.Float64bits(v)) }
func (s *State) RealizedPnL() float64     { return math.Float64frombits(s.pnlBits.Load()) }

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }
