package models

// SubPortfolio — изолированный кусок капитала, максимум одна открытая позиция.
type SubPortfolio struct {
	ID             string  `json:"id"`
	Balance        float64 `json:"balance"`
	InitialBalance float64 `json:"initialBalance"`
	ActivePosition int     `json:"activePositionCount"` // 0 или 1
}

func (p *SubPortfolio) Free() bool { return p.ActivePosition == 0 }
