package models

// Side как в раннере: "BUY"/"SELL" или пустая строка.
type Side string

const (
	SideNone Side = ""
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

func (s Side) Direction() Direction {
	if s == SideSell {
		return DirectionShort
	}
	return DirectionLong
}

type Signal struct {
	Symbol     string
	Side       Side
	Price      float64
	Confidence float64 // 0..1
	Volatility float64 // относительная волатильность на момент сигнала
	Reason     string
}
