package helper

import (
	"math"
	"time"
)

// DateKey — календарный день для сброса дневных счётчиков и ключей статистики.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
