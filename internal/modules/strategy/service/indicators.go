package service

import "math"

// Чистые индикаторы по упорядоченному ряду цен закрытия. Ни одна функция не
// возвращает ошибку: при нехватке данных отдаём нейтральное/последнее значение,
// вызывающий обязан считать такой результат низкодостоверным.

// RSI — индекс по Уайлдеру на последних period изменениях цены: простое
// среднее gain/loss по хвосту окна, без рекурсивного сглаживания.
// При менее чем period+1 точках возвращает нейтральные 50.
func RSI(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period+1 {
		return 50
	}

	var gains, losses float64
	start := len(prices) - period
	for i := start; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// SMA — среднее последних period значений; при нехватке данных отдаёт
// последнюю доступную цену.
func SMA(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if period <= 0 || len(prices) < period {
		return prices[len(prices)-1]
	}

	var sum float64
	for _, p := range prices[len(prices)-period:] {
		sum += p
	}
	return sum / float64(period)
}

// EMA — экспоненциальное среднее, сидится первым значением ряда,
// k = 2/(period+1).
func EMA(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if period <= 1 {
		return prices[len(prices)-1]
	}

	k := 2.0 / (float64(period) + 1)
	ema := prices[0]
	for _, p := range prices[1:] {
		ema = p*k + ema*(1-k)
	}
	return ema
}

// Volatility — популяционное стандартное отклонение хвостового окна,
// нормированное на среднее окна (относительная волатильность).
func Volatility(prices []float64, period int) float64 {
	window := prices
	if period > 0 && len(prices) > period {
		window = prices[len(prices)-period:]
	}
	if len(window) < 2 {
		return 0
	}

	var mean float64
	for _, p := range window {
		mean += p
	}
	mean /= float64(len(window))
	if mean == 0 {
		return 0
	}

	var variance float64
	for _, p := range window {
		d := p - mean
		variance += d * d
	}
	variance /= float64(len(window))

	return math.Sqrt(variance) / mean
}
