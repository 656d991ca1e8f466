package indicator

import "errors"

// ErrInsufficientData means the closing-price series is shorter than the
// indicator needs. Callers should skip the current evaluation, not trade on a
// default value.
var ErrInsufficientData = errors.New("indicator: insufficient data")

// RSI computes the relative strength index over the last period deltas of
// closes (oldest first), using simple moving averages of gains and losses.
// When the average loss is zero the series never fell inside the window and
// RSI is 100 by definition.
func RSI(closes []float64, period int) (float64, error) {
	if period < 1 {
		return 0, ErrInsufficientData
	}
	if len(closes) < period+1 {
		return 0, ErrInsufficientData
	}
	var gain, loss float64
	for i := len(closes) - period; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gain += delta
		} else {
			loss -= delta
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)
	if avgLoss == 0 {
		return 100, nil
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), nil
}
