package indicator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRSI_Rising(t *testing.T) {
	closes := make([]float64, 15)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	rsi, err := RSI(closes, 14)
	require.NoError(t, err)
	require.Equal(t, 100.0, rsi, "no losses in window means RSI 100")
}

func TestRSI_Falling(t *testing.T) {
	closes := make([]float64, 15)
	for i := range closes {
		closes[i] = 200 - float64(i)
	}
	rsi, err := RSI(closes, 14)
	require.NoError(t, err)
	require.Equal(t, 0.0, rsi)
}

func TestRSI_Flat(t *testing.T) {
	closes := make([]float64, 15)
	for i := range closes {
		closes[i] = 100
	}
	rsi, err := RSI(closes, 14)
	require.NoError(t, err)
	require.Equal(t, 100.0, rsi, "flat series hits the zero-loss rule")
}

func TestRSI_Mixed(t *testing.T) {
	// two gains of 2, two losses of 1 -> RS = 2, RSI = 100 - 100/3
	closes := []float64{100, 102, 101, 103, 102}
	rsi, err := RSI(closes, 4)
	require.NoError(t, err)
	require.InDelta(t, 100-100.0/3, rsi, 1e-9)
}

func TestRSI_InsufficientData(t *testing.T) {
	closes := []float64{100, 101, 102}
	_, err := RSI(closes, 14)
	require.ErrorIs(t, err, ErrInsufficientData)

	_, err = RSI(nil, 14)
	require.ErrorIs(t, err, ErrInsufficientData)

	_, err = RSI(closes, 0)
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestRSI_WindowExact(t *testing.T) {
	// period+1 closes is exactly enough
	closes := []float64{1, 2, 3}
	rsi, err := RSI(closes, 2)
	require.NoError(t, err)
	require.Equal(t, 100.0, rsi)
}
