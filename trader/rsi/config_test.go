package rsi

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xyths/hs"
)

func validStrategy() StrategyConf {
	return StrategyConf{
		Interval:        "1s",
		CandleCount:     200,
		RsiPeriod:       14,
		RsiEntry:        25,
		RoiTarget:       0.5,
		RoiStop:         -3,
		Amount:          100000,
		MaxLossCount:    2,
		CooldownMinutes: 30,
		Simulation:      true,
		InitialCash:     10000000,
	}
}

func TestStrategyConf_Validate(t *testing.T) {
	require.NoError(t, validStrategy().Validate())

	for name, mutate := range map[string]func(*StrategyConf){
		"zero amount":        func(s *StrategyConf) { s.Amount = 0 },
		"negative amount":    func(s *StrategyConf) { s.Amount = -100 },
		"entry above 100":    func(s *StrategyConf) { s.RsiEntry = 101 },
		"entry below 0":      func(s *StrategyConf) { s.RsiEntry = -1 },
		"negative target":    func(s *StrategyConf) { s.RoiTarget = -0.5 },
		"positive stop":      func(s *StrategyConf) { s.RoiStop = 1 },
		"zero period":        func(s *StrategyConf) { s.RsiPeriod = 0 },
		"short candle count": func(s *StrategyConf) { s.CandleCount = 14 },
		"negative losses":    func(s *StrategyConf) { s.MaxLossCount = -1 },
		"zero cooldown":      func(s *StrategyConf) { s.CooldownMinutes = 0 },
		"negative cash":      func(s *StrategyConf) { s.InitialCash = -1 },
		"bad interval":       func(s *StrategyConf) { s.Interval = "soon" },
	} {
		t.Run(name, func(t *testing.T) {
			s := validStrategy()
			mutate(&s)
			require.ErrorIs(t, s.Validate(), ErrInvalidConfig)
		})
	}
}

func TestStrategyConf_BoundaryValuesAllowed(t *testing.T) {
	s := validStrategy()
	s.RsiEntry = 0
	s.RoiTarget = 0
	s.RoiStop = 0
	s.MaxLossCount = 0 // guard disabled
	require.NoError(t, s.Validate())
}

func TestStrategyConf_Defaults(t *testing.T) {
	s := StrategyConf{Amount: 100000, RsiEntry: 25, RoiStop: -3}.withDefaults()
	require.Equal(t, "1s", s.Interval)
	require.Equal(t, 14, s.RsiPeriod)
	require.Equal(t, 200, s.CandleCount)
	require.Equal(t, 30, s.CooldownMinutes)
	require.Equal(t, 10000000.0, s.InitialCash)
	require.NoError(t, s.Validate())
}

func TestConfig_RequiresMarket(t *testing.T) {
	c := Config{Strategy: validStrategy()}
	require.ErrorIs(t, c.Validate(), ErrInvalidConfig)

	c.Exchange = hs.ExchangeConf{Name: "upbit", Symbols: []string{"KRW-BTC"}}
	require.NoError(t, c.Validate())
}
