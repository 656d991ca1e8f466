package rsi

import (
	"errors"
	"fmt"
	"time"

	"github.com/xyths/hs"
)

// ErrInvalidConfig is rejected synchronously at configuration time; a bad
// update never reaches the trading loop.
var ErrInvalidConfig = errors.New("rsi: invalid config")

type StrategyConf struct {
	Interval        string
	CandleCount     int
	RsiPeriod       int
	RsiEntry        float64
	RoiTarget       float64 // take-profit threshold, percent
	RoiStop         float64 // stop-loss threshold, percent, <= 0
	Amount          float64 // KRW per entry
	MaxLossCount    int     // 0 disables the cooldown guard
	CooldownMinutes int
	Simulation      bool
	InitialCash     float64 // simulated wallet, KRW
}

type Config struct {
	Exchange hs.ExchangeConf
	Mongo    hs.MongoConf
	Strategy StrategyConf
	Log      hs.LogConf
	Robots   []hs.BroadcastConf
}

func (c Config) Validate() error {
	if len(c.Exchange.Symbols) == 0 || c.Exchange.Symbols[0] == "" {
		return fmt.Errorf("%w: no market", ErrInvalidConfig)
	}
	return c.Strategy.Validate()
}

func (s StrategyConf) Validate() error {
	if s.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive, got %f", ErrInvalidConfig, s.Amount)
	}
	if s.RsiEntry < 0 || s.RsiEntry > 100 {
		return fmt.Errorf("%w: rsi entry must be in [0, 100], got %f", ErrInvalidConfig, s.RsiEntry)
	}
	if s.RoiTarget < 0 {
		return fmt.Errorf("%w: roi target must not be negative, got %f", ErrInvalidConfig, s.RoiTarget)
	}
	if s.RoiStop > 0 {
		return fmt.Errorf("%w: roi stop must not be positive, got %f", ErrInvalidConfig, s.RoiStop)
	}
	if s.RsiPeriod < 1 {
		return fmt.Errorf("%w: rsi period must be at least 1, got %d", ErrInvalidConfig, s.RsiPeriod)
	}
	if s.CandleCount < s.RsiPeriod+1 {
		return fmt.Errorf("%w: candle count %d too small for period %d", ErrInvalidConfig, s.CandleCount, s.RsiPeriod)
	}
	if s.MaxLossCount < 0 {
		return fmt.Errorf("%w: max loss count must not be negative, got %d", ErrInvalidConfig, s.MaxLossCount)
	}
	if s.CooldownMinutes < 1 {
		return fmt.Errorf("%w: cooldown must be at least 1 minute, got %d", ErrInvalidConfig, s.CooldownMinutes)
	}
	if s.InitialCash < 0 {
		return fmt.Errorf("%w: initial cash must not be negative, got %f", ErrInvalidConfig, s.InitialCash)
	}
	if _, err := time.ParseDuration(s.Interval); err != nil {
		return fmt.Errorf("%w: error interval format: %s", ErrInvalidConfig, s.Interval)
	}
	return nil
}

func (s StrategyConf) withDefaults() StrategyConf {
	if s.Interval == "" {
		s.Interval = "1s"
	}
	if s.RsiPeriod == 0 {
		s.RsiPeriod = 14
	}
	if s.CandleCount == 0 {
		s.CandleCount = 200
	}
	if s.CooldownMinutes == 0 {
		s.CooldownMinutes = 30
	}
	if s.InitialCash == 0 {
		s.InitialCash = 10000000
	}
	return s
}
