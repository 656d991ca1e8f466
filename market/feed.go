package market

import (
	"context"
	"time"

	"github.com/xyths/antigravity/upbit"
	"go.uber.org/zap"
)

// PriceSample is one observation of the market.
type PriceSample struct {
	Price      float64
	ChangeRate float64 // signed 24h change rate
	At         time.Time
}

// Feed supplies prices and candle closes for one market.
type Feed interface {
	// Ticker returns the freshest price available.
	Ticker(ctx context.Context) (PriceSample, error)
	// Closes returns minute-candle closing prices, oldest first.
	Closes(ctx context.Context, count int) ([]float64, error)
	// RecentTradePrices returns the last fills, oldest first. Best effort,
	// used for charting only.
	RecentTradePrices(ctx context.Context, count int) ([]float64, error)
}

type api interface {
	GetTicker(ctx context.Context, market string) (*upbit.Ticker, error)
	MinuteCandles(ctx context.Context, market string, unit, count int) ([]upbit.Candle, error)
	TradeTicks(ctx context.Context, market string, count int) ([]upbit.TradeTick, error)
}

// UpbitFeed reads from the ticker endpoint and falls back to the last fill
// from the trade-tick endpoint when the ticker call fails. The fallback never
// replaces a price the ticker already produced in the same call.
type UpbitFeed struct {
	Sugar *zap.SugaredLogger

	ex     api
	market string
}

func NewUpbitFeed(ex *upbit.Client, market string, sugar *zap.SugaredLogger) *UpbitFeed {
	return &UpbitFeed{Sugar: sugar, ex: ex, market: market}
}

func (f *UpbitFeed) Ticker(ctx context.Context) (PriceSample, error) {
	ticker, err := f.ex.GetTicker(ctx, f.market)
	if err == nil {
		return PriceSample{
			Price:      ticker.TradePrice,
			ChangeRate: ticker.SignedChangeRate,
			At:         time.Now(),
		}, nil
	}
	f.Sugar.Debugf("ticker error, trying last fill: %s", err)
	ticks, err2 := f.ex.TradeTicks(ctx, f.market, 1)
	if err2 != nil || len(ticks) == 0 {
		return PriceSample{}, err
	}
	// change rate is unknown on this path
	return PriceSample{Price: ticks[len(ticks)-1].TradePrice, At: time.Now()}, nil
}

func (f *UpbitFeed) Closes(ctx context.Context, count int) ([]float64, error) {
	candles, err := f.ex.MinuteCandles(ctx, f.market, 1, count)
	if err != nil {
		return nil, err
	}
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.TradePrice
	}
	return closes, nil
}

func (f *UpbitFeed) RecentTradePrices(ctx context.Context, count int) ([]float64, error) {
	ticks, err := f.ex.TradeTicks(ctx, f.market, count)
	if err != nil {
		return nil, err
	}
	prices := make([]float64, len(ticks))
	for i, t := range ticks {
		prices[i] = t.TradePrice
	}
	return prices, nil
}
