package market

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xyths/antigravity/upbit"
	"go.uber.org/zap"
)

type fakeAPI struct {
	ticker    *upbit.Ticker
	tickerErr error
	ticks     []upbit.TradeTick
	ticksErr  error
	candles   []upbit.Candle
}

func (f *fakeAPI) GetTicker(ctx context.Context, market string) (*upbit.Ticker, error) {
	return f.ticker, f.tickerErr
}

func (f *fakeAPI) MinuteCandles(ctx context.Context, market string, unit, count int) ([]upbit.Candle, error) {
	return f.candles, nil
}

func (f *fakeAPI) TradeTicks(ctx context.Context, market string, count int) ([]upbit.TradeTick, error) {
	return f.ticks, f.ticksErr
}

func newTestFeed(api *fakeAPI) *UpbitFeed {
	return &UpbitFeed{Sugar: zap.NewNop().Sugar(), ex: api, market: upbit.KRW_BTC}
}

func TestUpbitFeed_PrimaryWins(t *testing.T) {
	feed := newTestFeed(&fakeAPI{
		ticker: &upbit.Ticker{TradePrice: 1000, SignedChangeRate: 0.01},
		ticks:  []upbit.TradeTick{{TradePrice: 999}},
	})
	sample, err := feed.Ticker(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1000.0, sample.Price, "fallback must not overwrite the primary price")
	require.Equal(t, 0.01, sample.ChangeRate)
}

func TestUpbitFeed_Fallback(t *testing.T) {
	feed := newTestFeed(&fakeAPI{
		tickerErr: errors.New("timeout"),
		ticks:     []upbit.TradeTick{{TradePrice: 999}},
	})
	sample, err := feed.Ticker(context.Background())
	require.NoError(t, err)
	require.Equal(t, 999.0, sample.Price)
	require.Equal(t, 0.0, sample.ChangeRate)
}

func TestUpbitFeed_BothFail(t *testing.T) {
	primary := errors.New("timeout")
	feed := newTestFeed(&fakeAPI{
		tickerErr: primary,
		ticksErr:  errors.New("also down"),
	})
	_, err := feed.Ticker(context.Background())
	require.ErrorIs(t, err, primary, "primary error is the one reported")
}

func TestUpbitFeed_Closes(t *testing.T) {
	feed := newTestFeed(&fakeAPI{
		candles: []upbit.Candle{{TradePrice: 1}, {TradePrice: 2}, {TradePrice: 3}},
	})
	closes, err := feed.Closes(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 2, 3}, closes)
}
