package executor

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/xyths/antigravity/upbit"
	"go.uber.org/zap"
)

// RestBroker trades for real against Upbit. The exchange account is the
// ledger: every snapshot is a fresh /v1/accounts read.
type RestBroker struct {
	Sugar *zap.SugaredLogger

	ex     *upbit.Client
	market string
	base   string // e.g. BTC
	quote  string // e.g. KRW

	minTotal decimal.Decimal
}

func NewRestBroker(ex *upbit.Client, market string, sugar *zap.SugaredLogger) (*RestBroker, error) {
	parts := strings.SplitN(market, "-", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, errors.Errorf("bad market format: %q", market)
	}
	return &RestBroker{
		Sugar:    sugar,
		ex:       ex,
		market:   market,
		quote:    parts[0],
		base:     parts[1],
		minTotal: decimal.NewFromInt(upbit.MinOrderTotal),
	}, nil
}

func (b *RestBroker) Name() string { return "upbit" }

func (b *RestBroker) Snapshot(ctx context.Context) (Snapshot, error) {
	accounts, err := b.ex.Accounts(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	var s Snapshot
	for _, a := range accounts {
		switch a.Currency {
		case b.quote:
			s.Cash = parseDecimal(a.Balance)
		case b.base:
			s.Amount = parseDecimal(a.Balance)
			s.AvgPrice = parseDecimal(a.AvgBuyPrice)
		}
	}
	return s, nil
}

// IsHolding uses a value threshold instead of a strict nonzero check, so a
// few KRW of dust left after a sell does not flap the position state.
func (b *RestBroker) IsHolding(s Snapshot, price float64) bool {
	value := s.Amount.Mul(decimal.NewFromFloat(price))
	return value.GreaterThanOrEqual(b.minTotal)
}

func (b *RestBroker) BuyMarket(ctx context.Context, total decimal.Decimal, price float64) (string, error) {
	orderId, err := b.ex.BuyMarket(ctx, b.market, total.Truncate(0))
	if err != nil {
		return "", &OrderError{Op: "buy", Market: b.market, Err: err}
	}
	b.Sugar.Infof("place buy-market order, id %s, total %s", orderId, total)
	return orderId, nil
}

func (b *RestBroker) SellAllMarket(ctx context.Context, price float64) (string, error) {
	s, err := b.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	if !b.IsHolding(s, price) {
		return "", ErrInsufficientBalance
	}
	orderId, err := b.ex.SellMarket(ctx, b.market, s.Amount)
	if err != nil {
		return "", &OrderError{Op: "sell", Market: b.market, Err: err}
	}
	b.Sugar.Infof("place sell-market order, id %s, amount %s", orderId, s.Amount)
	return orderId, nil
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
