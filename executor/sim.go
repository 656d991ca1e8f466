package executor

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SimBroker keeps a virtual wallet in memory and fills every order
// synchronously at the caller's price. It is owned by the trading loop and
// must not be shared across goroutines.
type SimBroker struct {
	Sugar *zap.SugaredLogger

	cash decimal.Decimal
	coin decimal.Decimal
	avg  decimal.Decimal

	buys  int64
	sells int64
}

func NewSimBroker(initialCash decimal.Decimal, sugar *zap.SugaredLogger) *SimBroker {
	return &SimBroker{Sugar: sugar, cash: initialCash}
}

func (b *SimBroker) Name() string { return "sim" }

func (b *SimBroker) Snapshot(ctx context.Context) (Snapshot, error) {
	return Snapshot{Cash: b.cash, Amount: b.coin, AvgPrice: b.avg}, nil
}

// IsHolding is strict in simulation: any coin at all is a position.
func (b *SimBroker) IsHolding(s Snapshot, price float64) bool {
	return s.Amount.GreaterThan(decimal.Zero)
}

func (b *SimBroker) BuyMarket(ctx context.Context, total decimal.Decimal, price float64) (string, error) {
	p := decimal.NewFromFloat(price)
	if p.LessThanOrEqual(decimal.Zero) {
		return "", errors.New("sim: no fill price")
	}
	if b.cash.LessThan(total) {
		return "", ErrInsufficientBalance
	}
	amount := total.Div(p)
	b.coin = b.coin.Add(amount)
	b.cash = b.cash.Sub(total)
	b.avg = p
	b.buys++
	b.Sugar.Infof("[SIM] buy filled at %s, amount %s", p, amount)
	return fmt.Sprintf("sim-bid-%d", b.buys), nil
}

func (b *SimBroker) SellAllMarket(ctx context.Context, price float64) (string, error) {
	p := decimal.NewFromFloat(price)
	if p.LessThanOrEqual(decimal.Zero) {
		return "", errors.New("sim: no fill price")
	}
	if b.coin.LessThanOrEqual(decimal.Zero) {
		return "", ErrInsufficientBalance
	}
	proceeds := b.coin.Mul(p)
	b.cash = b.cash.Add(proceeds)
	b.coin = decimal.Zero
	b.avg = decimal.Zero
	b.sells++
	b.Sugar.Infof("[SIM] sell filled at %s, proceeds %s", p, proceeds)
	return fmt.Sprintf("sim-ask-%d", b.sells), nil
}

// Restore overwrites the wallet, e.g. from a checkpoint.
func (b *SimBroker) Restore(cash, coin, avg decimal.Decimal) {
	b.cash = cash
	b.coin = coin
	b.avg = avg
}

// State returns the wallet for checkpointing.
func (b *SimBroker) State() (cash, coin, avg decimal.Decimal) {
	return b.cash, b.coin, b.avg
}
