package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInsufficientBalance is a decision-level precondition failure, reported
// to the operator but never retried automatically.
var ErrInsufficientBalance = errors.New("executor: insufficient balance")

// OrderError means the backend rejected an order or could not confirm it.
// Position state is re-read from the broker on the next tick, not assumed.
type OrderError struct {
	Op     string // "buy" or "sell"
	Market string
	Err    error
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("executor: %s %s: %s", e.Op, e.Market, e.Err)
}

func (e *OrderError) Unwrap() error { return e.Err }

// Snapshot is one consistent read of the account: available cash plus the
// held position. AvgPrice is meaningless when Amount is zero.
type Snapshot struct {
	Cash     decimal.Decimal // quote currency, e.g. KRW
	Amount   decimal.Decimal // base currency, e.g. BTC
	AvgPrice decimal.Decimal
}

// TotalAsset values the whole account at price.
func (s Snapshot) TotalAsset(price float64) decimal.Decimal {
	return s.Cash.Add(s.Amount.Mul(decimal.NewFromFloat(price)))
}

// ProfitPct is the unrealized return of the position at price, in percent.
// Zero when there is no usable average price.
func (s Snapshot) ProfitPct(price float64) float64 {
	avg, _ := s.AvgPrice.Float64()
	if avg <= 0 {
		return 0
	}
	return (price - avg) / avg * 100
}

// Broker is the position ledger and order backend pair. The sim fills at the
// caller's price, the live broker at whatever the exchange fills market
// orders at. Every order call also updates the ledger the broker owns;
// callers must not mutate balances themselves.
type Broker interface {
	Name() string
	Snapshot(ctx context.Context) (Snapshot, error)
	// IsHolding decides whether the snapshot counts as an open position at
	// price. Live and simulated brokers intentionally differ here.
	IsHolding(s Snapshot, price float64) bool
	// BuyMarket spends total quote currency. Returns the order id.
	BuyMarket(ctx context.Context, total decimal.Decimal, price float64) (string, error)
	// SellAllMarket liquidates the whole position. Returns the order id.
	SellAllMarket(ctx context.Context, price float64) (string, error)
}
