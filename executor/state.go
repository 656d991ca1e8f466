package executor

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xyths/hs"
	"go.mongodb.org/mongo-driver/mongo"
)

const collNameState = "state"

// StateStore checkpoints the simulated wallet, the cooldown guard and the
// cumulative-return baseline between runs. A nil store is valid and does
// nothing, for runs without a database.
type StateStore struct {
	coll *mongo.Collection
}

func NewStateStore(db *mongo.Database) *StateStore {
	if db == nil {
		return nil
	}
	return &StateStore{coll: db.Collection(collNameState)}
}

func (s *StateStore) SaveSim(ctx context.Context, b *SimBroker) error {
	if s == nil {
		return nil
	}
	cash, coin, avg := b.State()
	if err := hs.SaveKey(ctx, s.coll, "simCash", cash.String()); err != nil {
		return err
	}
	if err := hs.SaveKey(ctx, s.coll, "simCoin", coin.String()); err != nil {
		return err
	}
	return hs.SaveKey(ctx, s.coll, "simAvgBuyPrice", avg.String())
}

// LoadSim restores the wallet. Returns false when there is no checkpoint.
func (s *StateStore) LoadSim(ctx context.Context, b *SimBroker) bool {
	if s == nil {
		return false
	}
	var cashStr, coinStr, avgStr string
	if err := hs.LoadKey(ctx, s.coll, "simCash", &cashStr); err != nil {
		return false
	}
	if err := hs.LoadKey(ctx, s.coll, "simCoin", &coinStr); err != nil {
		return false
	}
	if err := hs.LoadKey(ctx, s.coll, "simAvgBuyPrice", &avgStr); err != nil {
		return false
	}
	cash, err := decimal.NewFromString(cashStr)
	if err != nil {
		return false
	}
	coin, err := decimal.NewFromString(coinStr)
	if err != nil {
		return false
	}
	avg, err := decimal.NewFromString(avgStr)
	if err != nil {
		return false
	}
	b.Restore(cash, coin, avg)
	return true
}

func (s *StateStore) SaveGuard(ctx context.Context, g *CooldownGuard) error {
	if s == nil {
		return nil
	}
	losses, until := g.State()
	if err := hs.SaveInt64(ctx, s.coll, "lossCount", int64(losses)); err != nil {
		return err
	}
	var deadline int64
	if !until.IsZero() {
		deadline = until.Unix()
	}
	return hs.SaveInt64(ctx, s.coll, "cooldownUntil", deadline)
}

func (s *StateStore) LoadGuard(ctx context.Context, g *CooldownGuard) bool {
	if s == nil {
		return false
	}
	losses, err := hs.LoadInt64(ctx, s.coll, "lossCount")
	if err != nil {
		return false
	}
	deadline, err := hs.LoadInt64(ctx, s.coll, "cooldownUntil")
	if err != nil {
		return false
	}
	var until time.Time
	if deadline > 0 {
		until = time.Unix(deadline, 0)
	}
	g.Restore(int(losses), until)
	return true
}

func (s *StateStore) SaveBaseline(ctx context.Context, baseline float64) error {
	if s == nil {
		return nil
	}
	return hs.SaveKey(ctx, s.coll, "baselineAsset", baseline)
}

func (s *StateStore) LoadBaseline(ctx context.Context) (float64, bool) {
	if s == nil {
		return 0, false
	}
	var baseline float64
	if err := hs.LoadKey(ctx, s.coll, "baselineAsset", &baseline); err != nil {
		return 0, false
	}
	return baseline, baseline > 0
}

// Clear wipes every checkpoint.
func (s *StateStore) Clear(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.coll.Drop(ctx)
}
