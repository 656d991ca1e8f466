package rsi

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xyths/antigravity/executor"
	"github.com/xyths/antigravity/indicator"
	"github.com/xyths/antigravity/market"
	"github.com/xyths/antigravity/upbit"
	"github.com/xyths/hs"
	"github.com/xyths/hs/broadcast"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const chartTickCount = 50

type command int

const (
	cmdBuyNow command = iota + 1
	cmdSellAll
)

// Trader is the RSI momentum-reversal engine: one goroutine polls the market
// at a fixed interval, re-derives the position from the broker every tick and
// applies the entry/exit rules. All mutable state belongs to that goroutine;
// outside callers talk to it through the command and update queues.
type Trader struct {
	config   Config
	strategy StrategyConf
	interval time.Duration
	dry      bool

	Sugar  *zap.SugaredLogger
	db     *mongo.Database
	robots []broadcast.Broadcaster

	ex     *upbit.Client
	feed   market.Feed
	broker executor.Broker
	guard  *executor.CooldownGuard
	store  *executor.StateStore

	events   *Events
	commands chan command
	updates  chan StrategyConf

	autoLock sync.RWMutex
	auto     bool

	market   string
	baseline float64 // asset value at the start of the run
	cooling  bool
}

// New builds a trader from a JSON config file. Use --dry to force the
// simulated broker regardless of the config.
func New(configFilename string, dry bool) (*Trader, error) {
	cfg := Config{}
	if err := hs.ParseJsonConfig(configFilename, &cfg); err != nil {
		return nil, err
	}
	return NewFromConfig(cfg, dry)
}

func NewFromConfig(cfg Config, dry bool) (*Trader, error) {
	cfg.Strategy = cfg.Strategy.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	interval, err := time.ParseDuration(cfg.Strategy.Interval)
	if err != nil {
		return nil, fmt.Errorf("%w: error interval format: %s", ErrInvalidConfig, cfg.Strategy.Interval)
	}
	return &Trader{
		config:   cfg,
		strategy: cfg.Strategy,
		interval: interval,
		dry:      dry,
		market:   cfg.Exchange.Symbols[0],
		events:   newEvents(),
		commands: make(chan command, 8),
		updates:  make(chan StrategyConf, 1),
	}, nil
}

func (t *Trader) Init(ctx context.Context) error {
	if err := t.initLogger(); err != nil {
		return err
	}
	if t.config.Mongo.URI != "" {
		db, err := hs.ConnectMongo(ctx, t.config.Mongo)
		if err != nil {
			return err
		}
		t.db = db
		t.store = executor.NewStateStore(db)
	}
	t.ex = upbit.New(t.config.Exchange.Key, t.config.Exchange.Secret, t.config.Exchange.Host)
	t.feed = market.NewUpbitFeed(t.ex, t.market, t.Sugar)
	if err := t.initBroker(ctx); err != nil {
		return err
	}
	t.guard = executor.NewCooldownGuard(
		t.strategy.MaxLossCount,
		time.Duration(t.strategy.CooldownMinutes)*time.Minute,
	)
	if t.store.LoadGuard(ctx, t.guard) {
		t.Sugar.Info("cooldown state restored from checkpoint")
	}
	if baseline, ok := t.store.LoadBaseline(ctx); ok {
		t.baseline = baseline
	}
	t.initRobots()
	t.Sugar.Infof("RSI trader initialized, market %s, broker %s", t.market, t.broker.Name())
	return nil
}

func (t *Trader) initLogger() error {
	l, err := hs.NewZapLogger(t.config.Log)
	if err != nil {
		return err
	}
	t.Sugar = l.Sugar()
	t.Sugar.Info("Logger initialized")
	return nil
}

func (t *Trader) initBroker(ctx context.Context) error {
	if t.strategy.Simulation || t.dry {
		sim := executor.NewSimBroker(decimal.NewFromFloat(t.strategy.InitialCash), t.Sugar)
		if t.store.LoadSim(ctx, sim) {
			t.Sugar.Info("simulated wallet restored from checkpoint")
		}
		if t.baseline == 0 {
			t.baseline = t.strategy.InitialCash
		}
		t.broker = sim
		return nil
	}
	broker, err := executor.NewRestBroker(t.ex, t.market, t.Sugar)
	if err != nil {
		return err
	}
	t.broker = broker
	return nil
}

func (t *Trader) initRobots() {
	for _, conf := range t.config.Robots {
		t.robots = append(t.robots, broadcast.New(conf))
	}
}

func (t *Trader) Close(ctx context.Context) {
	if t.db != nil {
		_ = t.db.Client().Disconnect(ctx)
	}
}

// Events is the outbound stream consumed by the presentation layer.
func (t *Trader) Events() *Events { return t.events }

// SetAuto toggles automatic trading. Polling and reporting continue either way.
func (t *Trader) SetAuto(on bool) {
	t.autoLock.Lock()
	changed := t.auto != on
	t.auto = on
	t.autoLock.Unlock()
	if !changed {
		return
	}
	if on {
		t.events.emitLog("auto trading started")
	} else {
		t.events.emitLog("auto trading stopped")
	}
}

func (t *Trader) Auto() bool {
	t.autoLock.RLock()
	defer t.autoLock.RUnlock()
	return t.auto
}

// BuyNow queues a manual market buy for the next safe point of the loop.
func (t *Trader) BuyNow() { t.enqueue(cmdBuyNow) }

// SellAll queues a manual panic sell for the next safe point of the loop.
func (t *Trader) SellAll() { t.enqueue(cmdSellAll) }

func (t *Trader) enqueue(c command) {
	select {
	case t.commands <- c:
	default:
		t.events.emitLog("command queue full, request dropped")
	}
}

// UpdateStrategy validates s and hands it to the loop; it takes effect at the
// next tick boundary. The market, the broker kind and the simulated wallet
// are fixed for the lifetime of a run and ignored here. On validation failure
// the running configuration is untouched.
func (t *Trader) UpdateStrategy(s StrategyConf) error {
	s = s.withDefaults()
	if err := s.Validate(); err != nil {
		return err
	}
	for {
		select {
		case t.updates <- s:
			return nil
		default:
			// replace a not-yet-applied update
			select {
			case <-t.updates:
			default:
			}
		}
	}
}

// Baseline is the asset value cumulative return is measured against.
func (t *Trader) Baseline() float64 { return t.baseline }

func (t *Trader) Print(ctx context.Context) error {
	snap, err := t.broker.Snapshot(ctx)
	if err != nil {
		return err
	}
	sample, err := t.feed.Ticker(ctx)
	if err != nil {
		t.Sugar.Infof("cash %s, position %s (avg %s)", snap.Cash, snap.Amount, snap.AvgPrice)
		return nil
	}
	total, _ := snap.TotalAsset(sample.Price).Float64()
	cumulative := 0.0
	if t.baseline > 0 {
		cumulative = (total - t.baseline) / t.baseline * 100
	}
	t.Sugar.Infof(
		"price %f, cash %s, position %s (avg %s), total %f, cumulative %+.2f%%",
		sample.Price, snap.Cash, snap.Amount, snap.AvgPrice, total, cumulative,
	)
	return nil
}

func (t *Trader) Clear(ctx context.Context) error {
	return t.store.Clear(ctx)
}

func (t *Trader) Start(ctx context.Context) error {
	t.doWork(ctx)
	for {
		select {
		case <-ctx.Done():
			t.Sugar.Info("RSI trader stopped")
			return nil
		case <-time.After(t.interval):
			t.doWork(ctx)
		}
	}
}

// doWork is one tick. Any failure skips this tick's trading decision and the
// loop carries on; nothing here is fatal.
func (t *Trader) doWork(ctx context.Context) {
	t.applyPendingUpdate()

	sample, sampleErr := t.feed.Ticker(ctx)
	if sampleErr != nil {
		t.Sugar.Debugf("price unavailable this tick: %s", sampleErr)
	}
	rsiValue, rsiErr := t.currentRSI(ctx)
	if rsiErr != nil {
		t.Sugar.Debugf("rsi unavailable this tick: %s", rsiErr)
	}
	snap, snapErr := t.broker.Snapshot(ctx)
	if snapErr != nil {
		t.Sugar.Infof("balance query failed: %s", snapErr)
	}

	if sampleErr == nil && snapErr == nil {
		t.report(ctx, sample, rsiValue, snap)
		// chart feed is best effort and must not disturb anything above
		t.chart(ctx)
	}

	t.drainCommands(ctx, sample, sampleErr == nil)

	if !t.Auto() {
		return
	}
	now := time.Now()
	if t.guard.Cooling(now) {
		t.cooling = true
		remain := t.guard.Remaining(now)
		t.events.emitMessage(fmt.Sprintf(
			"cooldown: %dm %ds until entries resume",
			int(remain.Minutes()), int(remain.Seconds())%60,
		))
		return
	}
	if t.cooling {
		t.cooling = false
		t.events.emitLog("cooldown over, trading resumed")
		t.checkpoint(ctx)
	}
	if sampleErr != nil || snapErr != nil {
		return
	}
	t.decide(ctx, sample.Price, rsiValue, rsiErr == nil, snap)
}

func (t *Trader) currentRSI(ctx context.Context) (float64, error) {
	closes, err := t.feed.Closes(ctx, t.strategy.CandleCount)
	if err != nil {
		return 0, err
	}
	return indicator.RSI(closes, t.strategy.RsiPeriod)
}

// report publishes the per-tick status. Asset value and profit are computed
// exactly once per tick, here.
func (t *Trader) report(ctx context.Context, sample market.PriceSample, rsiValue float64, snap executor.Snapshot) {
	profit := 0.0
	if t.broker.IsHolding(snap, sample.Price) {
		profit = snap.ProfitPct(sample.Price)
	}
	total, _ := snap.TotalAsset(sample.Price).Float64()
	if t.baseline == 0 && total > 0 {
		t.baseline = total
		if err := t.store.SaveBaseline(ctx, total); err != nil {
			t.Sugar.Errorf("save baseline error: %s", err)
		}
	}
	t.events.emitStatus(Status{
		Price:      sample.Price,
		RSI:        rsiValue,
		ProfitPct:  profit,
		TotalAsset: total,
		ChangeRate: sample.ChangeRate,
	})
}

func (t *Trader) chart(ctx context.Context) {
	prices, err := t.feed.RecentTradePrices(ctx, chartTickCount)
	if err != nil {
		t.Sugar.Debugf("trade ticks error: %s", err)
		return
	}
	if len(prices) > 0 {
		t.events.emitChart(prices)
	}
}

func (t *Trader) applyPendingUpdate() {
	select {
	case s := <-t.updates:
		t.strategy = s
		if interval, err := time.ParseDuration(s.Interval); err == nil {
			t.interval = interval
		}
		losses, until := t.guard.State()
		t.guard = executor.NewCooldownGuard(
			s.MaxLossCount, time.Duration(s.CooldownMinutes)*time.Minute,
		)
		t.guard.Restore(losses, until)
		t.events.emitLog("settings applied")
		t.Sugar.Infof("strategy updated: entry %.1f, target %.2f%%, stop %.2f%%, amount %.0f",
			s.RsiEntry, s.RoiTarget, s.RoiStop, s.Amount)
	default:
	}
}

func (t *Trader) drainCommands(ctx context.Context, sample market.PriceSample, priced bool) {
	for {
		select {
		case cmd := <-t.commands:
			switch cmd {
			case cmdBuyNow:
				t.manualBuy(ctx, sample, priced)
			case cmdSellAll:
				t.manualSell(ctx, sample, priced)
			}
		default:
			return
		}
	}
}

func (t *Trader) manualBuy(ctx context.Context, sample market.PriceSample, priced bool) {
	if !priced {
		t.events.emitLog("manual buy failed: no price this tick")
		return
	}
	snap, err := t.broker.Snapshot(ctx)
	if err != nil {
		t.events.emitLog(fmt.Sprintf("manual buy failed: %s", err))
		return
	}
	total := decimal.NewFromFloat(t.strategy.Amount)
	if snap.Cash.LessThan(total) {
		t.events.emitLog("manual buy failed: insufficient KRW balance")
		return
	}
	orderId, err := t.broker.BuyMarket(ctx, total, sample.Price)
	if err != nil {
		t.events.emitLog(fmt.Sprintf("manual buy failed: %s", err))
		return
	}
	t.events.emitLog(fmt.Sprintf("manual buy at %f, order %s", sample.Price, orderId))
	t.Broadcast("manual buy at %f", sample.Price)
	t.checkpoint(ctx)
}

func (t *Trader) manualSell(ctx context.Context, sample market.PriceSample, priced bool) {
	if !priced {
		t.events.emitLog("panic sell failed: no price this tick")
		return
	}
	orderId, err := t.broker.SellAllMarket(ctx, sample.Price)
	if err != nil {
		t.events.emitLog(fmt.Sprintf("panic sell failed: %s", err))
		return
	}
	t.events.emitLog(fmt.Sprintf("panic sell at %f, order %s", sample.Price, orderId))
	t.Broadcast("panic sell at %f", sample.Price)
	t.checkpoint(ctx)
}

// decide applies the per-tick state machine. Position state comes only from
// the snapshot: the engine keeps no memory of it between ticks.
func (t *Trader) decide(ctx context.Context, price, rsiValue float64, rsiOK bool, snap executor.Snapshot) {
	s := t.strategy
	if !t.broker.IsHolding(snap, price) {
		if !rsiOK {
			return
		}
		if rsiValue > s.RsiEntry {
			t.events.emitMessage(fmt.Sprintf("watching... RSI %.1f > %.1f", rsiValue, s.RsiEntry))
			return
		}
		total := decimal.NewFromFloat(s.Amount)
		if snap.Cash.LessThan(total) {
			t.events.emitMessage("insufficient KRW balance")
			return
		}
		orderId, err := t.broker.BuyMarket(ctx, total, price)
		if err != nil {
			t.Sugar.Errorf("buy error: %s", err)
			t.events.emitLog(fmt.Sprintf("buy failed: %s", err))
			return
		}
		t.events.emitLog(fmt.Sprintf("buy at %f, RSI %.1f <= %.1f, order %s", price, rsiValue, s.RsiEntry, orderId))
		t.Broadcast("buy at %f (RSI %.1f)", price, rsiValue)
		t.checkpoint(ctx)
		return
	}

	avg, _ := snap.AvgPrice.Float64()
	if avg <= 0 {
		return
	}
	profit := snap.ProfitPct(price)
	t.events.emitMessage(fmt.Sprintf("holding... %+.2f%% (avg %.0f)", profit, avg))

	// take-profit first: it wins when a misconfiguration satisfies both
	var reason string
	switch {
	case profit >= s.RoiTarget:
		reason = "take-profit"
	case profit <= s.RoiStop:
		reason = "stop-loss"
	default:
		return
	}

	orderId, err := t.broker.SellAllMarket(ctx, price)
	if err != nil {
		t.Sugar.Errorf("sell error: %s", err)
		t.events.emitLog(fmt.Sprintf("%s sell failed: %s", reason, err))
		return
	}
	t.events.emitLog(fmt.Sprintf("%s sell at %f (%+.2f%%), order %s", reason, price, profit, orderId))
	t.Broadcast("%s sell at %f (%+.2f%%)", reason, price, profit)

	if reason == "stop-loss" {
		if t.guard.RecordLoss(time.Now()) {
			t.events.emitLog(fmt.Sprintf("loss limit reached, entries suspended for %d minutes", s.CooldownMinutes))
		} else {
			t.events.emitLog(fmt.Sprintf("consecutive stop-loss %d (limit %d)", t.guard.Losses(), s.MaxLossCount))
		}
	} else {
		if t.guard.Losses() > 0 {
			t.events.emitLog("take-profit, loss streak reset")
		}
		t.guard.RecordProfit()
	}
	t.checkpoint(ctx)
}

func (t *Trader) checkpoint(ctx context.Context) {
	if sim, ok := t.broker.(*executor.SimBroker); ok {
		if err := t.store.SaveSim(ctx, sim); err != nil {
			t.Sugar.Errorf("save wallet error: %s", err)
		}
	}
	if err := t.store.SaveGuard(ctx, t.guard); err != nil {
		t.Sugar.Errorf("save cooldown error: %s", err)
	}
}

func (t *Trader) Broadcast(format string, a ...interface{}) {
	if len(t.robots) == 0 {
		return
	}
	message := fmt.Sprintf(format, a...)
	labels := []string{t.config.Exchange.Name, t.config.Exchange.Label}
	seoul := time.FixedZone("KST", 9*60*60)
	timeStr := time.Now().In(seoul).Format("2006-01-02 15:04:05")

	msg := fmt.Sprintf("%s [%s] [%s] %s", timeStr, strings.Join(labels, "] ["), t.market, message)
	for _, robot := range t.robots {
		if err := robot.SendText(msg); err != nil {
			t.Sugar.Infof("broadcast error: %s", err)
		}
	}
}
