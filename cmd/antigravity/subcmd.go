package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"
	"github.com/xyths/antigravity/cmd/utils"
	"github.com/xyths/antigravity/trader/rsi"
)

func trade(ctx *cli.Context) error {
	t, err := newTrader(ctx)
	if err != nil {
		return err
	}
	if err = t.Init(ctx.Context); err != nil {
		return err
	}
	defer t.Close(ctx.Context)
	go consumeEvents(ctx.Context, t)
	t.SetAuto(true)
	return t.Start(ctx.Context)
}

func print(ctx *cli.Context) error {
	t, err := newTrader(ctx)
	if err != nil {
		return err
	}
	if err = t.Init(ctx.Context); err != nil {
		return err
	}
	defer t.Close(ctx.Context)
	return t.Print(ctx.Context)
}

func clear(ctx *cli.Context) error {
	t, err := newTrader(ctx)
	if err != nil {
		return err
	}
	if err = t.Init(ctx.Context); err != nil {
		return err
	}
	defer t.Close(ctx.Context)
	return t.Clear(ctx.Context)
}

func newTrader(ctx *cli.Context) (*rsi.Trader, error) {
	configFile := ctx.String(utils.ConfigFlag.Name)
	dry := ctx.Bool(utils.DryRunFlag.Name)
	return rsi.New(configFile, dry)
}

// consumeEvents prints the trader's outbound stream. Status lines come every
// tick; print one per minute to keep the console readable.
func consumeEvents(ctx context.Context, t *rsi.Trader) {
	events := t.Events()
	statusCount := 0
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-events.Logs():
			fmt.Printf("[trade] %s\n", msg)
		case msg := <-events.Messages():
			fmt.Printf("[state] %s\n", msg)
		case s := <-events.Statuses():
			statusCount++
			if statusCount%60 == 1 {
				fmt.Printf("[tick] price %f, RSI %.1f, profit %+.2f%%, total %f, 24h %+.2f%%\n",
					s.Price, s.RSI, s.ProfitPct, s.TotalAsset, s.ChangeRate*100)
			}
		case <-events.Charts():
			// chart data is for graphical front ends, nothing to print
		}
	}
}
