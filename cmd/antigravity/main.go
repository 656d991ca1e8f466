package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"
	"github.com/xyths/antigravity/cmd/utils"
)

var app *cli.App

func init() {
	app = &cli.App{
		Name:    filepath.Base(os.Args[0]),
		Action:  trade,
		Usage:   "the RSI reversal trading robot for Upbit KRW markets",
		Version: "0.1.0",
	}

	app.Commands = []*cli.Command{
		{
			Action: print,
			Name:   "print",
			Usage:  "Print the account state",
		},
		{
			Action: clear,
			Name:   "clear",
			Usage:  "clear all trader state in database",
		},
	}
	app.Flags = []cli.Flag{
		utils.ConfigFlag,
		utils.DryRunFlag,
	}
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	if err := app.RunContext(ctx, os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
