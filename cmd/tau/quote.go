// Copyright (C) 2026 Tau Protocol Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"code.tauprotocol.io/tau/broker"
	"code.tauprotocol.io/tau/config"
	"code.tauprotocol.io/tau/core/pools"
	"code.tauprotocol.io/tau/core/types"
	"code.tauprotocol.io/tau/logging"

	"github.com/fatih/color"
	"github.com/jessevdk/go-flags"
	"github.com/mattn/go-isatty"
)

type QuoteCmd struct {
	Home        string `long:"home" description:"Directory holding the tau configuration"`
	Checkpoint  string `long:"checkpoint" required:"true" description:"Path of the engine checkpoint to quote against"`
	Pool        string `long:"pool" required:"true" description:"Pool id to quote"`
	Direction   string `long:"direction" default:"risky-in" choice:"risky-in" choice:"stable-in" description:"Which side enters the pool"`
	Amount      string `long:"amount" required:"true" description:"Token amount, decimal"`
	ExactOutput bool   `long:"exact-output" description:"Treat the amount as the output side"`

	ctx context.Context
}

var quoteCmd QuoteCmd

func Quote(ctx context.Context, parser *flags.Parser) error {
	quoteCmd = QuoteCmd{ctx: ctx}
	_, err := parser.AddCommand("quote", "Price a swap against a checkpoint",
		"Load an engine checkpoint and price a swap without mutating anything", &quoteCmd)
	return err
}

type realClock struct{}

func (realClock) GetTimeNow() time.Time {
	return time.Now()
}

func (opts *QuoteCmd) Execute(_ []string) error {
	color.NoColor = !isatty.IsTerminal(os.Stdout.Fd())

	cfg := config.NewDefaultConfig()
	home := opts.Home
	if home == "" {
		home = defaultHome()
	}
	if config.HaveConfig(home) {
		loaded, err := config.Read(home)
		if err != nil {
			return err
		}
		cfg = *loaded
	}

	log := logging.NewLoggerFromConfig(cfg.Logging)
	defer log.AtExit()

	data, err := os.ReadFile(opts.Checkpoint)
	if err != nil {
		return fmt.Errorf("reading checkpoint: %w", err)
	}

	bkr := broker.New(opts.ctx, log, cfg.Broker)
	engine := pools.New(log, cfg.Pools, newMemLedger(), realClock{}, bkr, cfg.AssetRisky, cfg.AssetStable)
	if err := engine.Load(opts.ctx, data); err != nil {
		return fmt.Errorf("loading checkpoint: %w", err)
	}

	amount, err := wadFromString(opts.Amount)
	if err != nil {
		return err
	}
	dir := types.SwapRiskyIn
	if opts.Direction == types.SwapStableIn.String() {
		dir = types.SwapStableIn
	}
	exact := types.ExactInput
	if opts.ExactOutput {
		exact = types.ExactOutput
	}

	res, err := engine.Quote(opts.Pool, dir, amount, exact)
	if err != nil {
		return fmt.Errorf("quoting: %w", err)
	}

	fmt.Printf("pool      %s\n", res.PoolID)
	fmt.Printf("direction %s, %s\n", res.Direction, exact)
	fmt.Printf("in        %s\n", color.YellowString(res.In.String()))
	fmt.Printf("out       %s\n", color.GreenString(res.Out.String()))
	fmt.Printf("fee       %s\n", res.Fee.String())
	fmt.Printf("invariant %s\n", res.PostInvariant.String())
	return nil
}
