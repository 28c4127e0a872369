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
	"code.tauprotocol.io/tau/libs/num"
	"code.tauprotocol.io/tau/logging"
	"code.tauprotocol.io/tau/metrics"

	"github.com/fatih/color"
	"github.com/jessevdk/go-flags"
	"github.com/mattn/go-isatty"
)

type SimulateCmd struct {
	Home string `long:"home" description:"Directory holding the tau configuration"`

	Strike            uint64 `long:"strike" default:"1000" description:"Strike, whole stable units"`
	SigmaPct          uint64 `long:"sigma" default:"100" description:"Annualised volatility, percent"`
	Days              uint64 `long:"days" default:"365" description:"Days to maturity at creation"`
	FeeBps            uint32 `long:"fee-bps" default:"15" description:"Swap fee, basis points"`
	Liquidity         uint64 `long:"liquidity" default:"100" description:"Initial liquidity, whole units"`
	RiskyPerLiquidity string `long:"risky-per-liquidity" default:"0.5" description:"Initial risky reserve per liquidity share, in (0,1)"`

	Swaps       int    `long:"swaps" default:"10" description:"Number of swaps to run"`
	Amount      string `long:"amount" default:"1" description:"Risky amount per swap, decimal"`
	StepSeconds uint64 `long:"step" default:"86400" description:"Seconds between swaps"`

	CheckpointOut string `long:"checkpoint-out" description:"Write the final engine checkpoint to this file"`

	ctx context.Context
}

var simulateCmd SimulateCmd

func Simulate(ctx context.Context, parser *flags.Parser) error {
	simulateCmd = SimulateCmd{ctx: ctx}
	_, err := parser.AddCommand("simulate", "Run a scripted pool scenario",
		"Create a pool and run a sequence of swaps over simulated time, reporting invariant drift and fee accrual", &simulateCmd)
	return err
}

func (opts *SimulateCmd) Execute(_ []string) error {
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
	metrics.Start(cfg.Metrics)

	ledger := newMemLedger()
	clock := &simClock{now: time.Now()}
	bkr := broker.New(opts.ctx, log, cfg.Broker)
	engine := pools.New(log, cfg.Pools, ledger, clock, bkr, cfg.AssetRisky, cfg.AssetStable)

	const (
		creator = "sim-creator"
		trader  = "sim-trader"
	)
	funding := wadUnits(opts.Strike * opts.Liquidity)
	ledger.Fund(cfg.AssetRisky, creator, funding)
	ledger.Fund(cfg.AssetStable, creator, funding)
	ledger.Fund(cfg.AssetRisky, trader, funding)
	ledger.Fund(cfg.AssetStable, trader, funding)

	riskyPerLiquidity, err := wadFromString(opts.RiskyPerLiquidity)
	if err != nil {
		return err
	}
	amount, err := wadFromString(opts.Amount)
	if err != nil {
		return err
	}

	cal := &types.Calibration{
		Strike:   wadUnits(opts.Strike),
		Sigma:    num.UintZero().Div(wadUnits(opts.SigmaPct), num.NewUint(100)),
		Maturity: clock.GetTimeNow().Unix() + int64(opts.Days)*86400,
	}

	poolID, err := engine.Create(opts.ctx, creator, cal, riskyPerLiquidity, wadUnits(opts.Liquidity), opts.FeeBps,
		&autoSettle{ledger: ledger, party: creator, assetRisky: cfg.AssetRisky, assetStable: cfg.AssetStable}, nil)
	if err != nil {
		return fmt.Errorf("creating pool: %w", err)
	}

	pool, err := engine.Pool(poolID)
	if err != nil {
		return err
	}
	fmt.Printf("pool %s\n", poolID)
	fmt.Printf("reserves risky=%s stable=%s liquidity=%s\n",
		pool.ReserveRisky, pool.ReserveStable, pool.Liquidity)

	cb := &autoSettle{ledger: ledger, party: trader, assetRisky: cfg.AssetRisky, assetStable: cfg.AssetStable}
	var lastInvariant *num.Int
	for i := 0; i < opts.Swaps; i++ {
		now := clock.advance(time.Duration(opts.StepSeconds) * time.Second)
		engine.OnTick(opts.ctx, now)

		res, err := engine.Swap(opts.ctx, trader, poolID, types.SwapRiskyIn,
			amount, num.UintZero(), types.ExactInput, false, cb, nil)
		if err != nil {
			return fmt.Errorf("swap %d: %w", i+1, err)
		}

		drift := ""
		if lastInvariant != nil {
			delta := res.PostInvariant.Clone()
			delta.Sub(lastInvariant)
			drift = fmt.Sprintf(" drift=%s", color.GreenString(delta.String()))
		}
		lastInvariant = res.PostInvariant
		fmt.Printf("swap %2d  in=%s out=%s fee=%s invariant=%s%s\n",
			i+1, res.In, color.GreenString(res.Out.String()), res.Fee, res.PostInvariant, drift)
	}

	pool, err = engine.Pool(poolID)
	if err != nil {
		return err
	}
	fmt.Printf("final reserves risky=%s stable=%s\n", pool.ReserveRisky, pool.ReserveStable)
	fmt.Printf("fee growth risky=%s stable=%s\n", pool.FeeGrowthRisky, pool.FeeGrowthStable)

	if opts.CheckpointOut != "" {
		data, err := engine.Checkpoint(opts.ctx)
		if err != nil {
			return fmt.Errorf("taking checkpoint: %w", err)
		}
		if err := os.WriteFile(opts.CheckpointOut, data, 0o600); err != nil {
			return fmt.Errorf("writing checkpoint: %w", err)
		}
		fmt.Printf("checkpoint written to %s\n", opts.CheckpointOut)
	}
	return nil
}
