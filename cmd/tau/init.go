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

	"code.tauprotocol.io/tau/config"

	"github.com/jessevdk/go-flags"
)

type InitCmd struct {
	Home  string `long:"home" description:"Directory holding the tau configuration"`
	Force bool   `short:"f" long:"force" description:"Overwrite any existing configuration"`
}

var initCmd InitCmd

func Init(_ context.Context, parser *flags.Parser) error {
	initCmd = InitCmd{}
	_, err := parser.AddCommand("init", "Initialise a tau home",
		"Generate the default configuration under the home directory", &initCmd)
	return err
}

func (opts *InitCmd) Execute(_ []string) error {
	home := opts.Home
	if home == "" {
		home = defaultHome()
	}
	if config.HaveConfig(home) && !opts.Force {
		return fmt.Errorf("configuration already exists at %q, re-run with -f to overwrite", config.FilePath(home))
	}
	if err := config.Write(home, config.NewDefaultConfig()); err != nil {
		return err
	}
	fmt.Printf("configuration generated at %s\n", config.FilePath(home))
	return nil
}
