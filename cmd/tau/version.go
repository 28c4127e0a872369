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

	"code.tauprotocol.io/tau/version"

	"github.com/jessevdk/go-flags"
)

type VersionCmd struct{}

var versionCmd VersionCmd

func Version(_ context.Context, parser *flags.Parser) error {
	versionCmd = VersionCmd{}
	_, err := parser.AddCommand("version", "Show version info",
		"Show the tau version and commit hash", &versionCmd)
	return err
}

func (opts *VersionCmd) Execute(_ []string) error {
	if hash := version.GetCommitHash(); hash != "" {
		fmt.Printf("tau %s (%s)\n", version.Get(), hash)
		return nil
	}
	fmt.Printf("tau %s\n", version.Get())
	return nil
}
