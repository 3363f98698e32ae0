// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"fmt"

	cliUtils "github.com/Fantom-foundation/Tessera/go/driver/cli"
	"github.com/Fantom-foundation/Tessera/go/ledger"
	"github.com/Fantom-foundation/Tessera/go/store/leveldb"
	"github.com/urfave/cli/v2"
)

var DumpCmd = cli.Command{
	Action:    doDump,
	Name:      "dump",
	Usage:     "Prints objects of a persistent object store",
	ArgsUsage: "<object-id>...",
	Flags: []cli.Flag{
		cliUtils.DbFlag,
		&cli.BoolFlag{
			Name:  "history",
			Usage: "print all retained versions instead of the live one",
		},
	},
}

func doDump(context *cli.Context) error {
	dir := cliUtils.DbFlag.Fetch(context)
	if dir == "" {
		return fmt.Errorf("missing --%s", cliUtils.DbFlag.Name)
	}
	db, err := leveldb.Open(dir)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, arg := range context.Args().Slice() {
		id, err := ledger.HexToObjectID(arg)
		if err != nil {
			return err
		}
		if !context.Bool("history") {
			o, err := db.GetObject(id)
			if err != nil {
				return fmt.Errorf("failed to load %v: %w", id, err)
			}
			fmt.Printf("%v:\n%s\n\n", id, ledger.FormatObject(o, nil))
			continue
		}
		versions, err := db.Versions(id)
		if err != nil {
			return err
		}
		for _, version := range versions {
			o, err := db.GetObjectByVersion(id, version)
			if err != nil {
				return fmt.Errorf("failed to load %v at version %d: %w", id, version, err)
			}
			fmt.Printf("%v @ %d:\n%s\n\n", id, version, ledger.FormatObject(o, nil))
		}
	}
	return nil
}
