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
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Fantom-foundation/Tessera/go/config"
	cliUtils "github.com/Fantom-foundation/Tessera/go/driver/cli"
	"github.com/Fantom-foundation/Tessera/go/ledger"
	"github.com/Fantom-foundation/Tessera/go/processor/ptx"
	"github.com/Fantom-foundation/Tessera/go/store"
	"github.com/Fantom-foundation/Tessera/go/store/leveldb"
	"github.com/Fantom-foundation/Tessera/go/store/memory"
	"github.com/urfave/cli/v2"
)

var RunCmd = cli.Command{
	Action:    doRun,
	Name:      "run",
	Usage:     "Runs the transactions of a scenario file and prints their effects",
	ArgsUsage: "<scenario.json>",
	Flags: []cli.Flag{
		cliUtils.ConfigFlag,
		cliUtils.DbFlag,
	},
}

// cacheSize is the number of objects cached in front of persistent stores.
const cacheSize = 1 << 14

func doRun(context *cli.Context) error {
	if context.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one scenario file")
	}
	scenario, err := loadScenario(context.Args().Get(0))
	if err != nil {
		return err
	}

	protocol, err := cliUtils.ConfigFlag.Fetch(context)
	if err != nil {
		return err
	}

	objects, closeStore, err := openStore(cliUtils.DbFlag.Fetch(context))
	if err != nil {
		return err
	}
	defer closeStore()

	vm, err := ledger.NewVM("native")
	if err != nil {
		return err
	}
	return runScenario(scenario, protocol, ptx.New(vm, protocol), objects, os.Stdout)
}

// openStore opens the persistent store in the given directory, or an
// in-memory store if no directory is given.
func openStore(dir string) (ledger.ObjectStore, func() error, error) {
	if dir == "" {
		return memory.New(), func() error { return nil }, nil
	}
	db, err := leveldb.Open(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open object store: %w", err)
	}
	cached, err := store.NewCached(db, cacheSize)
	if err != nil {
		return nil, nil, errors.Join(err, db.Close())
	}
	return cached, db.Close, nil
}

// runScenario creates the genesis objects and runs all steps of the scenario.
// Effects and object dumps are written to out, separated by empty lines.
func runScenario(s *scenarioFile, protocol config.Protocol, processor ledger.Processor, objects ledger.ObjectStore, out io.Writer) error {
	n, err := newNames(s.Accounts)
	if err != nil {
		return err
	}
	genesis, err := buildGenesis(s.Genesis, n, protocol)
	if err != nil {
		return err
	}
	for _, o := range genesis {
		_, err := objects.GetObject(o.ID)
		if err == nil {
			continue // < created by a previous run on the same store
		}
		if !errors.Is(err, ledger.ErrNotFound) {
			return err
		}
		if err := objects.PutObject(o); err != nil {
			return fmt.Errorf("failed to store genesis object: %w", err)
		}
	}

	for i, step := range s.Steps {
		task := i + 1
		switch {
		case step.Transaction != nil:
			tx, err := step.Transaction.build(n, objects)
			if err != nil {
				return fmt.Errorf("task %d: %w", task, err)
			}
			effects, err := processor.Run(s.Epoch, tx, objects)
			if err != nil {
				return fmt.Errorf("task %d: %w", task, err)
			}
			nameCreated(n, task, effects)
			fmt.Fprintf(out, "task %d, transaction:\n%s\n\n", task, ledger.FormatEffects(&effects, n.Name))

		case step.Dump != "":
			id, err := n.object(step.Dump)
			if err != nil {
				return fmt.Errorf("task %d: %w", task, err)
			}
			o, err := objects.GetObject(id)
			if err != nil {
				return fmt.Errorf("task %d: failed to load %s: %w", task, step.Dump, err)
			}
			fmt.Fprintf(out, "task %d, dump %s:\n%s\n\n", task, n.Name(id), ledger.FormatObject(o, n.Name))

		default:
			return fmt.Errorf("task %d: empty step", task)
		}
	}
	return nil
}

// maxFreshIDs bounds the search for the creation index of created objects.
const maxFreshIDs = 1 << 12

// nameCreated names the objects created by a transaction after the index
// of their fresh id.
func nameCreated(n *names, task int, effects ledger.TransactionEffects) {
	pending := map[ledger.ObjectID]bool{}
	for _, ref := range effects.Created {
		pending[ref.ID] = true
	}
	for i := 0; len(pending) > 0 && i < maxFreshIDs; i++ {
		id := ledger.DeriveObjectID(effects.TransactionDigest, uint64(i))
		if pending[id] {
			n.add(task, i, id)
			delete(pending, id)
		}
	}
}
