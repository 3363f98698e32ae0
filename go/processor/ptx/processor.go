// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package ptx

import (
	"fmt"

	"github.com/Fantom-foundation/Tessera/go/config"
	"github.com/Fantom-foundation/Tessera/go/ledger"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "ptx")

func init() {
	ledger.RegisterProcessorFactory("ptx", func(vm ledger.VM) ledger.Processor {
		return New(vm, config.Default())
	})
}

// Processor executes programmable transactions against an object store.
// It is stateless and may be used by multiple goroutines concurrently, as
// long as transactions touching the same objects are run sequentially.
type Processor struct {
	vm       ledger.VM
	protocol config.Protocol
}

func New(vm ledger.VM, protocol config.Protocol) *Processor {
	return &Processor{vm: vm, protocol: protocol}
}

// Run executes the transaction and commits its changes to the store. The
// returned error is nil whenever the transaction was processed, even if it
// failed. Rejected transactions leave the store untouched.
func (p *Processor) Run(
	epoch ledger.EpochParameters,
	transaction ledger.Transaction,
	store ledger.ObjectStore,
) (ledger.TransactionEffects, error) {
	res, err := p.execute(epoch, &transaction, store)
	if err != nil {
		return ledger.TransactionEffects{}, err
	}
	if len(res.written) == 0 && len(res.removed) == 0 {
		return res.effects, nil
	}
	if err := commit(store, res); err != nil {
		return ledger.TransactionEffects{}, fmt.Errorf("failed to commit transaction %v: %w", res.effects.TransactionDigest, err)
	}
	return res.effects, nil
}

// DryRun executes the transaction without committing it. Besides the
// effects, it returns the objects the transaction would write.
func (p *Processor) DryRun(
	epoch ledger.EpochParameters,
	transaction ledger.Transaction,
	store ledger.ObjectReader,
) (ledger.TransactionEffects, []*ledger.Object, error) {
	res, err := p.execute(epoch, &transaction, store)
	if err != nil {
		return ledger.TransactionEffects{}, nil, err
	}
	return res.effects, res.written, nil
}

func (p *Processor) execute(
	epoch ledger.EpochParameters,
	transaction *ledger.Transaction,
	store ledger.ObjectReader,
) (outcome, error) {
	e := newExecution(p.protocol, p.vm, epoch, transaction)
	if failure := e.checkStatic(); failure != nil {
		return rejected(e, failure), nil
	}
	failure, err := e.load(store)
	if err != nil {
		return outcome{}, fmt.Errorf("failed to load inputs of transaction %v: %w", e.digest, err)
	}
	if failure != nil {
		return rejected(e, failure), nil
	}
	failure, err = e.run()
	if err != nil {
		return outcome{}, err
	}
	return e.finish(failure), nil
}

// commit writes the changes of a transaction. Stores supporting batches
// apply them atomically.
func commit(store ledger.ObjectStore, res outcome) error {
	if batch, ok := store.(ledger.BatchWriter); ok {
		return batch.WriteBatch(res.written, res.removed)
	}
	for _, o := range res.written {
		if err := store.PutObject(o); err != nil {
			return err
		}
	}
	for _, id := range res.removed {
		if err := store.DeleteObject(id); err != nil {
			return err
		}
	}
	return nil
}
