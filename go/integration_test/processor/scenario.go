// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package processor

import (
	"errors"
	"strings"
	"testing"

	"github.com/Fantom-foundation/Tessera/go/config"
	"github.com/Fantom-foundation/Tessera/go/ledger"
)

// Scenario represents a test scenario for a transaction processor. A scenario
// consists of a world state before and after the operation, a transaction to
// be executed, the epoch parameters, and the expected outcome.
//
// Objects of the world states not defining a storage rebate are assumed to
// have paid the storage fee of their current contents. The balance of the
// gas coin in the post-state is derived from the gas summary of the effects,
// which in turn is checked against the storage fees of the written and
// removed objects.
type Scenario struct {
	Before      WorldState
	After       WorldState
	Epoch       ledger.EpochParameters
	Transaction ledger.Transaction
	// Failure is the expected failure record, empty if the transaction is
	// expected to succeed.
	Failure string
	// GasSummary is checked if not nil.
	GasSummary *ledger.GasSummary
}

// Run executes the scenario on the given processor and store. The store is
// expected to be empty and is populated with the objects of the pre-state.
func (s *Scenario) Run(t *testing.T, processor ledger.Processor, store ledger.ObjectStore) ledger.TransactionEffects {
	t.Helper()
	before := withStorageRebates(s.Before)
	for _, o := range before.Objects() {
		if err := store.PutObject(o); err != nil {
			t.Fatalf("failed to initialize store: %v", err)
		}
	}

	effects, err := processor.Run(s.Epoch, s.Transaction, store)
	if err != nil {
		t.Fatalf("failed to run transaction: %v", err)
	}

	// check the status of the transaction
	if s.Failure == "" && !effects.Success() {
		t.Fatalf("unexpected failure:\n%v", ledger.FormatFailure(effects.Status.Error))
	}
	if s.Failure != "" {
		if effects.Success() {
			t.Fatalf("expected failure %q, got success", s.Failure)
		}
		if want, got := s.Failure, ledger.FormatFailure(effects.Status.Error); want != got {
			t.Errorf("unexpected failure, wanted\n%v\ngot\n%v", want, got)
		}
	}
	if s.GasSummary != nil {
		if want, got := *s.GasSummary, effects.GasSummary; want != got {
			t.Errorf("unexpected gas summary, wanted %v, got %v", want, got)
		}
	}

	// check the storage charges
	after := withStorageRebates(s.After)
	checkStorageCharges(t, before, after, effects)

	// check the world state after the operation
	gas := s.Transaction.Gas.Payment.ID
	if o, found := after[gas]; found {
		o.Contents = ledger.NewCoin(gas, o.Type, charged(o.Balance(), effects.GasSummary), o.Owner).Contents
		after[gas] = o
	}
	if want, got := after, readWorldState(t, store, before, after); !want.Equal(got) {
		diff := strings.Join(got.Diff(want), "\n\t")
		t.Fatalf("unexpected world state after the operation: \n\t%v", diff)
	}
	for _, ref := range effects.Created {
		if o := after[ref.ID]; o.IsZero() {
			t.Errorf("created object %v is not part of the expected world state", ref.ID)
		}
	}
	return effects
}

func (s *Scenario) Clone() Scenario {
	res := *s
	res.Before = s.Before.Clone()
	res.After = s.After.Clone()
	if s.GasSummary != nil {
		summary := *s.GasSummary
		res.GasSummary = &summary
	}
	return res
}

// readWorldState fetches the live versions of all objects mentioned by any
// of the given world states.
func readWorldState(t *testing.T, store ledger.ObjectReader, states ...WorldState) WorldState {
	t.Helper()
	res := WorldState{}
	for _, state := range states {
		for id := range state {
			o, err := store.GetObject(id)
			if errors.Is(err, ledger.ErrNotFound) {
				continue
			}
			if err != nil {
				t.Fatalf("failed to read object %v: %v", id, err)
			}
			res[id] = FromLedger(o)
		}
	}
	return res
}

// withStorageRebates fills in the storage rebates left undefined.
func withStorageRebates(s WorldState) WorldState {
	res := s.Clone()
	protocol := config.Default()
	for id, o := range res {
		if o.IsZero() || o.StorageRebate != 0 {
			continue
		}
		o.StorageRebate = protocol.StorageFee(o.ToLedger(id).ContentSize())
		res[id] = o
	}
	return res
}

// checkStorageCharges verifies that the storage cost of the effects covers
// the objects written by the transaction and that the rebates are taken
// from the objects written or removed.
func checkStorageCharges(t *testing.T, before, after WorldState, effects ledger.TransactionEffects) {
	t.Helper()
	cost, pool := uint64(0), uint64(0)
	for id, o := range after {
		if effects.LamportVersion == 0 || o.Version != effects.LamportVersion {
			continue
		}
		cost += o.StorageRebate
		if previous, found := before[id]; found {
			pool += previous.StorageRebate
		}
	}
	for id, o := range before {
		if removed := after[id]; removed.IsZero() {
			pool += o.StorageRebate
		}
	}
	summary := effects.GasSummary
	if want, got := cost, summary.StorageCost; want != got {
		t.Errorf("unexpected storage cost, wanted %d, got %d", want, got)
	}
	if want, got := pool, summary.StorageRebate+summary.NonRefundableStorageFee; want != got {
		t.Errorf("unexpected rebate pool, wanted %d, got %d", want, got)
	}
	if want, got := config.Default().NonRefundableFee(pool), summary.NonRefundableStorageFee; want != got {
		t.Errorf("unexpected non-refundable storage fee, wanted %d, got %d", want, got)
	}
}

// charged applies the net charge of a gas summary to a balance.
func charged(balance uint64, summary ledger.GasSummary) uint64 {
	return uint64(int64(balance) - summary.NetCharge())
}

// totalBalance sums up the balances of all coins of the given type.
func totalBalance(s WorldState, coinType ledger.TypeTag) uint64 {
	res := uint64(0)
	for _, o := range s {
		if o.Type == coinType {
			res += o.Balance()
		}
	}
	return res
}
