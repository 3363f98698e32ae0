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
	"errors"
	"fmt"

	"github.com/Fantom-foundation/Tessera/go/ledger"
	"github.com/holiman/uint256"
)

// checkStatic validates the parts of a transaction not depending on the
// state of the ledger.
func (e *execution) checkStatic() *ledger.ExecutionError {
	tx, p := e.tx, e.protocol
	switch {
	case len(tx.Commands) == 0:
		return invalidTransaction("no commands")
	case len(tx.Commands) > p.MaxCommands:
		return invalidTransaction(fmt.Sprintf("%d commands exceed the limit of %d", len(tx.Commands), p.MaxCommands))
	case len(tx.Inputs) > p.MaxInputs:
		return invalidTransaction(fmt.Sprintf("%d inputs exceed the limit of %d", len(tx.Inputs), p.MaxInputs))
	}
	for i, in := range tx.Inputs {
		if in.Kind == ledger.PureInput && len(in.Pure) > p.MaxPureArgumentSize {
			return invalidTransaction(fmt.Sprintf("pure input %d exceeds the size limit of %d bytes", i, p.MaxPureArgumentSize))
		}
	}
	for i, c := range tx.Commands {
		if v, ok := c.(ledger.MakeVector); ok && len(v.Elements) > p.MaxVectorLength {
			return invalidTransaction(fmt.Sprintf("vector of command %d exceeds the length limit of %d", i, p.MaxVectorLength))
		}
	}

	if tx.Gas.Price == 0 || tx.Gas.Price < e.epoch.ReferenceGasPrice {
		return ledger.NewError(ledger.GasPriceTooLow, "gas_price", tx.Gas.Price, "reference_gas_price", e.epoch.ReferenceGasPrice)
	}
	if tx.Gas.Budget < p.MinGasBudget || tx.Gas.Budget > p.MaxGasBudget {
		return ledger.NewError(ledger.GasBudgetOutOfRange, "budget", tx.Gas.Budget, "min", p.MinGasBudget, "max", p.MaxGasBudget)
	}
	if base := p.ComputationCost(0, tx.Gas.Price); base > tx.Gas.Budget {
		return ledger.NewError(ledger.InsufficientGas)
	}
	return nil
}

func invalidTransaction(reason string) *ledger.ExecutionError {
	return ledger.NewError(ledger.InvalidTransaction, "reason", fmt.Sprintf("%q", reason))
}

// load resolves the gas coin and all object inputs against the store and
// binds the input slots. Failures are reported without a command index.
func (e *execution) load(store ledger.ObjectReader) (*ledger.ExecutionError, error) {
	tx := e.tx
	maxVersion := ledger.Version(0)
	seen := map[ledger.ObjectID]bool{}

	// gas coin
	gas, failure, err := ledger.Resolve(store, tx.Gas.Payment)
	if failure != nil || err != nil {
		return failure, err
	}
	if gas.Type != ledger.GasCoinType || !gas.Owner.IsOwnedBy(tx.Gas.Owner) {
		return ledger.NewError(ledger.InvalidGasObject, "object_id", gas.ID), nil
	}
	balance, _ := gas.CoinBalance()
	if balance < tx.Gas.Budget {
		return ledger.NewError(ledger.GasBalanceTooLow, "balance", balance, "budget", tx.Gas.Budget), nil
	}
	seen[gas.ID] = true
	maxVersion = max(maxVersion, gas.Version)

	// The budget is reserved while commands run and settled at the end.
	current := gas.Clone()
	current.SetCoinBalance(balance - tx.Gas.Budget)
	e.gasCoin = &trackedObject{current: current, loaded: gas, origin: fromGasCoin, input: -1}
	e.objects[gas.ID] = e.gasCoin

	values := make([]ledger.Value, len(tx.Inputs))
	for i, in := range tx.Inputs {
		if in.Kind == ledger.PureInput {
			values[i] = ledger.Primitive("", in.Pure)
			continue
		}
		id, _ := in.ObjectID()
		if seen[id] {
			return ledger.NewError(ledger.DuplicateObjectInput, "object_id", id), nil
		}
		seen[id] = true

		var object *ledger.Object
		tracked := &trackedObject{input: i}
		switch in.Kind {
		case ledger.OwnedObjectInput:
			object, failure, err = ledger.Resolve(store, in.Object)
			if failure != nil || err != nil {
				return failure, err
			}
			switch {
			case object.Owner.Kind == ledger.Immutable:
				tracked.origin = fromImmutableInput
			case object.Owner.IsOwnedBy(tx.Sender):
				tracked.origin = fromOwnedInput
			default:
				return ledger.NewError(ledger.InvalidObjectOwnership, "object_id", id), nil
			}

		case ledger.SharedObjectInput:
			object, err = store.GetObject(id)
			if errors.Is(err, ledger.ErrNotFound) {
				return ledger.NewError(ledger.ObjectNotFound, "object_id", id), nil
			}
			if err != nil {
				return nil, err
			}
			if !object.Owner.IsShared() {
				return ledger.NewError(ledger.NotSharedObject, "object_id", id), nil
			}
			if object.Owner.InitialSharedVersion != in.InitialSharedVersion {
				return ledger.NewError(ledger.SharedVersionMismatch, "object_id", id,
					"expected", in.InitialSharedVersion, "actual", object.Owner.InitialSharedVersion), nil
			}
			tracked.origin = fromSharedInput
			tracked.mutable = in.Mutable
			e.shared = append(e.shared, object.Ref())

		case ledger.ReceivingInput:
			object, failure, err = ledger.Resolve(store, in.Object)
			if failure != nil || err != nil {
				return failure, err
			}
			receivable := object.Owner.Kind == ledger.ObjectOwner ||
				(object.Owner.Kind == ledger.AddressOwner && object.Owner.Address != tx.Sender)
			if !receivable {
				return ledger.NewError(ledger.InvalidReceivingObject, "object_id", id), nil
			}
			tracked.origin = fromReceivingInput

		default:
			return invalidTransaction(fmt.Sprintf("unknown kind of input %d", i)), nil
		}

		tracked.loaded = object
		tracked.current = object.Clone()
		e.objects[id] = tracked
		if in.Kind == ledger.ReceivingInput {
			values[i] = ledger.Value{Kind: ledger.ReceivingValue, Receiving: in.Object, Object: tracked.current}
		} else {
			values[i] = ledger.ObjectOf(tracked.current)
		}
		maxVersion = max(maxVersion, object.Version)
	}

	e.lamport = maxVersion + 1
	e.slots = newTracker(values, ledger.ObjectOf(e.gasCoin.current), len(tx.Commands))
	return nil, nil
}

// restoreGasCoin resets the gas coin to its loaded state, releasing the
// reserved budget.
func (e *execution) restoreGasCoin() {
	*e.gasCoin.current = *e.gasCoin.loaded.Clone()
	e.gasCoin.state = live
}

// releaseBudget returns the reserved budget to the gas coin balance.
func (e *execution) releaseBudget() {
	balance, _ := e.gasCoin.current.CoinBalance()
	total := new(uint256.Int).Add(uint256.NewInt(balance), uint256.NewInt(e.tx.Gas.Budget))
	e.gasCoin.current.SetCoinBalance(saturate(total))
}
