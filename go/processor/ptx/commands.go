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
	"github.com/Fantom-foundation/Tessera/go/ledger"
	"github.com/holiman/uint256"
)

func (e *execution) transferObjects(c ledger.TransferObjects) *ledger.ExecutionError {
	if len(c.Objects) == 0 {
		return ledger.NewError(ledger.EmptyCommandInput)
	}
	type transfer struct {
		object *trackedObject
		source ledger.Argument
	}
	transfers := make([]transfer, 0, len(c.Objects))
	for i, arg := range c.Objects {
		var v ledger.Value
		var failure *ledger.ExecutionError
		if arg.Kind == ledger.GasCoinArgument {
			v, failure = e.slots.take(arg, i)
		} else {
			v, failure = e.byValue(arg, i)
		}
		if failure != nil {
			return failure
		}
		if v.Kind != ledger.ObjectValue {
			return ledger.NewError(ledger.InvalidTransferObject, "arg_idx", i)
		}
		t, failure := e.trackedOf(v.Object)
		if failure != nil {
			return failure
		}
		transfers = append(transfers, transfer{object: t, source: arg})
	}

	recipientIdx := len(c.Objects)
	r, failure := e.byValue(c.Recipient, recipientIdx)
	if failure != nil {
		return failure
	}
	recipient, ok := r.AsAddress()
	if !ok || !r.CheckType(ledger.TypeAddress) {
		return ledger.NewError(ledger.TypeError, "arg_idx", recipientIdx)
	}
	e.slots.pin(c.Recipient, ledger.TypeAddress)

	for _, t := range transfers {
		if failure := checkGate(t.object, t.source, opTransfer); failure != nil {
			return failure
		}
		t.object.current.Owner = ledger.AddressOwned(recipient)
	}
	return nil
}

func (e *execution) splitCoins(c ledger.SplitCoins) ([]ledger.Value, *ledger.ExecutionError) {
	if len(c.Amounts) == 0 {
		return nil, ledger.NewError(ledger.EmptyCommandInput)
	}
	v, failure := e.byMutRef(c.Coin, 0)
	if failure != nil {
		return nil, failure
	}
	if v.Kind != ledger.ObjectValue || !v.Object.Type.IsCoin() {
		return nil, ledger.NewError(ledger.TypeError, "arg_idx", 0)
	}
	coin := v.Object
	balance, _ := coin.CoinBalance()

	amounts := make([]uint64, len(c.Amounts))
	total := new(uint256.Int)
	for i, arg := range c.Amounts {
		a, failure := e.byValue(arg, i+1)
		if failure != nil {
			return nil, failure
		}
		amount, ok := a.AsU64()
		if !ok || !a.CheckType(ledger.TypeU64) {
			return nil, ledger.NewError(ledger.TypeError, "arg_idx", i+1)
		}
		e.slots.pin(arg, ledger.TypeU64)
		amounts[i] = amount
		total.Add(total, uint256.NewInt(amount))
	}
	if total.Gt(uint256.NewInt(balance)) {
		return nil, ledger.NewError(ledger.InsufficientBalance)
	}
	coin.SetCoinBalance(balance - total.Uint64())

	ctx := txContext{e}
	res := make([]ledger.Value, len(amounts))
	for i, amount := range amounts {
		created := ledger.NewCoin(ctx.FreshID(), coin.Type, amount, ledger.Owner{})
		e.track(created)
		res[i] = ledger.ObjectOf(created)
	}
	return res, nil
}

func (e *execution) mergeCoins(c ledger.MergeCoins) *ledger.ExecutionError {
	if len(c.Sources) == 0 {
		return ledger.NewError(ledger.EmptyCommandInput)
	}
	v, failure := e.byMutRef(c.Destination, 0)
	if failure != nil {
		return failure
	}
	if v.Kind != ledger.ObjectValue || !v.Object.Type.IsCoin() {
		return ledger.NewError(ledger.TypeError, "arg_idx", 0)
	}
	destination := v.Object
	balance, _ := destination.CoinBalance()
	total := uint256.NewInt(balance)

	type source struct {
		object *trackedObject
		arg    ledger.Argument
	}
	sources := make([]source, 0, len(c.Sources))
	for i, arg := range c.Sources {
		s, failure := e.byValue(arg, i+1)
		if failure != nil {
			return failure
		}
		if s.Kind != ledger.ObjectValue || s.Object.Type != destination.Type {
			return ledger.NewError(ledger.TypeError, "arg_idx", i+1)
		}
		if s.Object.ID == destination.ID {
			return ledger.NewError(ledger.InvalidValueUsage, "arg_idx", i+1)
		}
		t, failure := e.trackedOf(s.Object)
		if failure != nil {
			return failure
		}
		amount, _ := s.Object.CoinBalance()
		total.Add(total, uint256.NewInt(amount))
		sources = append(sources, source{object: t, arg: arg})
	}
	if !total.IsUint64() {
		return ledger.NewError(ledger.ArithmeticError)
	}
	for _, s := range sources {
		if failure := checkGate(s.object, s.arg, opDelete); failure != nil {
			return failure
		}
		s.object.state = deleted
	}
	destination.SetCoinBalance(total.Uint64())
	return nil
}

func (e *execution) makeVector(c ledger.MakeVector) ([]ledger.Value, *ledger.ExecutionError) {
	if len(c.Elements) == 0 && c.Type == "" {
		return nil, ledger.NewError(ledger.EmptyCommandInput)
	}
	elementType := c.Type
	elements := make([]ledger.Value, 0, len(c.Elements))
	for i, arg := range c.Elements {
		v, failure := e.byValue(arg, i)
		if failure != nil {
			return nil, failure
		}
		if elementType == "" {
			if v.Type == "" {
				return nil, ledger.NewError(ledger.TypeError, "arg_idx", i)
			}
			elementType = v.Type
		}
		if !v.CheckType(elementType) {
			return nil, ledger.NewError(ledger.TypeError, "arg_idx", i)
		}
		e.slots.pin(arg, elementType)
		elements = append(elements, withType(v, elementType))
	}
	return []ledger.Value{ledger.Vector(elementType, elements)}, nil
}
