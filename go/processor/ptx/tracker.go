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
	"github.com/sirupsen/logrus"
)

type slotState uint8

const (
	available slotState = iota
	consumed
)

type slot struct {
	value ledger.Value
	state slotState
}

// tracker holds the value slots of a transaction: one per input, the gas
// coin, and one arena entry per command output indexed by (command, output).
// Results of commands not executed yet are nil.
type tracker struct {
	gasCoin slot
	inputs  []slot
	results [][]slot
}

func newTracker(inputs []ledger.Value, gasCoin ledger.Value, commands int) *tracker {
	res := &tracker{
		gasCoin: slot{value: gasCoin},
		inputs:  make([]slot, len(inputs)),
		results: make([][]slot, commands),
	}
	for i, v := range inputs {
		res.inputs[i] = slot{value: v}
	}
	return res
}

// bindResult binds the outputs of a command. It is called once per
// successfully executed command.
func (t *tracker) bindResult(command int, outputs []ledger.Value) {
	slots := make([]slot, len(outputs))
	for i, v := range outputs {
		slots[i] = slot{value: v}
	}
	t.results[command] = slots
}

// lookup locates the slot addressed by an argument. argIdx is the position
// of the argument within its command and is used for error reporting.
func (t *tracker) lookup(arg ledger.Argument, argIdx int) (*slot, *ledger.ExecutionError) {
	switch arg.Kind {
	case ledger.GasCoinArgument:
		return &t.gasCoin, nil
	case ledger.InputArgument:
		if int(arg.Index) >= len(t.inputs) {
			return nil, ledger.NewError(ledger.IndexOutOfBounds, "arg_idx", argIdx, "idx", arg.Index)
		}
		return &t.inputs[arg.Index], nil
	case ledger.ResultArgument, ledger.NestedResultArgument:
		if int(arg.Index) >= len(t.results) {
			return nil, ledger.NewError(ledger.IndexOutOfBounds, "arg_idx", argIdx, "idx", arg.Index)
		}
		outputs := t.results[arg.Index]
		if outputs == nil {
			return nil, ledger.NewError(ledger.ArgumentWithoutValue, "arg_idx", argIdx)
		}
		if arg.Kind == ledger.ResultArgument {
			if len(outputs) != 1 {
				return nil, ledger.NewError(ledger.InvalidResultArity, "arg_idx", argIdx, "result_idx", arg.Index)
			}
			return &outputs[0], nil
		}
		if int(arg.Nested) >= len(outputs) {
			return nil, ledger.NewError(ledger.SecondaryIndexOutOfBounds, "arg_idx", argIdx, "result_idx", arg.Index, "secondary_idx", arg.Nested)
		}
		return &outputs[arg.Nested], nil
	}
	return nil, ledger.NewError(ledger.InvalidValueUsage, "arg_idx", argIdx)
}

// take moves the value out of the slot. Copyable values are copied and
// leave the slot available.
func (t *tracker) take(arg ledger.Argument, argIdx int) (ledger.Value, *ledger.ExecutionError) {
	s, err := t.lookup(arg, argIdx)
	if err != nil {
		return ledger.Value{}, err
	}
	if s.state != available {
		return ledger.Value{}, ledger.NewError(ledger.ArgumentWithoutValue, "arg_idx", argIdx)
	}
	if s.value.IsCopyable() {
		return s.value.Clone(), nil
	}
	s.state = consumed
	log.WithFields(logrus.Fields{"slot": arg, "value": s.value}).Trace("value taken")
	return s.value, nil
}

// peek returns the value without changing the state of the slot. Objects
// within the value are shared with the slot, so in-place modifications
// are visible to later users of the slot.
func (t *tracker) peek(arg ledger.Argument, argIdx int) (ledger.Value, *ledger.ExecutionError) {
	s, err := t.lookup(arg, argIdx)
	if err != nil {
		return ledger.Value{}, err
	}
	if s.state != available {
		return ledger.Value{}, ledger.NewError(ledger.ArgumentWithoutValue, "arg_idx", argIdx)
	}
	return s.value, nil
}

// pin fixes the type of an untyped pure value held by the slot addressed
// by arg. Later uses of the slot are checked against this type.
func (t *tracker) pin(arg ledger.Argument, typ ledger.TypeTag) {
	if s, failure := t.lookup(arg, 0); failure == nil {
		s.value = withType(s.value, typ)
	}
}

// unusedObject locates the first result still holding an object. Such
// values cannot be dropped at the end of a transaction.
func (t *tracker) unusedObject() (command, output int, found bool) {
	for i, outputs := range t.results {
		for j, s := range outputs {
			if s.state == available && len(s.value.Objects()) > 0 {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}
