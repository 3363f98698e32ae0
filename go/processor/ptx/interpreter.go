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

	"github.com/Fantom-foundation/Tessera/go/ledger"
	"github.com/sirupsen/logrus"
)

// run executes the commands of the transaction in order. The first failing
// command aborts the transaction; computation is charged for all commands
// completed before.
func (e *execution) run() (*ledger.ExecutionError, error) {
	for i, command := range e.tx.Commands {
		e.command = i
		units, failure, err := e.execute(i, command)
		if err != nil {
			return nil, fmt.Errorf("failed to execute command %d (%s): %w", i, ledger.CommandName(command), err)
		}
		if failure != nil {
			log.WithFields(logrus.Fields{
				"tx":      e.digest,
				"command": i,
				"error":   failure,
			}).Debug("transaction aborted")
			return failure, nil
		}
		e.meter.chargeCommand(units)
		log.WithFields(logrus.Fields{
			"tx":      e.digest,
			"command": i,
			"kind":    ledger.CommandName(command),
			"units":   units,
		}).Debug("executed command")
	}
	if result, output, found := e.slots.unusedObject(); found {
		return ledger.NewError(ledger.UnusedValueWithoutDrop, "result_idx", result, "secondary_idx", output), nil
	}
	return nil, nil
}

// execute runs a single command and binds its outputs. It returns the
// computation units consumed within the VM.
func (e *execution) execute(index int, command ledger.Command) (uint64, *ledger.ExecutionError, error) {
	var (
		outputs []ledger.Value
		units   uint64
		failure *ledger.ExecutionError
		err     error
	)
	switch c := command.(type) {
	case ledger.MoveCall:
		outputs, units, failure, err = e.moveCall(c)
	case ledger.TransferObjects:
		failure = e.transferObjects(c)
	case ledger.SplitCoins:
		outputs, failure = e.splitCoins(c)
	case ledger.MergeCoins:
		failure = e.mergeCoins(c)
	case ledger.MakeVector:
		outputs, failure = e.makeVector(c)
	case ledger.Publish:
		outputs, units, failure, err = e.publish(c)
	case ledger.Upgrade:
		outputs, units, failure, err = e.upgrade(c)
	default:
		failure = invalidTransaction(fmt.Sprintf("unsupported command %T", command))
	}
	if err != nil {
		return 0, nil, err
	}
	if failure != nil {
		// Gate rejections and invariant violations concern the transaction
		// as a whole and are not attributed to the command detecting them.
		if failure.Command == nil && !transactionWide(failure.Kind) {
			failure.AtCommand(index)
		}
		return 0, failure, nil
	}
	e.slots.bindResult(index, outputs)
	return units, nil, nil
}

func transactionWide(kind ledger.ErrorKind) bool {
	return kind == ledger.SharedObjectOperationNotAllowed || kind == ledger.VMInvariantViolation
}

// --- argument resolution ---

// byValue takes an argument moved into a command.
func (e *execution) byValue(arg ledger.Argument, argIdx int) (ledger.Value, *ledger.ExecutionError) {
	if arg.Kind == ledger.GasCoinArgument {
		return ledger.Value{}, ledger.NewError(ledger.InvalidGasCoinUsage, "arg_idx", argIdx)
	}
	v, failure := e.slots.take(arg, argIdx)
	if failure != nil {
		return ledger.Value{}, failure
	}
	if e.containsReadOnly(v) {
		return ledger.Value{}, ledger.NewError(ledger.InvalidObjectByValue, "arg_idx", argIdx)
	}
	return v, nil
}

// byMutRef borrows an argument mutably. The value stays in its slot and
// reflects all modifications.
func (e *execution) byMutRef(arg ledger.Argument, argIdx int) (ledger.Value, *ledger.ExecutionError) {
	v, failure := e.slots.peek(arg, argIdx)
	if failure != nil {
		return ledger.Value{}, failure
	}
	if e.containsReadOnly(v) {
		return ledger.Value{}, ledger.NewError(ledger.InvalidObjectByMutRef, "arg_idx", argIdx)
	}
	return v, nil
}

// byRef borrows an argument immutably.
func (e *execution) byRef(arg ledger.Argument, argIdx int) (ledger.Value, *ledger.ExecutionError) {
	return e.slots.peek(arg, argIdx)
}

func (e *execution) containsReadOnly(v ledger.Value) bool {
	for _, o := range v.Objects() {
		if t := e.objects[o.ID]; t != nil && t.isReadOnly() {
			return true
		}
	}
	return false
}

// trackedOf returns the working set entry of an object held by a value.
func (e *execution) trackedOf(o *ledger.Object) (*trackedObject, *ledger.ExecutionError) {
	t := e.objects[o.ID]
	if t == nil || t.state != live {
		return nil, violation("object %v is not part of the working set", o.ID)
	}
	return t, nil
}

// withType assigns the given type to untyped pure values.
func withType(v ledger.Value, t ledger.TypeTag) ledger.Value {
	if t == "" {
		return v
	}
	switch v.Kind {
	case ledger.PrimitiveValue:
		if v.Type == "" {
			v.Type = t
		}
	case ledger.VectorValue:
		elem, ok := t.VectorElement()
		if !ok {
			return v
		}
		elements := make([]ledger.Value, len(v.Elements))
		for i, element := range v.Elements {
			elements[i] = withType(element, elem)
		}
		v.Type = t
		v.Elements = elements
	}
	return v
}

func violation(format string, args ...any) *ledger.ExecutionError {
	reason := fmt.Sprintf(format, args...)
	log.WithField("reason", reason).Warn("invariant violation")
	return ledger.NewError(ledger.VMInvariantViolation, "reason", fmt.Sprintf("%q", reason))
}
