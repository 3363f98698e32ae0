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
)

// gateOp is an operation changing the ownership classification of an object.
type gateOp uint8

const (
	opTransfer gateOp = iota
	opAttach
	opShare
	opFreeze
	opDelete
)

func (op gateOp) String() string {
	switch op {
	case opTransfer:
		return "transfer"
	case opAttach:
		return "attach"
	case opShare:
		return "share"
	case opFreeze:
		return "freeze"
	case opDelete:
		return "delete"
	}
	return fmt.Sprintf("gateOp(%d)", op)
}

// opFor derives the operation establishing the given owner.
func opFor(owner ledger.Owner) gateOp {
	switch owner.Kind {
	case ledger.ObjectOwner:
		return opAttach
	case ledger.SharedOwner:
		return opShare
	case ledger.Immutable:
		return opFreeze
	}
	return opTransfer
}

// checkGate decides whether op may be applied to the object, which was
// obtained from the given slot. Violations are reported without a command
// index since they concern the provenance of the value, not the command.
func checkGate(o *trackedObject, source ledger.Argument, op gateOp) *ledger.ExecutionError {
	direct := o.input >= 0 && source.Kind == ledger.InputArgument && int(source.Index) == o.input

	// Objects declared as shared inputs may only be operated on through
	// their own input slot.
	if o.origin == fromSharedInput && !direct {
		return notAllowed(o, op, "shared object not used through its input")
	}

	// Objects existing before the transaction may only become shared when
	// used through the input declaring them.
	if op == opShare && o.loaded != nil && o.origin != fromSharedInput && !direct {
		return notAllowed(o, op, "object not shared through its input")
	}

	if o.origin == fromSharedInput && !o.mutable {
		return notAllowed(o, op, "shared object declared read-only")
	}

	// Shared objects stay shared until they are frozen or deleted.
	if o.current.Owner.IsShared() {
		switch op {
		case opShare, opFreeze, opDelete:
		default:
			return notAllowed(o, op, "shared object cannot be "+op.verb())
		}
	}
	return nil
}

func (op gateOp) verb() string {
	switch op {
	case opTransfer:
		return "transferred"
	case opAttach:
		return "attached"
	case opShare:
		return "shared"
	case opFreeze:
		return "frozen"
	}
	return "deleted"
}

func notAllowed(o *trackedObject, op gateOp, reason string) *ledger.ExecutionError {
	log.WithField("object", o.current.ID).WithField("op", op).Debugf("gate rejected operation: %s", reason)
	return ledger.NewError(ledger.SharedObjectOperationNotAllowed)
}
