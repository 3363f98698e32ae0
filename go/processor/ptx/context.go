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
	"bytes"
	"slices"

	"github.com/Fantom-foundation/Tessera/go/config"
	"github.com/Fantom-foundation/Tessera/go/ledger"
	"golang.org/x/exp/maps"
)

// origin records how an object entered the working set of a transaction.
type origin uint8

const (
	fromOwnedInput origin = iota
	fromImmutableInput
	fromSharedInput
	fromReceivingInput
	fromGasCoin
	fromCreated
)

type objectState uint8

const (
	live objectState = iota
	deleted
	wrapped
)

// trackedObject is an object touched by the running transaction. Values
// bound to slots refer to the same *ledger.Object as current, so updates
// are visible through every slot holding the object.
type trackedObject struct {
	current  *ledger.Object
	loaded   *ledger.Object // state before the transaction, nil if created
	origin   origin
	input    int  // index of the declaring input, -1 if none
	mutable  bool // for shared inputs
	received bool // for receiving inputs
	state    objectState
}

// isReadOnly reports whether the transaction may not modify the object.
func (o *trackedObject) isReadOnly() bool {
	return o.origin == fromImmutableInput || (o.origin == fromSharedInput && !o.mutable)
}

// isWritten reports whether the object is written back if the transaction
// succeeds.
func (o *trackedObject) isWritten() bool {
	if o.state != live {
		return false
	}
	switch o.origin {
	case fromOwnedInput, fromGasCoin, fromCreated:
		return true
	case fromSharedInput:
		return o.mutable
	case fromReceivingInput:
		return o.received
	}
	return false
}

// execution is the state of one transaction run. It is used by a single
// goroutine and discarded after the run.
type execution struct {
	protocol config.Protocol
	vm       ledger.VM
	epoch    ledger.EpochParameters
	tx       *ledger.Transaction
	digest   ledger.Digest
	lamport  ledger.Version

	objects map[ledger.ObjectID]*trackedObject
	gasCoin *trackedObject
	slots   *tracker
	meter   *gasMeter

	shared     []ledger.ObjectRef
	idsCreated uint64
	command    int // index of the running command
}

func newExecution(protocol config.Protocol, vm ledger.VM, epoch ledger.EpochParameters, tx *ledger.Transaction) *execution {
	return &execution{
		protocol: protocol,
		vm:       vm,
		epoch:    epoch,
		tx:       tx,
		digest:   tx.Digest(),
		objects:  map[ledger.ObjectID]*trackedObject{},
		meter:    newGasMeter(protocol, tx.Gas),
	}
}

// track adds an object created by the transaction to the working set.
func (e *execution) track(o *ledger.Object) *trackedObject {
	res := &trackedObject{current: o, origin: fromCreated, input: -1}
	e.objects[o.ID] = res
	return res
}

// sortedObjects lists the working set ordered by object id.
func (e *execution) sortedObjects() []*trackedObject {
	ids := maps.Keys(e.objects)
	slices.SortFunc(ids, compareIDs)
	res := make([]*trackedObject, 0, len(ids))
	for _, id := range ids {
		res = append(res, e.objects[id])
	}
	return res
}

func compareIDs(a, b ledger.ObjectID) int {
	return bytes.Compare(a[:], b[:])
}

// --- ledger.TxContext ---

type txContext struct {
	e *execution
}

func (c txContext) Sender() ledger.Address {
	return c.e.tx.Sender
}

func (c txContext) Digest() ledger.Digest {
	return c.e.digest
}

func (c txContext) Epoch() uint64 {
	return c.e.epoch.Epoch
}

func (c txContext) FreshID() ledger.ObjectID {
	res := ledger.DeriveObjectID(c.e.digest, c.e.idsCreated)
	c.e.idsCreated++
	return res
}
