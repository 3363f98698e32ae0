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
)

// callArgument is an argument resolved for a VM invocation.
type callArgument struct {
	source ledger.Argument
	kind   ledger.ParameterKind
	value  ledger.Value
}

// changes are the object deltas reported by the VM for one command.
type changes struct {
	returns []ledger.Value
	written []*ledger.Object
	deleted []ledger.ObjectID
	wrapped []ledger.ObjectID
}

func (e *execution) moveCall(c ledger.MoveCall) ([]ledger.Value, uint64, *ledger.ExecutionError, error) {
	signature, vmFailure, err := e.vm.Signature(c.Target, c.TypeArgs)
	if err != nil {
		return nil, 0, nil, err
	}
	if vmFailure != nil {
		return nil, 0, vmFailure.ToExecutionError(e.command), nil
	}
	if len(c.Args) != len(signature.Parameters) {
		return nil, 0, ledger.NewError(ledger.ArityMismatch), nil
	}

	args := make([]callArgument, len(c.Args))
	params := make([]ledger.Value, len(c.Args))
	for i, arg := range c.Args {
		param := signature.Parameters[i]
		var v ledger.Value
		var failure *ledger.ExecutionError
		switch param.Kind {
		case ledger.ByValue:
			v, failure = e.byValue(arg, i)
		case ledger.ByMutableRef:
			v, failure = e.byMutRef(arg, i)
		default:
			v, failure = e.byRef(arg, i)
		}
		if failure != nil {
			return nil, 0, failure, nil
		}
		if !v.CheckType(param.Type) {
			return nil, 0, ledger.NewError(ledger.TypeError, "arg_idx", i), nil
		}
		v = withType(v, param.Type)
		e.slots.pin(arg, param.Type)
		args[i] = callArgument{source: arg, kind: param.Kind, value: v}
		params[i] = v.Clone()
	}

	res, err := e.vm.Invoke(ledger.InvokeParameters{
		Context:   txContext{e},
		Target:    c.Target,
		TypeArgs:  c.TypeArgs,
		Arguments: params,
	})
	if err != nil {
		return nil, 0, nil, err
	}
	if res.Failure != nil {
		return nil, 0, res.Failure.ToExecutionError(e.command), nil
	}
	if len(res.Returns) != len(signature.Returns) {
		return nil, 0, violation("%v returned %d values, expected %d", c.Target, len(res.Returns), len(signature.Returns)), nil
	}
	outputs, failure := e.apply(args, changes{
		returns: res.Returns,
		written: res.Written,
		deleted: res.Deleted,
		wrapped: res.Wrapped,
	})
	if failure != nil {
		return nil, 0, failure, nil
	}
	for i := range outputs {
		outputs[i] = withType(outputs[i], signature.Returns[i])
	}
	return outputs, res.ComputationUnits, nil, nil
}

func (e *execution) publish(c ledger.Publish) ([]ledger.Value, uint64, *ledger.ExecutionError, error) {
	if len(c.Modules) == 0 {
		return nil, 0, ledger.NewError(ledger.EmptyCommandInput), nil
	}
	res, err := e.vm.Publish(ledger.PublishParameters{
		Context:      txContext{e},
		Modules:      c.Modules,
		Dependencies: c.Dependencies,
	})
	if err != nil {
		return nil, 0, nil, err
	}
	outputs, failure := e.applyPublish(res, nil, nil)
	return outputs, res.ComputationUnits, failure, nil
}

func (e *execution) upgrade(c ledger.Upgrade) ([]ledger.Value, uint64, *ledger.ExecutionError, error) {
	if len(c.Modules) == 0 {
		return nil, 0, ledger.NewError(ledger.EmptyCommandInput), nil
	}
	ticket, failure := e.byValue(c.Ticket, 0)
	if failure != nil {
		return nil, 0, failure, nil
	}
	if ticket.Kind != ledger.ObjectValue {
		return nil, 0, ledger.NewError(ledger.TypeError, "arg_idx", 0), nil
	}
	res, err := e.vm.Upgrade(ledger.UpgradeParameters{
		Context:      txContext{e},
		Modules:      c.Modules,
		Dependencies: c.Dependencies,
		Package:      c.Package,
		Ticket:       ticket.Clone(),
	})
	if err != nil {
		return nil, 0, nil, err
	}
	// the ticket is consumed by the upgrade
	args := []callArgument{{source: c.Ticket, kind: ledger.ByValue, value: ticket}}
	outputs, failure := e.applyPublish(res, args, []ledger.ObjectID{ticket.Object.ID})
	return outputs, res.ComputationUnits, failure, nil
}

func (e *execution) applyPublish(res ledger.PublishResult, args []callArgument, consumed []ledger.ObjectID) ([]ledger.Value, *ledger.ExecutionError) {
	if res.Failure != nil {
		return nil, res.Failure.ToExecutionError(e.command)
	}
	if res.Package == nil {
		return nil, violation("no package created")
	}
	if _, found := e.objects[res.Package.ID]; found {
		return nil, violation("package id %v already in use", res.Package.ID)
	}
	pkg := res.Package.Clone()
	pkg.Owner = ledger.ImmutableOwner()
	e.track(pkg)
	return e.apply(args, changes{
		returns: res.Returns,
		written: res.Written,
		deleted: consumed,
	})
}

// apply integrates the changes reported by the VM into the working set.
// Objects moved into the call must be returned, written, deleted or
// wrapped; every ownership change is subject to the gate.
func (e *execution) apply(args []callArgument, c changes) ([]ledger.Value, *ledger.ExecutionError) {
	moved := map[ledger.ObjectID]ledger.Argument{}
	borrowed := map[ledger.ObjectID]ledger.ParameterKind{}
	tickets := map[ledger.ObjectID]bool{}
	for _, a := range args {
		for _, o := range a.value.Objects() {
			if a.kind == ledger.ByValue {
				moved[o.ID] = a.source
			} else {
				borrowed[o.ID] = a.kind
			}
		}
		if a.value.Kind == ledger.ReceivingValue && a.kind == ledger.ByValue {
			tickets[a.value.Receiving.ID] = true
		}
	}
	accounted := map[ledger.ObjectID]bool{}

	for _, w := range c.written {
		t := e.objects[w.ID]
		if t == nil {
			if w.Owner.Kind == ledger.Unowned {
				return nil, violation("new object %v has no owner", w.ID)
			}
			created := w.Clone()
			created.Version = 0
			if created.Owner.IsShared() {
				created.Owner = ledger.Shared(e.lamport)
			}
			e.track(created)
			continue
		}
		if t.state != live {
			return nil, violation("written object %v was removed before", w.ID)
		}
		if source, found := moved[w.ID]; found {
			if w.Owner.Kind == ledger.Unowned {
				return nil, violation("moved object %v has no owner", w.ID)
			}
			if failure := checkGate(t, source, opFor(w.Owner)); failure != nil {
				return nil, failure
			}
			accounted[w.ID] = true
		} else {
			if borrowed[w.ID] != ledger.ByMutableRef || t.isReadOnly() {
				return nil, violation("object %v modified without mutable access", w.ID)
			}
			if !sameOwner(t.current.Owner, w.Owner) {
				return nil, violation("owner of borrowed object %v changed", w.ID)
			}
		}
		e.update(t, w, true)
	}

	remove := func(ids []ledger.ObjectID, op gateOp, state objectState) *ledger.ExecutionError {
		for _, id := range ids {
			t := e.objects[id]
			source, found := moved[id]
			if t == nil || !found || t.state != live {
				return violation("object %v cannot be %s by the call", id, op.verb())
			}
			if failure := checkGate(t, source, op); failure != nil {
				return failure
			}
			t.state = state
			accounted[id] = true
		}
		return nil
	}
	if failure := remove(c.deleted, opDelete, deleted); failure != nil {
		return nil, failure
	}
	if failure := remove(c.wrapped, opAttach, wrapped); failure != nil {
		return nil, failure
	}

	outputs := make([]ledger.Value, len(c.returns))
	for i, r := range c.returns {
		v, failure := e.adopt(r, moved, tickets, accounted)
		if failure != nil {
			return nil, failure
		}
		outputs[i] = v
	}

	for id := range moved {
		if !accounted[id] {
			return nil, violation("object %v moved into the call was lost", id)
		}
	}
	return outputs, nil
}

// adopt binds a value returned by the VM to the working set. Objects new to
// the working set are created by the call and remain unplaced.
func (e *execution) adopt(v ledger.Value, moved map[ledger.ObjectID]ledger.Argument, tickets, accounted map[ledger.ObjectID]bool) (ledger.Value, *ledger.ExecutionError) {
	switch v.Kind {
	case ledger.ObjectValue:
		o := v.Object
		t := e.objects[o.ID]
		if t == nil {
			created := o.Clone()
			created.Version = 0
			created.Owner = ledger.Owner{}
			e.track(created)
			return ledger.ObjectOf(created), nil
		}
		_, isMoved := moved[o.ID]
		isReceived := t.origin == fromReceivingInput && !t.received && tickets[o.ID]
		if t.state != live || !(isMoved || isReceived) {
			return ledger.Value{}, violation("object %v returned without being moved into the call", o.ID)
		}
		if isReceived {
			t.received = true
		}
		e.update(t, o, false)
		accounted[o.ID] = true
		return ledger.ObjectOf(t.current), nil

	case ledger.VectorValue:
		res := v
		res.Elements = make([]ledger.Value, len(v.Elements))
		for i, element := range v.Elements {
			adopted, failure := e.adopt(element, moved, tickets, accounted)
			if failure != nil {
				return ledger.Value{}, failure
			}
			res.Elements[i] = adopted
		}
		return res, nil
	}
	return v.Clone(), nil
}

// update copies the state reported by the VM into the tracked object.
func (e *execution) update(t *trackedObject, o *ledger.Object, withOwner bool) {
	if withOwner {
		owner := o.Owner
		if owner.IsShared() {
			if t.current.Owner.IsShared() {
				owner.InitialSharedVersion = t.current.Owner.InitialSharedVersion
			} else {
				owner.InitialSharedVersion = e.lamport
			}
		}
		t.current.Owner = owner
	}
	t.current.Contents = o.Clone().Contents
}

func sameOwner(a, b ledger.Owner) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ledger.AddressOwner:
		return a.Address == b.Address
	case ledger.ObjectOwner:
		return a.Parent == b.Parent
	}
	return true
}
