// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package ledger

import "fmt"

//go:generate mockgen -source vm.go -destination vm_mock.go -package ledger

// VM is the collaborator executing user-defined code. Implementations are
// opaque to the engine: they receive resolved arguments and report the
// values and object changes they produced.
//
// The resulting error is nil whenever the request was correctly processed,
// even if the execution itself failed. Typed execution failures are
// reported through the Failure field of the result and end up unchanged as
// the failure of the transaction. A non-nil error signals a problem within
// the VM making it impossible to process the request.
type VM interface {
	// Signature returns the parameters and return types of the target
	// function instantiated with the given type arguments.
	Signature(target CallTarget, typeArgs []TypeTag) (FunctionSignature, *VMError, error)
	// Invoke runs the target function.
	Invoke(InvokeParameters) (InvokeResult, error)
	// Publish creates a new package.
	Publish(PublishParameters) (PublishResult, error)
	// Upgrade creates a new version of an existing package.
	Upgrade(UpgradeParameters) (PublishResult, error)
}

// TxContext provides per-transaction information to the VM.
type TxContext interface {
	Sender() Address
	Digest() Digest
	Epoch() uint64
	// FreshID derives a new object id, unique within the ledger.
	FreshID() ObjectID
}

// ParameterKind defines how an argument is handed to a function.
type ParameterKind uint8

const (
	ByValue ParameterKind = iota
	ByImmutableRef
	ByMutableRef
)

func (k ParameterKind) String() string {
	switch k {
	case ByValue:
		return "value"
	case ByImmutableRef:
		return "&"
	case ByMutableRef:
		return "&mut"
	}
	return fmt.Sprintf("ParameterKind(%d)", k)
}

type Parameter struct {
	Kind ParameterKind
	Type TypeTag
}

type FunctionSignature struct {
	Parameters []Parameter
	Returns    []TypeTag
}

type InvokeParameters struct {
	Context   TxContext
	Target    CallTarget
	TypeArgs  []TypeTag
	Arguments []Value // one entry per parameter, objects are copies
}

// InvokeResult summarizes the effects of a function call.
type InvokeResult struct {
	Returns          []Value    // values returned by the function
	Written          []*Object  // objects with new contents or owners, including new placed objects
	Deleted          []ObjectID // objects destroyed by the call
	Wrapped          []ObjectID // objects stored inside other objects
	ComputationUnits uint64     // units consumed by the call
	Failure          *VMError   // set if the call aborted
}

type PublishParameters struct {
	Context      TxContext
	Modules      [][]byte
	Dependencies []ObjectID
}

type UpgradeParameters struct {
	Context      TxContext
	Modules      [][]byte
	Dependencies []ObjectID
	Package      ObjectID
	Ticket       Value
}

type PublishResult struct {
	Package          *Object   // the new package, created immutable
	Returns          []Value   // values returned to the transaction
	Written          []*Object // other objects created and placed
	ComputationUnits uint64
	Failure          *VMError
}

// VMError is a typed failure reported by the VM.
type VMError struct {
	Kind   ErrorKind
	Fields []ErrorField
}

func (e *VMError) Error() string {
	return (&ExecutionError{Kind: e.Kind, Fields: e.Fields}).Debug()
}

// ToExecutionError converts the failure into a transaction failure
// attributed to the given command.
func (e *VMError) ToExecutionError(command int) *ExecutionError {
	fields := make([]ErrorField, len(e.Fields))
	copy(fields, e.Fields)
	res := &ExecutionError{Kind: e.Kind, Fields: fields}
	return res.AtCommand(command)
}
