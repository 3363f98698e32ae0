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

import (
	"fmt"
	"strconv"
	"strings"
)

// ConstError is an error type that can be used to define immutable
// error constants.
type ConstError string

func (e ConstError) Error() string {
	return string(e)
}

// ErrNotFound is returned by object stores for unknown objects or versions.
const ErrNotFound = ConstError("object not found")

// ErrorKind names the reason a transaction failed. Kinds reported by the VM
// collaborator are passed through unchanged.
type ErrorKind string

const (
	ObjectNotFound                  ErrorKind = "ObjectNotFound"
	VersionMismatch                 ErrorKind = "VersionMismatch"
	DigestMismatch                  ErrorKind = "DigestMismatch"
	ArgumentWithoutValue            ErrorKind = "ArgumentWithoutValue"
	TypeError                       ErrorKind = "TypeError"
	InsufficientBalance             ErrorKind = "InsufficientBalance"
	SharedObjectOperationNotAllowed ErrorKind = "SharedObjectOperationNotAllowed"

	ArityMismatch             ErrorKind = "ArityMismatch"
	EmptyCommandInput         ErrorKind = "EmptyCommandInput"
	InvalidTransferObject     ErrorKind = "InvalidTransferObject"
	IndexOutOfBounds          ErrorKind = "IndexOutOfBounds"
	SecondaryIndexOutOfBounds ErrorKind = "SecondaryIndexOutOfBounds"
	InvalidResultArity        ErrorKind = "InvalidResultArity"
	InvalidGasCoinUsage       ErrorKind = "InvalidGasCoinUsage"
	InvalidObjectByValue      ErrorKind = "InvalidObjectByValue"
	InvalidObjectByMutRef     ErrorKind = "InvalidObjectByMutRef"
	InvalidValueUsage         ErrorKind = "InvalidValueUsage"
	ArithmeticError           ErrorKind = "ArithmeticError"
	UnusedValueWithoutDrop    ErrorKind = "UnusedValueWithoutDrop"
	VMInvariantViolation      ErrorKind = "VMInvariantViolation"

	InvalidTransaction     ErrorKind = "InvalidTransaction"
	DuplicateObjectInput   ErrorKind = "DuplicateObjectInput"
	InvalidObjectOwnership ErrorKind = "InvalidObjectOwnership"
	NotSharedObject        ErrorKind = "NotSharedObject"
	SharedVersionMismatch  ErrorKind = "SharedVersionMismatch"
	InvalidReceivingObject ErrorKind = "InvalidReceivingObject"
	InvalidGasObject       ErrorKind = "InvalidGasObject"
	GasPriceTooLow         ErrorKind = "GasPriceTooLow"
	GasBudgetOutOfRange    ErrorKind = "GasBudgetOutOfRange"
	GasBalanceTooLow       ErrorKind = "GasBalanceTooLow"
	InsufficientGas        ErrorKind = "InsufficientGas"
)

// ErrorField is a named detail of an ExecutionError.
type ErrorField struct {
	Name  string
	Value string
}

// ExecutionError is the terminal failure of a transaction. Command is nil for
// failures detected before any command ran and for provenance violations.
type ExecutionError struct {
	Kind    ErrorKind
	Fields  []ErrorField
	Command *int
}

// NewError creates an error of the given kind. The optional details are
// name/value pairs.
func NewError(kind ErrorKind, details ...any) *ExecutionError {
	if len(details)%2 != 0 {
		panic("details must be name/value pairs")
	}
	res := &ExecutionError{Kind: kind}
	for i := 0; i < len(details); i += 2 {
		res.Fields = append(res.Fields, ErrorField{
			Name:  fmt.Sprint(details[i]),
			Value: fmt.Sprint(details[i+1]),
		})
	}
	return res
}

// AtCommand attributes the error to the command with the given index.
func (e *ExecutionError) AtCommand(index int) *ExecutionError {
	e.Command = &index
	return e
}

// Field returns the value of the named detail.
func (e *ExecutionError) Field(name string) (string, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

func (e *ExecutionError) Error() string {
	return e.Debug() + " at command " + e.CommandString()
}

// Debug renders the error as Kind { name: value, ... }.
func (e *ExecutionError) Debug() string {
	if len(e.Fields) == 0 {
		return string(e.Kind)
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Name+": "+f.Value)
	}
	return string(e.Kind) + " { " + strings.Join(parts, ", ") + " }"
}

// CommandString renders the command index as Some(n) or None.
func (e *ExecutionError) CommandString() string {
	if e.Command == nil {
		return "None"
	}
	return "Some(" + strconv.Itoa(*e.Command) + ")"
}

// Summary is a human readable description of the failure.
func (e *ExecutionError) Summary() string {
	arg, _ := e.Field("arg_idx")
	switch e.Kind {
	case ObjectNotFound:
		return "Could not find the referenced object"
	case VersionMismatch:
		return "The referenced object version is not the current version"
	case DigestMismatch:
		return "The referenced object digest does not match the current object"
	case ArgumentWithoutValue:
		return fmt.Sprintf("Invalid command argument at %s. Argument value without a value, it was already moved or never bound", arg)
	case TypeError:
		return fmt.Sprintf("Invalid command argument at %s. The type of the value does not match the expected type", arg)
	case IndexOutOfBounds, SecondaryIndexOutOfBounds:
		return fmt.Sprintf("Invalid command argument at %s. Out of bounds access to input or result vector", arg)
	case InvalidResultArity:
		return fmt.Sprintf("Invalid command argument at %s. Result does not produce exactly one value", arg)
	case InvalidGasCoinUsage:
		return fmt.Sprintf("Invalid command argument at %s. Invalid usage of the gas coin", arg)
	case InvalidObjectByValue:
		return fmt.Sprintf("Invalid command argument at %s. Immutable objects cannot be passed by-value", arg)
	case InvalidObjectByMutRef:
		return fmt.Sprintf("Invalid command argument at %s. Immutable objects cannot be passed by mutable reference", arg)
	case InvalidValueUsage:
		return fmt.Sprintf("Invalid command argument at %s. The value cannot be used in this position", arg)
	case ArityMismatch:
		return "Arity mismatch for the called function, the number of arguments does not match the number of parameters"
	case EmptyCommandInput:
		return "The command requires at least one argument"
	case InvalidTransferObject:
		return fmt.Sprintf("Invalid command argument at %s. Only objects can be transferred", arg)
	case InsufficientBalance:
		return "Insufficient coin balance for operation"
	case ArithmeticError:
		return "Arithmetic error, overflow or underflow"
	case SharedObjectOperationNotAllowed:
		return "The shared object operation is not allowed"
	case UnusedValueWithoutDrop:
		return "Unused result without the drop ability"
	case InsufficientGas:
		return "Insufficient gas"
	case InvalidTransaction:
		return "The transaction is malformed"
	case DuplicateObjectInput:
		return "An object is declared more than once as an input"
	case InvalidObjectOwnership:
		return "The sender does not own the referenced object"
	case NotSharedObject:
		return "The object declared as shared input is not shared"
	case SharedVersionMismatch:
		return "The declared initial shared version does not match the object"
	case InvalidReceivingObject:
		return "The object declared as receiving input is not owned by an object"
	case InvalidGasObject:
		return "The gas payment object is not a gas coin owned by the gas owner"
	case GasPriceTooLow:
		return "The gas price is below the reference gas price"
	case GasBudgetOutOfRange:
		return "The gas budget is outside of the permitted range"
	case GasBalanceTooLow:
		return "The balance of the gas coin does not cover the gas budget"
	case VMInvariantViolation:
		return "Invariant violation in the execution engine"
	}
	return string(e.Kind)
}
