// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package native provides a VM collaborator implementing a small set of
// framework functions natively in Go. It does not execute bytecode; its
// purpose is to drive the transaction engine in tests and tools.
package native

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Fantom-foundation/Tessera/go/ledger"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "vm/native")

// Registers the native VM as a possible VM implementation.
func init() {
	err := ledger.RegisterVMFactory("native", func(config any) (ledger.VM, error) {
		if config == nil {
			return New(Config{})
		}
		c, ok := config.(Config)
		if !ok {
			return nil, fmt.Errorf("invalid configuration for native VM: %T", config)
		}
		return New(c)
	})
	if err != nil {
		panic(err)
	}
}

// Failure kinds reported by this VM in addition to the kinds of the ledger.
const (
	MoveAbort                ledger.ErrorKind = "MoveAbort"
	FunctionNotFound         ledger.ErrorKind = "FunctionNotFound"
	TypeArityMismatch        ledger.ErrorKind = "TypeArityMismatch"
	ConstraintNotSatisfied   ledger.ErrorKind = "ConstraintNotSatisfied"
	PackageVerificationError ledger.ErrorKind = "PackageVerificationError"
)

// Abort codes of the framework functions.
const (
	EObjectNotOwnedByParent uint64 = iota + 1
	EReceivedTypeMismatch
	ECounterOverflow
	EWrongPackage
	EWrongUpgradeCap
)

type Config struct {
	// SignatureCacheSize is the number of instantiated function signatures
	// retained. If set to 0, a default size is used. If negative, no cache
	// is used.
	SignatureCacheSize int
}

const defaultSignatureCacheSize = 1 << 10

// VM is safe for concurrent use.
type VM struct {
	signatures *lru.Cache[string, ledger.FunctionSignature]
}

func New(config Config) (*VM, error) {
	size := config.SignatureCacheSize
	if size == 0 {
		size = defaultSignatureCacheSize
	}
	var cache *lru.Cache[string, ledger.FunctionSignature]
	if size > 0 {
		var err error
		cache, err = lru.New[string, ledger.FunctionSignature](size)
		if err != nil {
			return nil, fmt.Errorf("failed to create signature cache: %w", err)
		}
	}
	return &VM{signatures: cache}, nil
}

func (v *VM) Signature(target ledger.CallTarget, typeArgs []ledger.TypeTag) (ledger.FunctionSignature, *ledger.VMError, error) {
	key := signatureKey(target, typeArgs)
	if v.signatures != nil {
		if res, found := v.signatures.Get(key); found {
			return res, nil, nil
		}
	}
	f, failure := lookup(target, typeArgs)
	if failure != nil {
		return ledger.FunctionSignature{}, failure, nil
	}
	res := f.signature(typeArgs)
	if v.signatures != nil {
		v.signatures.Add(key, res)
	}
	return res, nil, nil
}

func (v *VM) Invoke(params ledger.InvokeParameters) (ledger.InvokeResult, error) {
	f, failure := lookup(params.Target, params.TypeArgs)
	if failure != nil {
		return ledger.InvokeResult{Failure: failure}, nil
	}
	signature := f.signature(params.TypeArgs)
	if want, got := len(signature.Parameters), len(params.Arguments); want != got {
		return ledger.InvokeResult{}, fmt.Errorf("%v expects %d arguments, got %d", params.Target, want, got)
	}
	for i, p := range signature.Parameters {
		if isObjectType(p.Type) && params.Arguments[i].Object == nil {
			return ledger.InvokeResult{}, fmt.Errorf("argument %d of %v is not an object", i, params.Target)
		}
	}
	res, err := f.run(&call{
		ctx:      params.Context,
		typeArgs: params.TypeArgs,
		args:     params.Arguments,
	})
	if err != nil {
		return ledger.InvokeResult{}, fmt.Errorf("failed to run %v: %w", params.Target, err)
	}
	res.ComputationUnits = f.units
	log.WithFields(logrus.Fields{
		"target":  params.Target,
		"units":   f.units,
		"failure": res.Failure,
	}).Trace("invoked function")
	return res, nil
}

func lookup(target ledger.CallTarget, typeArgs []ledger.TypeTag) (*function, *ledger.VMError) {
	if target.Package != ledger.FrameworkPackage {
		return nil, vmError(FunctionNotFound, "function", target)
	}
	f, found := framework[target.Module+"::"+target.Function]
	if !found {
		return nil, vmError(FunctionNotFound, "function", target)
	}
	if len(typeArgs) != f.typeParams {
		return nil, vmError(TypeArityMismatch, "expected", f.typeParams, "got", len(typeArgs))
	}
	// type parameters stand for objects
	for i, t := range typeArgs {
		if t == "" || t.IsPrimitive() {
			return nil, vmError(ConstraintNotSatisfied, "type_arg_idx", i)
		}
	}
	return &f, nil
}

func signatureKey(target ledger.CallTarget, typeArgs []ledger.TypeTag) string {
	var b strings.Builder
	b.WriteString(target.String())
	for _, t := range typeArgs {
		b.WriteString("|")
		b.WriteString(string(t))
	}
	return b.String()
}

func isObjectType(t ledger.TypeTag) bool {
	_, isVector := t.VectorElement()
	return !t.IsPrimitive() && !isVector && !strings.HasPrefix(string(t), receivingPrefix)
}

func vmError(kind ledger.ErrorKind, details ...any) *ledger.VMError {
	err := ledger.NewError(kind, details...)
	return &ledger.VMError{Kind: err.Kind, Fields: err.Fields}
}

func abort(code uint64) ledger.InvokeResult {
	return ledger.InvokeResult{Failure: vmError(MoveAbort, "code", strconv.FormatUint(code, 10))}
}
