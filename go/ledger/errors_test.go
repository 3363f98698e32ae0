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
	"errors"
	"testing"
)

func TestExecutionError_DebugRendering(t *testing.T) {
	tests := map[string]struct {
		err   *ExecutionError
		debug string
		at    string
	}{
		"no fields": {
			err:   NewError(SharedObjectOperationNotAllowed),
			debug: "SharedObjectOperationNotAllowed",
			at:    "None",
		},
		"with fields": {
			err:   NewError(ArgumentWithoutValue, "arg_idx", 0).AtCommand(2),
			debug: "ArgumentWithoutValue { arg_idx: 0 }",
			at:    "Some(2)",
		},
		"multiple fields": {
			err:   NewError(UnusedValueWithoutDrop, "result_idx", 1, "secondary_idx", 0),
			debug: "UnusedValueWithoutDrop { result_idx: 1, secondary_idx: 0 }",
			at:    "None",
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			if want, got := test.debug, test.err.Debug(); want != got {
				t.Errorf("unexpected debug form, wanted %v, got %v", want, got)
			}
			if want, got := test.at, test.err.CommandString(); want != got {
				t.Errorf("unexpected command, wanted %v, got %v", want, got)
			}
			if want, got := test.debug+" at command "+test.at, test.err.Error(); want != got {
				t.Errorf("unexpected error message, wanted %v, got %v", want, got)
			}
		})
	}
}

func TestExecutionError_FieldLookup(t *testing.T) {
	err := NewError(TypeError, "arg_idx", 3)
	if value, found := err.Field("arg_idx"); !found || value != "3" {
		t.Errorf("unexpected field value, got %q, %t", value, found)
	}
	if _, found := err.Field("missing"); found {
		t.Errorf("unexpected field found")
	}
}

func TestExecutionError_CanBeMatchedAsError(t *testing.T) {
	var target *ExecutionError
	wrapped := errors.Join(errors.New("context"), NewError(InsufficientGas))
	if !errors.As(wrapped, &target) || target.Kind != InsufficientGas {
		t.Errorf("failed to match execution error, got %v", target)
	}
}

func TestExecutionError_SummaryMentionsArgumentIndex(t *testing.T) {
	err := NewError(ArgumentWithoutValue, "arg_idx", 4).AtCommand(1)
	want := "Invalid command argument at 4. Argument value without a value, it was already moved or never bound"
	if got := err.Summary(); want != got {
		t.Errorf("unexpected summary, wanted %v, got %v", want, got)
	}
}

func TestNewError_PanicsOnOddDetails(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected a panic")
		}
	}()
	NewError(TypeError, "arg_idx")
}

func TestVMError_ConversionKeepsKindAndFields(t *testing.T) {
	vmErr := &VMError{Kind: "MoveAbort", Fields: []ErrorField{{"code", "7"}}}
	err := vmErr.ToExecutionError(3)
	if want, got := "MoveAbort { code: 7 } at command Some(3)", err.Error(); want != got {
		t.Errorf("unexpected error, wanted %v, got %v", want, got)
	}
	err.Fields[0].Value = "8"
	if vmErr.Fields[0].Value != "7" {
		t.Errorf("conversion must not share fields")
	}
}
