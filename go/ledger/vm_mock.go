// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package ledger is a generated GoMock package.
package ledger

import (
	reflect "reflect"

	gomock "go.uber.org/mock/gomock"
)

// MockVM is a mock of VM interface.
type MockVM struct {
	ctrl     *gomock.Controller
	recorder *MockVMMockRecorder
}

// MockVMMockRecorder is the mock recorder for MockVM.
type MockVMMockRecorder struct {
	mock *MockVM
}

// NewMockVM creates a new mock instance.
func NewMockVM(ctrl *gomock.Controller) *MockVM {
	mock := &MockVM{ctrl: ctrl}
	mock.recorder = &MockVMMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockVM) EXPECT() *MockVMMockRecorder {
	return m.recorder
}

// Invoke mocks base method.
func (m *MockVM) Invoke(arg0 InvokeParameters) (InvokeResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Invoke", arg0)
	ret0, _ := ret[0].(InvokeResult)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Invoke indicates an expected call of Invoke.
func (mr *MockVMMockRecorder) Invoke(arg0 any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Invoke", reflect.TypeOf((*MockVM)(nil).Invoke), arg0)
}

// Publish mocks base method.
func (m *MockVM) Publish(arg0 PublishParameters) (PublishResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Publish", arg0)
	ret0, _ := ret[0].(PublishResult)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Publish indicates an expected call of Publish.
func (mr *MockVMMockRecorder) Publish(arg0 any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Publish", reflect.TypeOf((*MockVM)(nil).Publish), arg0)
}

// Signature mocks base method.
func (m *MockVM) Signature(arg0 CallTarget, arg1 []TypeTag) (FunctionSignature, *VMError, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Signature", arg0, arg1)
	ret0, _ := ret[0].(FunctionSignature)
	ret1, _ := ret[1].(*VMError)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

// Signature indicates an expected call of Signature.
func (mr *MockVMMockRecorder) Signature(arg0, arg1 any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Signature", reflect.TypeOf((*MockVM)(nil).Signature), arg0, arg1)
}

// Upgrade mocks base method.
func (m *MockVM) Upgrade(arg0 UpgradeParameters) (PublishResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Upgrade", arg0)
	ret0, _ := ret[0].(PublishResult)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Upgrade indicates an expected call of Upgrade.
func (mr *MockVMMockRecorder) Upgrade(arg0 any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Upgrade", reflect.TypeOf((*MockVM)(nil).Upgrade), arg0)
}

// MockTxContext is a mock of TxContext interface.
type MockTxContext struct {
	ctrl     *gomock.Controller
	recorder *MockTxContextMockRecorder
}

// MockTxContextMockRecorder is the mock recorder for MockTxContext.
type MockTxContextMockRecorder struct {
	mock *MockTxContext
}

// NewMockTxContext creates a new mock instance.
func NewMockTxContext(ctrl *gomock.Controller) *MockTxContext {
	mock := &MockTxContext{ctrl: ctrl}
	mock.recorder = &MockTxContextMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockTxContext) EXPECT() *MockTxContextMockRecorder {
	return m.recorder
}

// Digest mocks base method.
func (m *MockTxContext) Digest() Digest {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Digest")
	ret0, _ := ret[0].(Digest)
	return ret0
}

// Digest indicates an expected call of Digest.
func (mr *MockTxContextMockRecorder) Digest() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Digest", reflect.TypeOf((*MockTxContext)(nil).Digest))
}

// Epoch mocks base method.
func (m *MockTxContext) Epoch() uint64 {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Epoch")
	ret0, _ := ret[0].(uint64)
	return ret0
}

// Epoch indicates an expected call of Epoch.
func (mr *MockTxContextMockRecorder) Epoch() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Epoch", reflect.TypeOf((*MockTxContext)(nil).Epoch))
}

// FreshID mocks base method.
func (m *MockTxContext) FreshID() ObjectID {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "FreshID")
	ret0, _ := ret[0].(ObjectID)
	return ret0
}

// FreshID indicates an expected call of FreshID.
func (mr *MockTxContextMockRecorder) FreshID() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "FreshID", reflect.TypeOf((*MockTxContext)(nil).FreshID))
}

// Sender mocks base method.
func (m *MockTxContext) Sender() Address {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Sender")
	ret0, _ := ret[0].(Address)
	return ret0
}

// Sender indicates an expected call of Sender.
func (mr *MockTxContextMockRecorder) Sender() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Sender", reflect.TypeOf((*MockTxContext)(nil).Sender))
}
