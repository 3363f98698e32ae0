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

// MockObjectReader is a mock of ObjectReader interface.
type MockObjectReader struct {
	ctrl     *gomock.Controller
	recorder *MockObjectReaderMockRecorder
}

// MockObjectReaderMockRecorder is the mock recorder for MockObjectReader.
type MockObjectReaderMockRecorder struct {
	mock *MockObjectReader
}

// NewMockObjectReader creates a new mock instance.
func NewMockObjectReader(ctrl *gomock.Controller) *MockObjectReader {
	mock := &MockObjectReader{ctrl: ctrl}
	mock.recorder = &MockObjectReaderMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockObjectReader) EXPECT() *MockObjectReaderMockRecorder {
	return m.recorder
}

// GetObject mocks base method.
func (m *MockObjectReader) GetObject(arg0 ObjectID) (*Object, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetObject", arg0)
	ret0, _ := ret[0].(*Object)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetObject indicates an expected call of GetObject.
func (mr *MockObjectReaderMockRecorder) GetObject(arg0 any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetObject", reflect.TypeOf((*MockObjectReader)(nil).GetObject), arg0)
}

// GetObjectByVersion mocks base method.
func (m *MockObjectReader) GetObjectByVersion(arg0 ObjectID, arg1 Version) (*Object, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetObjectByVersion", arg0, arg1)
	ret0, _ := ret[0].(*Object)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetObjectByVersion indicates an expected call of GetObjectByVersion.
func (mr *MockObjectReaderMockRecorder) GetObjectByVersion(arg0, arg1 any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetObjectByVersion", reflect.TypeOf((*MockObjectReader)(nil).GetObjectByVersion), arg0, arg1)
}

// MockObjectStore is a mock of ObjectStore interface.
type MockObjectStore struct {
	ctrl     *gomock.Controller
	recorder *MockObjectStoreMockRecorder
}

// MockObjectStoreMockRecorder is the mock recorder for MockObjectStore.
type MockObjectStoreMockRecorder struct {
	mock *MockObjectStore
}

// NewMockObjectStore creates a new mock instance.
func NewMockObjectStore(ctrl *gomock.Controller) *MockObjectStore {
	mock := &MockObjectStore{ctrl: ctrl}
	mock.recorder = &MockObjectStoreMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockObjectStore) EXPECT() *MockObjectStoreMockRecorder {
	return m.recorder
}

// DeleteObject mocks base method.
func (m *MockObjectStore) DeleteObject(arg0 ObjectID) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DeleteObject", arg0)
	ret0, _ := ret[0].(error)
	return ret0
}

// DeleteObject indicates an expected call of DeleteObject.
func (mr *MockObjectStoreMockRecorder) DeleteObject(arg0 any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DeleteObject", reflect.TypeOf((*MockObjectStore)(nil).DeleteObject), arg0)
}

// GetObject mocks base method.
func (m *MockObjectStore) GetObject(arg0 ObjectID) (*Object, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetObject", arg0)
	ret0, _ := ret[0].(*Object)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetObject indicates an expected call of GetObject.
func (mr *MockObjectStoreMockRecorder) GetObject(arg0 any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetObject", reflect.TypeOf((*MockObjectStore)(nil).GetObject), arg0)
}

// GetObjectByVersion mocks base method.
func (m *MockObjectStore) GetObjectByVersion(arg0 ObjectID, arg1 Version) (*Object, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetObjectByVersion", arg0, arg1)
	ret0, _ := ret[0].(*Object)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetObjectByVersion indicates an expected call of GetObjectByVersion.
func (mr *MockObjectStoreMockRecorder) GetObjectByVersion(arg0, arg1 any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetObjectByVersion", reflect.TypeOf((*MockObjectStore)(nil).GetObjectByVersion), arg0, arg1)
}

// PutObject mocks base method.
func (m *MockObjectStore) PutObject(arg0 *Object) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "PutObject", arg0)
	ret0, _ := ret[0].(error)
	return ret0
}

// PutObject indicates an expected call of PutObject.
func (mr *MockObjectStoreMockRecorder) PutObject(arg0 any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "PutObject", reflect.TypeOf((*MockObjectStore)(nil).PutObject), arg0)
}

// MockBatchWriter is a mock of BatchWriter interface.
type MockBatchWriter struct {
	ctrl     *gomock.Controller
	recorder *MockBatchWriterMockRecorder
}

// MockBatchWriterMockRecorder is the mock recorder for MockBatchWriter.
type MockBatchWriterMockRecorder struct {
	mock *MockBatchWriter
}

// NewMockBatchWriter creates a new mock instance.
func NewMockBatchWriter(ctrl *gomock.Controller) *MockBatchWriter {
	mock := &MockBatchWriter{ctrl: ctrl}
	mock.recorder = &MockBatchWriterMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockBatchWriter) EXPECT() *MockBatchWriterMockRecorder {
	return m.recorder
}

// WriteBatch mocks base method.
func (m *MockBatchWriter) WriteBatch(arg0 []*Object, arg1 []ObjectID) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "WriteBatch", arg0, arg1)
	ret0, _ := ret[0].(error)
	return ret0
}

// WriteBatch indicates an expected call of WriteBatch.
func (mr *MockBatchWriterMockRecorder) WriteBatch(arg0, arg1 any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "WriteBatch", reflect.TypeOf((*MockBatchWriter)(nil).WriteBatch), arg0, arg1)
}
