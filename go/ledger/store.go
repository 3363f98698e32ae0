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

import "errors"

//go:generate mockgen -source store.go -destination store_mock.go -package ledger

// ObjectReader provides read access to the object store. Both getters
// return ErrNotFound if there is no such object.
type ObjectReader interface {
	// GetObject returns the live version of an object.
	GetObject(id ObjectID) (*Object, error)
	// GetObjectByVersion returns a specific, possibly superseded, version.
	GetObjectByVersion(id ObjectID, version Version) (*Object, error)
}

// ObjectStore is the persistent set of objects. It is written to only by
// the commit step following the execution of a transaction.
type ObjectStore interface {
	ObjectReader
	// PutObject stores a new live version of the object.
	PutObject(*Object) error
	// DeleteObject removes the live version of the object.
	DeleteObject(id ObjectID) error
}

// BatchWriter is implemented by stores able to apply all changes of a
// transaction atomically.
type BatchWriter interface {
	WriteBatch(written []*Object, deleted []ObjectID) error
}

// Resolve checks a caller supplied reference against the live object.
func Resolve(store ObjectReader, ref ObjectRef) (*Object, *ExecutionError, error) {
	object, err := store.GetObject(ref.ID)
	if errors.Is(err, ErrNotFound) {
		return nil, NewError(ObjectNotFound, "object_id", ref.ID, "version", ref.Version), nil
	}
	if err != nil {
		return nil, nil, err
	}
	if object.Version != ref.Version {
		return nil, NewError(VersionMismatch, "object_id", ref.ID, "expected", ref.Version, "current", object.Version), nil
	}
	if object.Digest() != ref.Digest {
		return nil, NewError(DigestMismatch, "object_id", ref.ID, "expected", ref.Digest, "current", object.Digest()), nil
	}
	return object, nil, nil
}
