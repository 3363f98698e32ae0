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

// OwnerKind classifies who may operate on an object.
type OwnerKind uint8

const (
	// Unowned marks values created by the running transaction that have not
	// been placed yet. It never reaches the object store.
	Unowned OwnerKind = iota
	AddressOwner
	ObjectOwner
	SharedOwner
	Immutable
)

func (k OwnerKind) String() string {
	switch k {
	case Unowned:
		return "Unowned"
	case AddressOwner:
		return "AddressOwned"
	case ObjectOwner:
		return "ObjectOwned"
	case SharedOwner:
		return "Shared"
	case Immutable:
		return "Immutable"
	}
	return fmt.Sprintf("OwnerKind(%d)", k)
}

// Owner is a tagged variant, only the field matching Kind is meaningful.
type Owner struct {
	Kind                 OwnerKind
	Address              Address  // < for AddressOwner
	Parent               ObjectID // < for ObjectOwner
	InitialSharedVersion Version  // < for SharedOwner, fixed once set
}

func AddressOwned(a Address) Owner {
	return Owner{Kind: AddressOwner, Address: a}
}

func ObjectOwned(parent ObjectID) Owner {
	return Owner{Kind: ObjectOwner, Parent: parent}
}

func Shared(initialSharedVersion Version) Owner {
	return Owner{Kind: SharedOwner, InitialSharedVersion: initialSharedVersion}
}

func ImmutableOwner() Owner {
	return Owner{Kind: Immutable}
}

func (o Owner) IsShared() bool {
	return o.Kind == SharedOwner
}

// IsOwnedBy reports whether the owner is the given address.
func (o Owner) IsOwnedBy(a Address) bool {
	return o.Kind == AddressOwner && o.Address == a
}

func (o Owner) String() string {
	switch o.Kind {
	case AddressOwner:
		return fmt.Sprintf("Address(%v)", o.Address)
	case ObjectOwner:
		return fmt.Sprintf("Object(%v)", o.Parent)
	case SharedOwner:
		return fmt.Sprintf("Shared( %d )", o.InitialSharedVersion)
	case Immutable:
		return "Immutable"
	case Unowned:
		return "Unowned"
	}
	return fmt.Sprintf("Owner(%d)", o.Kind)
}
