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
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/rlp"
	"golang.org/x/crypto/blake2b"
)

// FieldKind is the scalar kind of an object field.
type FieldKind uint8

const (
	FieldU64 FieldKind = iota
	FieldBool
	FieldAddress
	FieldID
	FieldBytes
	FieldString
)

// FieldValue holds the canonical encoding of a field. Scalars have a fixed
// width, so the encoded size of an object does not depend on their values.
type FieldValue struct {
	Kind FieldKind
	Data []byte
}

func U64Field(v uint64) FieldValue {
	return FieldValue{Kind: FieldU64, Data: EncodeU64(v)}
}

func BoolField(v bool) FieldValue {
	if v {
		return FieldValue{Kind: FieldBool, Data: []byte{1}}
	}
	return FieldValue{Kind: FieldBool, Data: []byte{0}}
}

func AddressField(a Address) FieldValue {
	return FieldValue{Kind: FieldAddress, Data: bytes.Clone(a[:])}
}

func IDField(id ObjectID) FieldValue {
	return FieldValue{Kind: FieldID, Data: bytes.Clone(id[:])}
}

func BytesField(b []byte) FieldValue {
	return FieldValue{Kind: FieldBytes, Data: bytes.Clone(b)}
}

func StringField(s string) FieldValue {
	return FieldValue{Kind: FieldString, Data: []byte(s)}
}

func (v FieldValue) U64() (uint64, bool) {
	if v.Kind != FieldU64 {
		return 0, false
	}
	return DecodeU64(v.Data)
}

func (v FieldValue) ID() (ObjectID, bool) {
	var id ObjectID
	if v.Kind != FieldID || len(v.Data) != len(id) {
		return id, false
	}
	copy(id[:], v.Data)
	return id, true
}

func (v FieldValue) String() string {
	switch v.Kind {
	case FieldU64:
		if len(v.Data) == 8 {
			return strconv.FormatUint(binary.LittleEndian.Uint64(v.Data), 10)
		}
	case FieldBool:
		if len(v.Data) == 1 {
			return strconv.FormatBool(v.Data[0] != 0)
		}
	case FieldAddress, FieldID, FieldBytes:
		return fmt.Sprintf("0x%x", v.Data)
	case FieldString:
		return strconv.Quote(string(v.Data))
	}
	return fmt.Sprintf("<invalid %d: 0x%x>", v.Kind, v.Data)
}

// Field is a named entry of an object's contents.
type Field struct {
	Name  string
	Value FieldValue
}

// Object is the unit of state of the ledger.
type Object struct {
	ID       ObjectID
	Version  Version
	Owner    Owner
	Type     TypeTag
	Contents []Field

	// PreviousTransaction is the digest of the transaction that wrote this version.
	PreviousTransaction Digest
	// StorageRebate is the storage fee charged when this version was written.
	StorageRebate uint64
}

// Clone produces a deep copy of the object.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	res := *o
	res.Contents = make([]Field, len(o.Contents))
	for i, f := range o.Contents {
		res.Contents[i] = Field{Name: f.Name, Value: FieldValue{Kind: f.Value.Kind, Data: bytes.Clone(f.Value.Data)}}
	}
	return &res
}

// Field returns the value of the named field.
func (o *Object) Field(name string) (FieldValue, bool) {
	for _, f := range o.Contents {
		if f.Name == name {
			return f.Value, true
		}
	}
	return FieldValue{}, false
}

// SetField updates the named field or appends it if missing.
func (o *Object) SetField(name string, value FieldValue) {
	for i := range o.Contents {
		if o.Contents[i].Name == name {
			o.Contents[i].Value = value
			return
		}
	}
	o.Contents = append(o.Contents, Field{Name: name, Value: value})
}

// OwnerClass returns the ownership class of the object.
func (o *Object) OwnerClass() OwnerKind {
	return o.Owner.Kind
}

// Ref returns the reference describing the current state of the object.
func (o *Object) Ref() ObjectRef {
	return ObjectRef{ID: o.ID, Version: o.Version, Digest: o.Digest()}
}

type digestInput struct {
	ID       ObjectID
	Version  Version
	Owner    Owner
	Type     TypeTag
	Contents []Field
}

// Digest hashes (id, version, owner, contents).
func (o *Object) Digest() Digest {
	data, err := rlp.EncodeToBytes(digestInput{o.ID, o.Version, o.Owner, o.Type, o.Contents})
	if err != nil {
		panic(fmt.Sprintf("failed to encode object %v: %v", o.ID, err))
	}
	return blake2b.Sum256(data)
}

type contentsEncoding struct {
	Type     TypeTag
	Contents []Field
}

// ContentSize is the number of bytes occupied by the type and contents of
// the object plus its id.
func (o *Object) ContentSize() uint64 {
	data, err := rlp.EncodeToBytes(contentsEncoding{o.Type, o.Contents})
	if err != nil {
		panic(fmt.Sprintf("failed to encode object %v: %v", o.ID, err))
	}
	return uint64(len(data) + len(o.ID))
}

// Encode produces the persistent form of the object.
func (o *Object) Encode() ([]byte, error) {
	return rlp.EncodeToBytes(o)
}

// DecodeObject is the inverse of Encode.
func DecodeObject(data []byte) (*Object, error) {
	res := &Object{}
	if err := rlp.DecodeBytes(data, res); err != nil {
		return nil, fmt.Errorf("invalid object encoding: %w", err)
	}
	return res, nil
}

// NewCoin creates a coin object. The id field mirrors the object id.
func NewCoin(id ObjectID, coinType TypeTag, balance uint64, owner Owner) *Object {
	return &Object{
		ID:    id,
		Owner: owner,
		Type:  coinType,
		Contents: []Field{
			{Name: "id", Value: IDField(id)},
			{Name: "balance", Value: U64Field(balance)},
		},
	}
}

// CoinBalance returns the balance of a coin object.
func (o *Object) CoinBalance() (uint64, bool) {
	if !o.Type.IsCoin() {
		return 0, false
	}
	value, found := o.Field("balance")
	if !found {
		return 0, false
	}
	return value.U64()
}

// SetCoinBalance updates the balance of a coin object.
func (o *Object) SetCoinBalance(balance uint64) {
	o.SetField("balance", U64Field(balance))
}

// ObjectRef is a caller's claim about the current state of an object.
type ObjectRef struct {
	ID      ObjectID
	Version Version
	Digest  Digest
}

func (r ObjectRef) String() string {
	return fmt.Sprintf("(%v, %d, %v)", r.ID, r.Version, r.Digest)
}
