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
	"fmt"
	"strings"
)

// ValueKind tags what a value slot holds.
type ValueKind uint8

const (
	PrimitiveValue ValueKind = iota
	ObjectValue
	VectorValue
	ReceivingValue
)

func (k ValueKind) String() string {
	switch k {
	case PrimitiveValue:
		return "primitive"
	case ObjectValue:
		return "object"
	case VectorValue:
		return "vector"
	case ReceivingValue:
		return "receiving"
	}
	return fmt.Sprintf("ValueKind(%d)", k)
}

// Value is a runtime value bound to a slot or exchanged with the VM.
// Primitive values created from pure inputs carry no Type until they are
// used at a typed position.
type Value struct {
	Kind      ValueKind
	Type      TypeTag
	Bytes     []byte    // < for primitives
	Object    *Object   // < for objects
	Elements  []Value   // < for vectors
	Receiving ObjectRef // < for receiving tickets
}

func Primitive(t TypeTag, data []byte) Value {
	return Value{Kind: PrimitiveValue, Type: t, Bytes: data}
}

func U64Value(v uint64) Value {
	return Primitive(TypeU64, EncodeU64(v))
}

func AddressValue(a Address) Value {
	return Primitive(TypeAddress, bytes.Clone(a[:]))
}

func IDValue(id ObjectID) Value {
	return Primitive(TypeID, bytes.Clone(id[:]))
}

func ObjectOf(o *Object) Value {
	return Value{Kind: ObjectValue, Type: o.Type, Object: o}
}

func Vector(elementType TypeTag, elements []Value) Value {
	return Value{Kind: VectorValue, Type: VectorOf(elementType), Elements: elements}
}

func ReceivingOf(ref ObjectRef) Value {
	return Value{Kind: ReceivingValue, Receiving: ref}
}

// IsCopyable reports whether the value may be used by value without being
// consumed. Only plain data is copyable.
func (v Value) IsCopyable() bool {
	switch v.Kind {
	case PrimitiveValue:
		return true
	case VectorValue:
		for _, e := range v.Elements {
			if !e.IsCopyable() {
				return false
			}
		}
		elem, _ := v.Type.VectorElement()
		return len(v.Elements) > 0 || elem.IsPrimitive()
	}
	return false
}

// Objects lists all objects contained in the value.
func (v Value) Objects() []*Object {
	switch v.Kind {
	case ObjectValue:
		return []*Object{v.Object}
	case VectorValue:
		var res []*Object
		for _, e := range v.Elements {
			res = append(res, e.Objects()...)
		}
		return res
	}
	return nil
}

// Clone produces a deep copy of the value, including contained objects.
func (v Value) Clone() Value {
	res := v
	res.Bytes = bytes.Clone(v.Bytes)
	res.Object = v.Object.Clone()
	if v.Elements != nil {
		res.Elements = make([]Value, len(v.Elements))
		for i, e := range v.Elements {
			res.Elements[i] = e.Clone()
		}
	}
	return res
}

// AsU64 interprets a primitive value as u64.
func (v Value) AsU64() (uint64, bool) {
	if v.Kind != PrimitiveValue || (v.Type != "" && v.Type != TypeU64) {
		return 0, false
	}
	return DecodeU64(v.Bytes)
}

// AsAddress interprets a primitive value as an address.
func (v Value) AsAddress() (Address, bool) {
	var a Address
	if v.Kind != PrimitiveValue || (v.Type != "" && v.Type != TypeAddress && v.Type != TypeID) {
		return a, false
	}
	if len(v.Bytes) != len(a) {
		return a, false
	}
	copy(a[:], v.Bytes)
	return a, true
}

// CheckType reports whether the value can be used where a value of the
// given type is expected. Untyped pure bytes are accepted if they are a
// valid encoding of the type.
func (v Value) CheckType(t TypeTag) bool {
	switch v.Kind {
	case PrimitiveValue:
		if v.Type != "" {
			return v.Type == t
		}
		return validPureEncoding(v.Bytes, t)
	case VectorValue:
		if v.Type == t {
			return true
		}
		elem, ok := t.VectorElement()
		if !ok {
			return false
		}
		for _, e := range v.Elements {
			if !e.CheckType(elem) {
				return false
			}
		}
		own, _ := v.Type.VectorElement()
		return own == "" || own == elem
	case ObjectValue:
		return v.Type == t
	case ReceivingValue:
		return strings.HasPrefix(string(t), "0x2::transfer::Receiving<")
	}
	return false
}

func validPureEncoding(data []byte, t TypeTag) bool {
	switch t {
	case TypeU64:
		return len(data) == 8
	case TypeBool:
		return len(data) == 1 && data[0] <= 1
	case TypeAddress, TypeID:
		return len(data) == 32
	case TypeBytes, TypeString:
		return true
	}
	return false
}

func (v Value) String() string {
	switch v.Kind {
	case PrimitiveValue:
		if n, ok := v.AsU64(); ok && v.Type == TypeU64 {
			return fmt.Sprintf("%d", n)
		}
		return fmt.Sprintf("0x%x", v.Bytes)
	case ObjectValue:
		return fmt.Sprintf("%v@%v", v.Type, v.Object.ID)
	case VectorValue:
		parts := make([]string, 0, len(v.Elements))
		for _, e := range v.Elements {
			parts = append(parts, e.String())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case ReceivingValue:
		return fmt.Sprintf("Receiving%v", v.Receiving)
	}
	return "<invalid>"
}
