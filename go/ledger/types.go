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
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ObjectID identifies an object for its entire lifetime.
type ObjectID [32]byte

// Address identifies a single-signer account.
type Address [32]byte

// Digest is a 32-byte content hash.
type Digest [32]byte

// Version is the sequence number of an object. It strictly increases with
// every transaction writing the object and is assigned by the ledger.
type Version uint64

// FrameworkPackage is the id of the package hosting the framework types.
var FrameworkPackage = ObjectID{31: 0x02}

func (id ObjectID) String() string {
	return fmt.Sprintf("0x%x", id[:])
}

// ShortString prints the id without leading zeros, e.g. 0x2.
func (id ObjectID) ShortString() string {
	s := strings.TrimLeft(fmt.Sprintf("%x", id[:]), "0")
	if s == "" {
		s = "0"
	}
	return "0x" + s
}

func (id ObjectID) MarshalText() ([]byte, error) {
	return []byte(hexutil.Encode(id[:])), nil
}

func (id *ObjectID) UnmarshalText(data []byte) error {
	return textToBytes(id[:], data)
}

func (a Address) String() string {
	return fmt.Sprintf("0x%x", a[:])
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(hexutil.Encode(a[:])), nil
}

func (a *Address) UnmarshalText(data []byte) error {
	return textToBytes(a[:], data)
}

func (d Digest) String() string {
	return fmt.Sprintf("0x%x", d[:])
}

func (d Digest) MarshalText() ([]byte, error) {
	return []byte(hexutil.Encode(d[:])), nil
}

func (d *Digest) UnmarshalText(data []byte) error {
	return textToBytes(d[:], data)
}

// HexToObjectID parses a 0x-prefixed hex string. Short forms like 0x2 are
// left-padded with zeros.
func HexToObjectID(s string) (ObjectID, error) {
	var id ObjectID
	if err := parseShortHex(id[:], s); err != nil {
		return ObjectID{}, err
	}
	return id, nil
}

// HexToAddress parses a 0x-prefixed hex string. Short forms are left-padded.
func HexToAddress(s string) (Address, error) {
	var a Address
	if err := parseShortHex(a[:], s); err != nil {
		return Address{}, err
	}
	return a, nil
}

func parseShortHex(trg []byte, s string) error {
	if !strings.HasPrefix(s, "0x") {
		return fmt.Errorf("invalid format, does not start with 0x: %v", s)
	}
	digits := s[2:]
	if len(digits) > 2*len(trg) {
		return fmt.Errorf("invalid format, wanted at most %d bytes, got %q", len(trg), s)
	}
	if len(digits)%2 == 1 {
		digits = "0" + digits
	}
	data, err := hexutil.Decode("0x" + digits)
	if err != nil {
		return err
	}
	copy(trg[len(trg)-len(data):], data)
	return nil
}

func textToBytes(trg []byte, data []byte) error {
	s := string(data)
	if !strings.HasPrefix(s, "0x") {
		return fmt.Errorf("invalid format, does not start with 0x: %v", s)
	}
	decoded, err := hexutil.Decode(s)
	if err != nil {
		return err
	}
	if want, got := len(trg), len(decoded); want != got {
		return fmt.Errorf("invalid format, wanted %d bytes, got %d", want, got)
	}
	copy(trg, decoded)
	return nil
}

// TypeTag names a type, e.g. u64 or 0x2::coin::Coin<0x2::gas::GAS>.
type TypeTag string

const (
	TypeU64     TypeTag = "u64"
	TypeBool    TypeTag = "bool"
	TypeAddress TypeTag = "address"
	TypeID      TypeTag = "0x2::object::ID"
	TypeBytes   TypeTag = "vector<u8>"
	TypeString  TypeTag = "0x1::string::String"

	GasCoinType TypeTag = "0x2::coin::Coin<0x2::gas::GAS>"

	coinTypePrefix = "0x2::coin::Coin<"
)

// CoinType returns the type of a coin holding balances of the given type.
func CoinType(balance TypeTag) TypeTag {
	return TypeTag(coinTypePrefix + string(balance) + ">")
}

// IsCoin reports whether the type is an instantiation of 0x2::coin::Coin.
func (t TypeTag) IsCoin() bool {
	return strings.HasPrefix(string(t), coinTypePrefix) && strings.HasSuffix(string(t), ">")
}

// IsPrimitive reports whether values of this type are plain, copyable data.
func (t TypeTag) IsPrimitive() bool {
	switch t {
	case TypeU64, TypeBool, TypeAddress, TypeID, TypeBytes, TypeString:
		return true
	}
	if elem, ok := t.VectorElement(); ok {
		return elem.IsPrimitive()
	}
	return false
}

// VectorOf returns the type vector<t>.
func VectorOf(t TypeTag) TypeTag {
	return TypeTag("vector<" + string(t) + ">")
}

// VectorElement returns the element type if t is a vector type.
func (t TypeTag) VectorElement() (TypeTag, bool) {
	s := string(t)
	if strings.HasPrefix(s, "vector<") && strings.HasSuffix(s, ">") {
		return TypeTag(s[len("vector<") : len(s)-1]), true
	}
	return "", false
}

func (t TypeTag) String() string {
	return string(t)
}

// EncodeU64 produces the 8-byte little-endian form used for u64 values.
func EncodeU64(v uint64) []byte {
	return binary.LittleEndian.AppendUint64(nil, v)
}

// DecodeU64 is the inverse of EncodeU64.
func DecodeU64(data []byte) (uint64, bool) {
	if len(data) != 8 {
		return 0, false
	}
	return binary.LittleEndian.Uint64(data), true
}
