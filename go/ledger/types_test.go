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
	"encoding/json"
	"testing"
)

func TestObjectID_JSON_Encoding(t *testing.T) {
	tests := map[string]struct {
		id   ObjectID
		json string
	}{
		"zero":      {ObjectID{}, `"0x0000000000000000000000000000000000000000000000000000000000000000"`},
		"framework": {FrameworkPackage, `"0x0000000000000000000000000000000000000000000000000000000000000002"`},
		"leading":   {ObjectID{0xAB}, `"0xab00000000000000000000000000000000000000000000000000000000000000"`},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			encoded, err := json.Marshal(test.id)
			if err != nil {
				t.Fatalf("failed to encode into JSON: %v", err)
			}
			if want, got := test.json, string(encoded); want != got {
				t.Errorf("unexpected JSON encoding, wanted %v, got %v", want, got)
			}
			var restored ObjectID
			if err := json.Unmarshal(encoded, &restored); err != nil {
				t.Fatalf("failed to restore id: %v", err)
			}
			if test.id != restored {
				t.Errorf("unexpected restored value, wanted %v, got %v", test.id, restored)
			}
		})
	}
}

func TestObjectID_JSON_InvalidValueDecodingFails(t *testing.T) {
	tests := map[string]string{
		"empty":             `""`,
		"no hex prefix":     `"0000000000000000000000000000000000000000000000000000000000000000"`,
		"too short":         `"0x00"`,
		"too long":          `"0x000000000000000000000000000000000000000000000000000000000000000000"`,
		"invalid hex":       `"0x0g00000000000000000000000000000000000000000000000000000000000000"`,
		"not a JSON string": `0x00`,
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			var id ObjectID
			if json.Unmarshal([]byte(data), &id) == nil {
				t.Errorf("expected decoding to fail, but instead it produced %v", id)
			}
		})
	}
}

func TestHexToObjectID_AcceptsShortForms(t *testing.T) {
	tests := map[string]ObjectID{
		"0x2":    {31: 0x02},
		"0x02":   {31: 0x02},
		"0x102":  {30: 0x01, 31: 0x02},
		"0xabcd": {30: 0xab, 31: 0xcd},
	}
	for input, want := range tests {
		t.Run(input, func(t *testing.T) {
			got, err := HexToObjectID(input)
			if err != nil {
				t.Fatalf("failed to parse %v: %v", input, err)
			}
			if want != got {
				t.Errorf("unexpected id, wanted %v, got %v", want, got)
			}
			if want, got := input, got.ShortString(); input[2] != '0' && want != got {
				t.Errorf("unexpected short form, wanted %v, got %v", want, got)
			}
		})
	}
}

func TestHexToAddress_RejectsInvalidInput(t *testing.T) {
	tests := []string{"", "2", "0xzz", "0x" + string(make([]byte, 65))}
	for _, input := range tests {
		if _, err := HexToAddress(input); err == nil {
			t.Errorf("expected parsing of %q to fail", input)
		}
	}
}

func TestTypeTag_Classification(t *testing.T) {
	tests := map[TypeTag]struct {
		coin      bool
		primitive bool
	}{
		TypeU64:                   {primitive: true},
		TypeAddress:               {primitive: true},
		VectorOf(TypeU64):         {primitive: true},
		VectorOf(GasCoinType):     {},
		GasCoinType:               {coin: true},
		CoinType("0x5::usd::USD"): {coin: true},
		"0x2::counter::Counter":   {},
	}
	for typ, want := range tests {
		if got := typ.IsCoin(); want.coin != got {
			t.Errorf("unexpected coin classification of %v, wanted %t, got %t", typ, want.coin, got)
		}
		if got := typ.IsPrimitive(); want.primitive != got {
			t.Errorf("unexpected primitive classification of %v, wanted %t, got %t", typ, want.primitive, got)
		}
	}
}

func TestTypeTag_VectorElement(t *testing.T) {
	elem, ok := VectorOf(GasCoinType).VectorElement()
	if !ok || elem != GasCoinType {
		t.Errorf("unexpected element type, got %v, %t", elem, ok)
	}
	if _, ok := TypeU64.VectorElement(); ok {
		t.Errorf("u64 must not be a vector type")
	}
}

func TestU64_EncodingRoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 255, 256, 1 << 40, ^uint64(0)} {
		data := EncodeU64(v)
		if want, got := 8, len(data); want != got {
			t.Errorf("unexpected encoding length, wanted %d, got %d", want, got)
		}
		got, ok := DecodeU64(data)
		if !ok || got != v {
			t.Errorf("unexpected decoded value, wanted %d, got %d", v, got)
		}
	}
	if _, ok := DecodeU64([]byte{1, 2, 3}); ok {
		t.Errorf("decoding of short input must fail")
	}
}
