// Copyright (c) 2024 Contributors to the Eclipse Foundation
//
// See the NOTICE file(s) distributed with this work for additional
// information regarding copyright ownership.
//
// This program and the accompanying materials are made available under the
// terms of the Apache Software License 2.0 which is available at
// https://www.apache.org/licenses/LICENSE-2.0, or the MIT license
// which is available at https://opensource.org/licenses/MIT.
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package mwcom

import "testing"

func TestNewTagPacksLittleEndian(t *testing.T) {
	tag := NewTag([8]byte{'0', '1', '2', '3', '4', '5', '6', '7'})
	const want = 0x3736353433323130
	if tag.Value() != want {
		t.Fatalf("Value() = %#x, want %#x", tag.Value(), uint64(want))
	}
	if tag.IsHashed() {
		t.Fatal("a packed-literal Tag must not report IsHashed")
	}
}

func TestTagFromStringIsHashed(t *testing.T) {
	tag := TagFromString("/root/folder/file.txt")
	if !tag.IsHashed() {
		t.Fatal("TagFromString must produce a hashed Tag")
	}
	if tag.Value()&tagHashedBit == 0 {
		t.Fatal("hashed Tag must have its top bit set")
	}
}

func TestTagFromStringIsDeterministic(t *testing.T) {
	a := TagFromString("same-name")
	b := TagFromString("same-name")
	if a != b {
		t.Fatalf("TagFromString must be deterministic: %#x != %#x", a, b)
	}
	if TagFromString("same-name") == TagFromString("different-name") {
		t.Fatal("distinct names must not collide trivially")
	}
}

func TestTagInvalid(t *testing.T) {
	if TagInvalid.IsValid() {
		t.Fatal("TagInvalid.IsValid() must be false")
	}
	if TagInvalid != ^Tag(0) {
		t.Fatalf("TagInvalid must be all-ones, got %#x", uint64(TagInvalid))
	}
}

func TestTagAppendComposesDeterministically(t *testing.T) {
	base := NewTag([8]byte{'b', 'a', 's', 'e'})
	a := base.AppendString("suffix")
	b := base.AppendString("suffix")
	if a != b {
		t.Fatal("AppendString must be deterministic")
	}
	if !a.IsHashed() {
		t.Fatal("a Tag produced by AppendString must always be hashed")
	}
	if a.AppendTag(b) != base.AppendString("suffix").AppendTag(base.AppendString("suffix")) {
		t.Fatal("AppendTag must be deterministic given deterministic inputs")
	}
}

func TestTagStringRoundTripsPrintableLiteral(t *testing.T) {
	tag := NewTag([8]byte{'o', 'k', 0, 0, 0, 0, 0, 0})
	if got, want := tag.String(), "ok"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestTagStringOnHashedFallsBackToHex(t *testing.T) {
	tag := TagFromString("anything")
	if tag.String()[0] != '#' {
		t.Fatalf("hashed Tag.String() = %q, want a '#'-prefixed hex form", tag.String())
	}
}

func TestComposeTagOfNoFieldsIsEmptyTupleTag(t *testing.T) {
	if ComposeTag() != NewTag([8]byte{}) {
		t.Fatal("ComposeTag with no fields must equal the empty-tuple tag")
	}
}
