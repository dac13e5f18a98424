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

import (
	"crypto/sha1"
	"encoding/hex"
	"testing"
)

func TestNewLabelMatchesSHA1(t *testing.T) {
	want := sha1.Sum([]byte("vehicle/odometry"))
	got := NewLabel("vehicle/odometry")
	if Label(want) != got {
		t.Fatalf("NewLabel must equal sha1.Sum, got %x want %x", got, want)
	}
}

// TestNewLabelMatchesPinnedVector reproduces original_source's own test
// vector (original_source/qor-core/src/id.rs, Label::new("/root/folder/file.txt")),
// rather than only checking NewLabel against Go's own sha1.Sum.
func TestNewLabelMatchesPinnedVector(t *testing.T) {
	const want = "eab921946563bc3fee9cdbe30fca5ca33dde7899"
	got := NewLabel("/root/folder/file.txt")
	if hex.EncodeToString(got[:]) != want {
		t.Fatalf("NewLabel(%q) = %x, want %s", "/root/folder/file.txt", got, want)
	}
}

func TestLabelInvalidIsAllOnes(t *testing.T) {
	for i, b := range LabelInvalid {
		if b != 0xFF {
			t.Fatalf("LabelInvalid[%d] = %#x, want 0xFF", i, b)
		}
	}
	if LabelInvalid.IsValid() {
		t.Fatal("LabelInvalid.IsValid() must be false")
	}
}

func TestNewLabelIsDeterministicAndDistinguishing(t *testing.T) {
	a := NewLabel("topic-a")
	b := NewLabel("topic-a")
	c := NewLabel("topic-b")
	if a != b {
		t.Fatal("NewLabel must be deterministic")
	}
	if a == c {
		t.Fatal("distinct names must produce distinct labels")
	}
}

func TestLabelAppendStrIsDeterministic(t *testing.T) {
	base := NewLabel("vehicle")
	a := base.AppendStr("odometry")
	b := base.AppendStr("odometry")
	if a != b {
		t.Fatal("AppendStr must be deterministic")
	}
	if a == base {
		t.Fatal("AppendStr must change the label")
	}
}

func TestLabelString(t *testing.T) {
	if LabelInvalid.String() != "#invalid" {
		t.Fatalf("LabelInvalid.String() = %q", LabelInvalid.String())
	}
	if got := NewLabel("x").String(); len(got) != 1+2*sha1.Size || got[0] != '#' {
		t.Fatalf("String() = %q, want '#' + 40 hex chars", got)
	}
}
