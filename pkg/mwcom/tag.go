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
	"encoding/binary"
	"fmt"
	"unicode"
)

// fnvOffsetBasis64 and fnvPrime64 are the constants of the FNV-1a 64-bit
// hash, reproduced here (rather than imported from hash/fnv) because Tag
// needs a *seedable* variant: folding additional bytes into an existing
// Tag value reuses that value as the running hash state instead of always
// restarting from the canonical offset basis. hash/fnv's New64a does not
// expose a way to seed the internal state, so the four-line algorithm is
// inlined instead of pulling in a second hashing dependency.
const (
	fnvOffsetBasis64 uint64 = 14695981039346656037
	fnvPrime64       uint64 = 1099511628211
)

// tagHashedBit marks a Tag as the hash of an arbitrarily long name rather
// than a packed literal. It occupies the most significant bit, matching
// original_source's reservation of the top bit of Tag's backing integer.
const tagHashedBit uint64 = 1 << 63

// Tag is a 64-bit type/instance identity. A Tag with its top bit clear is
// up to eight printable-ASCII bytes packed little-endian; a Tag with the
// top bit set is the FNV-1a hash of an arbitrarily long name. Both forms
// compose: AppendTag/AppendString fold more bytes into an existing Tag,
// always producing a hashed Tag.
type Tag uint64

// TagInvalid is the reserved value no valid Tag ever takes.
const TagInvalid Tag = ^Tag(0)

// NewTag packs up to 8 bytes of name literally into a Tag. Unused
// trailing bytes must be zero. The resulting Tag has its top bit clear.
func NewTag(name [8]byte) Tag {
	v := binary.LittleEndian.Uint64(name[:])
	return Tag(v &^ tagHashedBit)
}

// TagFromRaw wraps an already-computed value as a Tag verbatim, without
// touching the hashed bit. Used when deserializing a Tag off the wire.
func TagFromRaw(v uint64) Tag {
	return Tag(v)
}

// TagFromString hashes name with seeded FNV-1a, producing a hashed Tag.
// This is the Go equivalent of original_source's
// Fnv1a64ConstHasher::from_seed(FNV_OFFSET_BASIS).write(name.as_bytes()).finish().
func TagFromString(name string) Tag {
	return Tag(fnvOffsetBasis64).AppendString(name)
}

// IsValid reports whether t is not TagInvalid.
func (t Tag) IsValid() bool {
	return t != TagInvalid
}

// IsHashed reports whether t was produced by hashing rather than by
// packing a short literal.
func (t Tag) IsHashed() bool {
	return uint64(t)&tagHashedBit != 0
}

// Value returns the raw 64-bit backing value.
func (t Tag) Value() uint64 {
	return uint64(t)
}

// Invalidate returns TagInvalid, mirroring original_source's Tag::invalidate
// (a free function rather than a mutator, since Tag is an immutable value
// type here).
func (t Tag) Invalidate() Tag {
	return TagInvalid
}

// AppendTag folds another Tag's raw bytes into t using seeded FNV-1a,
// always producing a hashed Tag. This is the append_tag composition
// operator spec.md §6 names: "Tags compose".
func (t Tag) AppendTag(other Tag) Tag {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(other))
	return t.appendBytes(buf[:])
}

// AppendString folds the bytes of s into t using seeded FNV-1a, always
// producing a hashed Tag.
func (t Tag) AppendString(s string) Tag {
	return t.appendBytes([]byte(s))
}

func (t Tag) appendBytes(b []byte) Tag {
	h := uint64(t)
	for _, c := range b {
		h ^= uint64(c)
		h *= fnvPrime64
	}
	return Tag(h | tagHashedBit)
}

// String implements the Display-equivalent rendering from
// original_source/qor-core/src/id.rs: an unhashed Tag prints as its
// packed ASCII text (trailing NUL bytes trimmed); a hashed Tag prints as
// its hex value prefixed with '#'.
func (t Tag) String() string {
	if t == TagInvalid {
		return "#invalid"
	}
	if !t.IsHashed() {
		if s, ok := t.asciiText(); ok {
			return s
		}
	}
	return fmt.Sprintf("#%016x", uint64(t))
}

// GoString implements the Debug-equivalent rendering: "#text hash" when
// the packed literal is printable, otherwise just the hash, matching
// original_source's debug impl which always shows the numeric value
// alongside any decodable text.
func (t Tag) GoString() string {
	if t == TagInvalid {
		return "Tag(#invalid)"
	}
	if !t.IsHashed() {
		if s, ok := t.asciiText(); ok {
			return fmt.Sprintf("Tag(#%s %#016x)", s, uint64(t))
		}
	}
	return fmt.Sprintf("Tag(#%016x)", uint64(t))
}

// asciiText decodes an unhashed Tag's packed bytes as printable ASCII,
// trimming trailing zero padding. Returns false if any non-zero byte is
// not a printable ASCII character.
func (t Tag) asciiText() (string, bool) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(t))
	n := 8
	for n > 0 && buf[n-1] == 0 {
		n--
	}
	for _, c := range buf[:n] {
		if c == 0 || c > unicode.MaxASCII || !unicode.IsPrint(rune(c)) {
			return "", false
		}
	}
	return string(buf[:n]), true
}
