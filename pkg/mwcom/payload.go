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

// TypeTagged is implemented by every payload type usable with Topic or
// Rpc. The Tag identifies the wire-compatible shape of the type so a
// transport can refuse to connect a publisher and subscriber whose
// payload types were built from different definitions, per spec.md §6.
type TypeTagged interface {
	// TypeTag returns this type's identity tag. Implementations should
	// return a constant value: it is evaluated once per connection, not
	// per sample.
	TypeTag() Tag
}

// Payload is the type constraint every Topic[T] and Rpc[Args, R] type
// parameter must satisfy. It requires comparability (samples are passed
// by value through the loan/publish pipeline, never boxed) and a type
// tag for wire compatibility checks.
type Payload interface {
	comparable
	TypeTagged
}

// ComposeTag folds the TypeTags of a composite payload's fields into one
// Tag, the way original_source's type_tags.rs tuple macro composes a
// tuple's TypeTag from its elements' tags, starting from the tag of the
// empty tuple. Rpc argument structs that aggregate several named fields
// should build their TypeTag this way rather than hashing a type name
// string, so that two structurally identical Args types across packages
// agree on the wire.
func ComposeTag(fields ...Tag) Tag {
	t := NewTag([8]byte{}) // the tag of the empty tuple, all zero bytes
	for _, f := range fields {
		t = t.AppendTag(f)
	}
	return t
}
