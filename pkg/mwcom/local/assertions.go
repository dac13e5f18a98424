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

package local

import "github.com/eclipse-score/inc-mw-com/pkg/mwcom"

// dummyPayload satisfies mwcom.Payload and exists only to let the
// generic types in this package be instantiated in compile-time
// "var _ Interface = (*Impl)(nil)" assertions.
type dummyPayload struct{}

func (dummyPayload) TypeTag() mwcom.Tag {
	return mwcom.NewTag([8]byte{'d', 'u', 'm', 'm', 'y'})
}
