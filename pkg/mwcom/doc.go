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

// Package mwcom defines the core messaging contract of the inc/mw/com
// middleware: three orthogonal primitives — Signal, Topic and Rpc — built
// on a pluggable transport Adapter.
//
// All three primitives expose loan-based buffer acquisition so that the
// running phase performs no dynamic allocation beyond what the transport
// preallocated: a producer loans a buffer, writes into it, then hands it
// to the transport (publish/send); a consumer receives an already-filled,
// read-only buffer. The in-process reference transport lives in the
// sibling package mwcom/local.
//
// # Signal
//
//	adapter := local.New()
//	armed, _ := adapter.SignalBuilder(mwcom.NewLabel("armed")).Build()
//
//	collector, _ := armed.Collector()
//	go collector.Wait(context.Background())
//
//	emitter, _ := armed.Emitter()
//	emitter.Emit()
//
// # Topic
//
//	topic, _ := local.NewTopicBuilder[Odometry](adapter, mwcom.NewLabel("vehicle/odometry")).
//	    WithQueueDepth(4).
//	    Build()
//	pub, _ := topic.Publisher()
//	pub.PublishValue(Odometry{Speed: 12})
//
//	sub, _ := topic.Subscriber()
//	sample, _ := sub.Receive(context.Background())
//	fmt.Println(sample.Get().Speed)
//
// # Rpc
//
//	rpc, _ := local.NewRpcBuilder[Args, bool](adapter, mwcom.NewLabel("threshold")).Build()
//	invoker, _ := rpc.Invoker()
//	ok, _ := invoker.InvokeValue(context.Background(), Args{X: 42})
//
//	invokee, _ := rpc.Invokee()
//	invokee.ReceiveAndExecute(context.Background(), func(args Args) bool { return args.X > 42 })
package mwcom
