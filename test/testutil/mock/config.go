//
//  Copyright 2023 PayPal Inc.
//
//  Licensed to the Apache Software Foundation (ASF) under one or more
//  contributor license agreements.  See the NOTICE file distributed with
//  this work for additional information regarding copyright ownership.
//  The ASF licenses this file to You under the Apache License, Version 2.0
//  (the "License"); you may not use this file except in compliance with
//  the License.  You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.
//

package mock

import (
	"udpmsg/pkg/proto"
	"udpmsg/pkg/sec"
)

// Config controls how a UDPServer answers.
type Config struct {
	// AutoAck replies to ack-requested frames with an ack frame.
	AutoAck bool
	// DropFirstAcks suppresses that many acks before AutoAck starts answering.
	DropFirstAcks int
	// Identity is the sender identity of the frames the server produces.
	Identity proto.Identity
	// Tokens produces the tokens of outbound frames. Nil means sec.NoopTokenAdapter.
	Tokens sec.ITokenAdapter
}

var DefaultConfig = Config{
	AutoAck: true,
}
