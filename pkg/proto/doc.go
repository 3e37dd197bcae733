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

/*
Package proto implements the udpmsg datagram frame.

Frame

Every frame travels in a single UDP datagram of at most 1024 bytes. All fields except the
payload have a fixed width, so there are no length prefixes: the payload occupies the
remainder of the datagram.

  +-----------+------------------+-----+------+---------------------------+
  | token     | sender identity  | ack | type | payload                   |
  | 500 bytes | 16 bytes         | 1   | 1    | 0 to 506 bytes            |
  +-----------+------------------+-----+------+---------------------------+
  0           500                516   517    518                      <=1024

  token:
    opaque credential produced by the sender's token adapter. Never inspected here.
  sender identity:
    128-bit UUID of the sending client, as raw bytes.
  ack:
    0 no acknowledgment requested
    1 acknowledgment requested
  type:
    application message type. 0xFF is reserved for acknowledgment frames.

Ack header

When ack is 1 the payload region starts with an 8-byte big-endian sequence number chosen by
the sender. The application payload follows it.

  +-----------------+---------------------------+
  | sequence uint64 | application payload       |
  +-----------------+---------------------------+

Acknowledgment frame

An acknowledgment frame has type 0xFF, ack 0, and a 24-byte payload holding the
correlation of the frame it acknowledges: the acknowledged sender identity followed by the
acknowledged sequence number.

  +------------------+-----------------+
  | identity 16      | sequence 8      |
  +------------------+-----------------+
*/
package proto
