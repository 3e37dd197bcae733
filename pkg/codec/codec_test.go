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

package codec

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"google.golang.org/protobuf/types/known/wrapperspb"
)

type serializableT struct{ data string }

func (s serializableT) Serialize() []byte { return []byte(s.data) }

func TestRawCodec(t *testing.T) {
	var c ICodec = RawCodec{}
	tests := []struct {
		in     interface{}
		expect []byte
	}{
		{[]byte("ping"), []byte("ping")},
		{"ping", []byte("ping")},
		{serializableT{"ping"}, []byte("ping")},
		{nil, nil},
	}
	for _, tc := range tests {
		b, err := c.Serialize(tc.in)
		if err != nil {
			t.Fatalf("%T: %s", tc.in, err)
		}
		if !bytes.Equal(b, tc.expect) {
			t.Errorf("%T: expected %q, got %q", tc.in, tc.expect, b)
		}
	}
	if _, err := c.Serialize(42); !errors.Is(err, ErrNotSerializable) {
		t.Errorf("expected ErrNotSerializable, got %v", err)
	}

	var s string
	if err := c.Deserialize([]byte("x"), &s); err != nil || s != "x" {
		t.Errorf("unexpected %q, %v", s, err)
	}
	var b []byte
	if err := c.Deserialize([]byte("y"), &b); err != nil || string(b) != "y" {
		t.Errorf("unexpected %q, %v", b, err)
	}
	if err := c.Deserialize([]byte("z"), 0); err == nil {
		t.Error("expected error")
	}
}

func TestProtoCodec(t *testing.T) {
	c := NewProtoCodec()
	b, err := c.Serialize(wrapperspb.String("hello"))
	if err != nil {
		t.Fatal(err)
	}
	out := &wrapperspb.StringValue{}
	if err = c.Deserialize(b, out); err != nil {
		t.Fatal(err)
	}
	if out.GetValue() != "hello" {
		t.Errorf("expected hello, got %q", out.GetValue())
	}
	if _, err = c.Serialize("plain"); !errors.Is(err, ErrNotSerializable) {
		t.Errorf("expected ErrNotSerializable, got %v", err)
	}
	if err = c.Deserialize(b, new(string)); err == nil {
		t.Error("expected error for non-proto target")
	}
}

func TestSnappyCodec(t *testing.T) {
	c := NewSnappyCodec(nil)
	in := strings.Repeat("compressible ", 100)
	b, err := c.Serialize(in)
	if err != nil {
		t.Fatal(err)
	}
	if len(b) >= len(in) {
		t.Errorf("expected compression, %d >= %d", len(b), len(in))
	}
	var out string
	if err = c.Deserialize(b, &out); err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Error("round trip mismatch")
	}
	if err = c.Deserialize([]byte{0xFF, 0xFF, 0xFF}, &out); err == nil {
		t.Error("expected snappy decode error")
	}

	pc := NewSnappyCodec(NewProtoCodec())
	if b, err = pc.Serialize(wrapperspb.Int64(7)); err != nil {
		t.Fatal(err)
	}
	v := &wrapperspb.Int64Value{}
	if err = pc.Deserialize(b, v); err != nil || v.GetValue() != 7 {
		t.Errorf("unexpected %d, %v", v.GetValue(), err)
	}
}

func TestSerializerFunc(t *testing.T) {
	var s ISerializer = SerializerFunc(func(v interface{}) ([]byte, error) {
		return []byte{1}, nil
	})
	if b, err := s.Serialize(nil); err != nil || !bytes.Equal(b, []byte{1}) {
		t.Errorf("unexpected %v, %v", b, err)
	}
}
