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

package cmd

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"udpmsg/pkg/util"
)

type testCommandT struct {
	Command
	optName     string
	optCount    uint
	optVerbose  bool
	optWait     time.Duration
	optPeers    util.StringListFlags
	executedArg string
}

func (c *testCommandT) Init(name string, desc string) {
	c.Command.Init(name, desc)
	c.StringOption(&c.optName, "n|name", "none", "specify name")
	c.UintOption(&c.optCount, "count", 1, "specify count")
	c.BoolOption(&c.optVerbose, "v|verbose", false, "verbose")
	c.DurationOption(&c.optWait, "w|wait", time.Second, "specify wait")
	c.ValueOption(&c.optPeers, "peer", "specify peer")
}

func (c *testCommandT) Exec() {
	c.executedArg = c.Arg(0)
}

func TestCommandParse(t *testing.T) {
	c := &testCommandT{}
	c.Init("testparse", "parse test")
	err := c.Parse([]string{"-name", "x", "-count", "3", "-v", "-w", "250ms", "-peer", "a:1", "-peer", "b:2", "arg0"})
	if err != nil {
		t.Fatal(err)
	}
	if c.optName != "x" || c.optCount != 3 || !c.optVerbose || c.optWait != 250*time.Millisecond {
		t.Errorf("parsed name=%q count=%d verbose=%v wait=%s", c.optName, c.optCount, c.optVerbose, c.optWait)
	}
	if len(c.optPeers) != 2 || c.optPeers[1] != "b:2" {
		t.Errorf("peers %v", c.optPeers)
	}
	c.Exec()
	if c.executedArg != "arg0" {
		t.Errorf("arg %q", c.executedArg)
	}
}

func TestCommandUsage(t *testing.T) {
	c := &testCommandT{}
	c.Init("testusage", "usage test")
	c.SetSynopsis("[option] <value>")
	c.AddExample("udpmsgcli testusage -n a", "run with a name")

	var buf bytes.Buffer
	c.Write(&buf)
	out := buf.String()
	for _, s := range []string{"testusage - usage test", "-n, -name string", "-w, -wait duration", "(default 1s)", "run with a name"} {
		if !strings.Contains(out, s) {
			t.Errorf("usage lacks %q:\n%s", s, out)
		}
	}
}

func TestRegister(t *testing.T) {
	c := &testCommandT{}
	c.Init("testregister", "register test")
	if !Register(c) {
		t.Fatal("first registration failed")
	}
	if Register(c) {
		t.Error("duplicate registration accepted")
	}
	if GetCommand("testregister") != c {
		t.Error("command not found")
	}
	var buf bytes.Buffer
	WriteCommand(&buf)
	if !strings.Contains(buf.String(), "testregister") {
		t.Errorf("command list lacks testregister:\n%s", buf.String())
	}
}

func TestCommandsSortedByName(t *testing.T) {
	for _, name := range []string{"zz-sorted", "aa-sorted", "mm-sorted"} {
		c := &testCommandT{}
		c.Init(name, "sort test")
		Register(c)
	}
	var buf bytes.Buffer
	WriteCommand(&buf)
	out := buf.String()
	a, m, z := strings.Index(out, "aa-sorted"), strings.Index(out, "mm-sorted"), strings.Index(out, "zz-sorted")
	if a < 0 || !(a < m && m < z) {
		t.Errorf("commands not sorted:\n%s", out)
	}
}

func TestParseCommandLine(t *testing.T) {
	c := &testCommandT{}
	c.Init("testcmdline", "command line test")
	Register(c)

	saved := os.Args
	defer func() { os.Args = saved }()

	os.Args = []string{"udpmsgcli", "testcmdline", "-n", "y", "value"}
	found, args := ParseCommandLine()
	if found != c {
		t.Fatalf("found %v", found)
	}
	if len(args) != 3 || args[0] != "-n" || args[2] != "value" {
		t.Errorf("args %v", args)
	}

	os.Args = []string{"udpmsgcli", "-version"}
	if found, _ = ParseCommandLine(); found != nil {
		t.Errorf("unexpected command %s", found.GetName())
	}
}
