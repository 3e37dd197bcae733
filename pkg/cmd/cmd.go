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

// Package cmd holds the command registry of udpmsgcli. Each command owns a flag set and
// renders its own usage page.
package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/golang/glog"

	"udpmsg/pkg/version"
)

// commands, sorted by name
var commands []ICommand

type (
	ICommand interface {
		GetName() string
		GetDesc() string
		Init(name string, desc string)
		Parse(args []string) error
		Exec()
		PrintUsage()
	}

	Command struct {
		Option
		name       string
		desc       string
		synopsis   string
		details    string
		examples   []Example
		optVModule string
	}

	Example struct {
		Cmdline string
		Desc    string
	}
)

func (c *Command) Init(name string, desc string) {
	c.name = name
	c.desc = desc
	c.Option.Init(name, flag.ExitOnError)
	c.StringOption(&c.optVModule, "vmodule", "", "comma-separated list of pattern=N settings for file-filtered logging")
	c.Option.Usage = c.PrintUsage
}

func (c *Command) GetName() string {
	return c.name
}

func (c *Command) GetDesc() string {
	return c.desc
}

func (c *Command) SetSynopsis(str string) {
	c.synopsis = str
}

func (c *Command) GetSynopsis() string {
	if c.synopsis == "" {
		return "[option]"
	}
	return c.synopsis
}

func (c *Command) GetDetails() string {
	return c.details
}

func (c *Command) AddDetails(txt string) {
	c.details += txt
}

func (c *Command) AddExample(cmdline string, desc string) {
	c.examples = append(c.examples, Example{Cmdline: cmdline, Desc: desc})
}

func (c *Command) GetExamples() []Example {
	return c.examples
}

func (c *Command) ProgName() string {
	return progName()
}

func (c *Command) Write(w io.Writer) {
	wo := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := usageTemplate.Execute(wo, c); err != nil {
		fmt.Fprintln(w, err)
	}
	wo.Flush()
}

func (c *Command) PrintUsage() {
	c.Write(os.Stdout)
}

// Validate exits unless the command line has been parsed.
func (c *Command) Validate() {
	if !c.Parsed() {
		glog.Exit("not parsed")
	}
}

func (c *Command) Parse(arguments []string) (err error) {
	if err = c.Option.Parse(arguments); err == nil && c.optVModule != "" {
		err = SetGlogFlag("vmodule", c.optVModule)
	}
	return
}

// SetGlogFlag sets one of the flags glog registers on the default flag set.
func SetGlogFlag(name string, value string) error {
	f := flag.Lookup(name)
	if f == nil {
		return fmt.Errorf("glog flag -%s not registered", name)
	}
	return f.Value.Set(value)
}

// Register adds c under its name. A name can be registered once.
func Register(c ICommand) bool {
	name := c.GetName()
	i := sort.Search(len(commands), func(i int) bool { return commands[i].GetName() >= name })
	if i < len(commands) && commands[i].GetName() == name {
		glog.Warningf("command %s has been registered", name)
		return false
	}
	commands = append(commands, nil)
	copy(commands[i+1:], commands[i:])
	commands[i] = c
	return true
}

func GetCommand(name string) ICommand {
	i := sort.Search(len(commands), func(i int) bool { return commands[i].GetName() >= name })
	if i < len(commands) && commands[i].GetName() == name {
		return commands[i]
	}
	return nil
}

// ParseCommandLine finds the first argument naming a command and returns it together
// with the arguments that follow it.
func ParseCommandLine() (cmd ICommand, args []string) {
	for i := 1; i < len(os.Args); i++ {
		if cmd = GetCommand(os.Args[i]); cmd != nil {
			args = os.Args[i+1:]
			return
		}
	}
	return
}

func progName() string {
	return filepath.Base(os.Args[0])
}

func Write(w io.Writer) {
	prog := progName()
	fmt.Fprintf(w, "\n%s %s, udp messaging client\n\nUSAGE\n  %s [-version] <command> [option] [<args>]\n  %s <command> -help\n",
		prog, version.Version, prog, prog)
	WriteCommand(w)
}

func WriteCommand(w io.Writer) {
	if len(commands) == 0 {
		return
	}
	fmt.Fprintln(w, "\nCOMMAND")
	wo := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range commands {
		fmt.Fprintf(wo, "  %s\t%s\n", c.GetName(), c.GetDesc())
	}
	wo.Flush()
	fmt.Fprintln(w)
}

func PrintUsage() {
	Write(os.Stdout)
}

// PrintVersionOrUsage handles a command line naming no command.
func PrintVersionOrUsage() {
	var option Option
	var displayVersion bool
	option.Init(progName(), flag.ContinueOnError)
	option.BoolOption(&displayVersion, "version", false, "display version info.")
	option.Usage = PrintUsage
	if err := option.Parse(os.Args[1:]); err != nil {
		return
	}
	if displayVersion {
		version.PrintVersionInfo()
	} else {
		PrintUsage()
	}
}
