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

package util

import (
	"fmt"
	"strings"
	"unicode"
)

// ToPrintableString replaces every unprintable byte with '.'.
func ToPrintableString(data []byte) string {
	buf := make([]byte, len(data))
	for i, b := range data {
		if unicode.IsPrint(rune(b)) {
			buf[i] = b
		} else {
			buf[i] = '.'
		}
	}
	return string(buf)
}

func ToPrintableAndHexString(data []byte) string {
	return fmt.Sprintf("%s [%X]", ToPrintableString(data), data)
}

const hexDumpRow = 16

// HexDumpString renders data hexDumpRow bytes per line: offset, hex bytes, printable form.
func HexDumpString(data []byte) string {
	var sb strings.Builder
	for off := 0; off < len(data); off += hexDumpRow {
		row := data[off:]
		if len(row) > hexDumpRow {
			row = row[:hexDumpRow]
		}
		fmt.Fprintf(&sb, "  %08X  % X", off, row)
		sb.WriteString(strings.Repeat("   ", hexDumpRow-len(row)))
		sb.WriteString("  |")
		sb.WriteString(ToPrintableString(row))
		sb.WriteString("|\n")
	}
	return sb.String()
}
