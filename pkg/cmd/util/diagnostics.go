// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package util

import (
	"fmt"
	"io"
	"strings"

	"github.com/sixc-lang/sixc/pkg/diag"
)

// RenderDiagnostics prints one entry per diagnostic, word-wrapping the
// severity/code/message header to width columns and following it with the
// source span, if any, on its own line.
func RenderDiagnostics(w io.Writer, diags diag.List, width int) {
	for _, d := range diags {
		header := fmt.Sprintf("%s %s: %s", d.Severity, d.Code, d.Message)

		for _, line := range wrap(header, width) {
			fmt.Fprintln(w, line)
		}

		if d.Span.File != "" {
			fmt.Fprintf(w, "  at %s\n", d.Span)
		}
	}
}

// wrap greedily packs words onto lines no longer than width, splitting any
// single word longer than width across lines; width <= 0 disables
// wrapping entirely (the caller couldn't determine a terminal size).
func wrap(s string, width int) []string {
	if width <= 0 {
		return []string{s}
	}

	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}

	split := make([]string, 0, len(words))
	for _, word := range words {
		for len(word) > width {
			split = append(split, word[:width])
			word = word[width:]
		}

		split = append(split, word)
	}

	words = split

	lines := make([]string, 0, 1)
	cur := words[0]

	for _, word := range words[1:] {
		if len(cur)+1+len(word) > width {
			lines = append(lines, cur)
			cur = word

			continue
		}

		cur += " " + word
	}

	return append(lines, cur)
}
