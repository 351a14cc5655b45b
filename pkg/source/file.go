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
package source

import "strings"

// File holds source text in memory purely for diagnostic rendering and
// source-map line lookups.  Reading the file from disk is a CLI concern
// (spec.md section 1, "Out of scope: CLI, file I/O"); this type is always
// constructed from text the caller already has.
type File struct {
	name  string
	lines []string
}

// NewFile builds a File from its name and full contents.
func NewFile(name, contents string) *File {
	return &File{name, strings.Split(contents, "\n")}
}

// Name returns the file's name as recorded in spans.
func (f *File) Name() string {
	return f.name
}

// Line returns the 1-indexed source line's text, or "" if out of range.
func (f *File) Line(number int) string {
	if number < 1 || number > len(f.lines) {
		return ""
	}

	return f.lines[number-1]
}

// Snippet renders the line(s) covered by span with a caret line under the
// starting column, in the style a diagnostic printer wants.
func (f *File) Snippet(span Span) string {
	var b strings.Builder

	for line := span.Start.Line; line <= span.End.Line; line++ {
		b.WriteString(f.Line(line))
		b.WriteByte('\n')
	}

	if col := span.Start.Col; col > 0 {
		b.WriteString(strings.Repeat(" ", col-1))
		b.WriteByte('^')
	}

	return b.String()
}
