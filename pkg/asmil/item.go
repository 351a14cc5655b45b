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

// Package asmil implements the assembly-level intermediate representation
// of spec.md section 3: a structured, write-once-from-the-builder's-
// perspective stream of labels, instructions, data directives and
// comments that pkg/codegen produces and pkg/emit serializes to text.
package asmil

import "github.com/sixc-lang/sixc/pkg/source"

// Item is the tagged-variant interface every AsmIL stream element
// implements; a type switch on the concrete type is the sanctioned way to
// consume a stream (the same discriminated-union-via-interface pattern
// pkg/ast and pkg/il both use for their own node/instruction sets).
type Item interface {
	item()
}

// LabelKind classifies what a Label marks.
type LabelKind uint8

// The label kinds spec.md section 3 enumerates.
const (
	LabelFunction LabelKind = iota
	LabelGlobal
	LabelBlock
	LabelData
	LabelTemp
)

// String names a label kind for diagnostics and dumps.
func (k LabelKind) String() string {
	switch k {
	case LabelFunction:
		return "function"
	case LabelGlobal:
		return "global"
	case LabelBlock:
		return "block"
	case LabelData:
		return "data"
	case LabelTemp:
		return "temp"
	default:
		return "unknown"
	}
}

// Label marks an address for later reference. Address is nil until the
// assembler (or a later pass over the AsmIL module) resolves it; pkg/emit
// never needs it since labels are emitted symbolically, not as resolved
// addresses.
type Label struct {
	Name     string
	Kind     LabelKind
	Exported bool
	Address  *uint16
	Comment  string
}

func (*Label) item() {}

// AddressingMode tags how an Instruction's operand is interpreted,
// matching spec.md section 4.8's addressing-mode-format table.
type AddressingMode uint8

// The 6502 addressing modes this compiler's code generator emits.
const (
	AddrImplied AddressingMode = iota
	AddrImmediate
	AddrZeroPage
	AddrZeroPageX
	AddrAbsolute
	AddrAbsoluteX
	AddrAbsoluteY
	AddrIndirectX
	AddrIndirectY
	AddrIndirect
	AddrRelative
)

// Instruction is one emitted machine instruction: a mnemonic, an
// addressing mode, an optional operand (a literal value, a label
// reference, or both depending on mode), and the byte/cycle cost the
// code generator tabulates for pkg/codegen.Statistics.
type Instruction struct {
	Mnemonic  string
	Mode      AddressingMode
	Operand   string // formatted operand text, resolved at emission time
	Bytes     int
	Cycles    int
	SourceLoc source.Span
	Comment   string
}

func (*Instruction) item() {}

// DataKind classifies a Data directive's payload.
type DataKind uint8

// The data directive kinds spec.md section 3 enumerates.
const (
	DataByte DataKind = iota
	DataWord
	DataText
	DataFill
)

// Data emits a `!byte`/`!word`/`!text`/`!fill` directive. Values holds the
// byte/word values for Byte/Word, the single string for Text (as one
// element), or [count, fillByte] for Fill; Size is the directive's total
// byte footprint, used by Statistics.
type Data struct {
	Kind   DataKind
	Values []int64
	Text   string // only meaningful for DataText
	Size   int
}

func (*Data) item() {}

// CommentStyle controls how Comment renders (spec.md section 3).
type CommentStyle uint8

// The comment placements pkg/emit supports.
const (
	CommentLine CommentStyle = iota
	CommentSection
	CommentInline
)

// Comment is a non-code annotation in the stream.
type Comment struct {
	Text  string
	Style CommentStyle
}

func (*Comment) item() {}

// Origin emits a `*= $XXXX` directive, relocating subsequent items.
type Origin struct {
	Address uint16
}

func (*Origin) item() {}

// Blank emits one blank line, purely for readability of the rendered text.
type Blank struct{}

func (*Blank) item() {}

// Raw passes text through verbatim -- an escape hatch for content the
// structured item set doesn't model (spec.md section 3 includes it for
// exactly this reason).
type Raw struct {
	Text string
}

func (*Raw) item() {}
