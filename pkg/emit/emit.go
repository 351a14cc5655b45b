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

// Package emit implements the assembly emitter of spec.md section 4.8: a
// thin, configurable-dialect serializer from an already-built AsmIL
// module to text. It owns no lowering decisions of its own -- pkg/codegen
// has already decided every mnemonic, addressing mode and operand; this
// package only decides how that decision reads on the page.
package emit

import (
	"fmt"
	"strings"

	"github.com/sixc-lang/sixc/pkg/asmil"
	"github.com/sixc-lang/sixc/pkg/config"
	"github.com/sixc-lang/sixc/pkg/source"
)

// SourceMapEntry maps one emitted line to the IL-level span it came from
// (spec.md section 6: "ordered mapping emittedLine -> sourceSpan").
type SourceMapEntry struct {
	Line int
	Span source.Span
}

// addressingModeSuffix is spec.md section 4.8's "fixed table mapping enum
// values to templates": codegen already bakes the immediate `#` prefix
// into the operand text, so the table here only needs to supply the
// indexed `,X`/`,Y` suffix; formatOperand wraps the indirect modes in
// parentheses itself.
var addressingModeSuffix = map[asmil.AddressingMode]string{
	asmil.AddrZeroPageX: ",X",
	asmil.AddrAbsoluteX: ",X",
	asmil.AddrAbsoluteY: ",Y",
}

func formatOperand(in *asmil.Instruction, opts config.EmitOptions) string {
	op := in.Operand
	if opts.HexPrefix != "$" {
		op = strings.ReplaceAll(op, "$", opts.HexPrefix)
	}

	switch in.Mode {
	case asmil.AddrIndirectX:
		return "(" + op + ",X)"
	case asmil.AddrIndirectY:
		return "(" + op + "),Y"
	case asmil.AddrIndirect:
		return "(" + op + ")"
	default:
		return op + addressingModeSuffix[in.Mode]
	}
}

// Emit renders m as assembly text under opts, returning the text and the
// source map produced alongside it (spec.md section 4.8's "Emission
// order").
func Emit(m *asmil.Module, opts config.EmitOptions) (string, []SourceMapEntry) {
	var b strings.Builder

	var srcMap []SourceMapEntry

	line := 0

	emitLine := func(text string) {
		b.WriteString(text)
		b.WriteByte('\n')
		line++
	}

	if m.OutputFile != "" {
		emitLine(fmt.Sprintf("!to \"%s\"", m.OutputFile))
	}

	for _, item := range m.Items {
		switch v := item.(type) {
		case *asmil.Label:
			emitLine(renderLabel(v, opts))
		case *asmil.Instruction:
			emitLine(renderInstruction(v, opts))

			if v.SourceLoc != (source.Span{}) {
				srcMap = append(srcMap, SourceMapEntry{Line: line, Span: v.SourceLoc})
			}
		case *asmil.Data:
			emitLine(renderData(v, opts))
		case *asmil.Comment:
			if !opts.IncludeComments {
				continue
			}

			for _, l := range renderComment(v) {
				emitLine(l)
			}
		case *asmil.Origin:
			emitLine(fmt.Sprintf("*= %s", hexWord(v.Address, opts)))
		case *asmil.Blank:
			emitLine("")
		case *asmil.Raw:
			emitLine(v.Text)
		}
	}

	return b.String(), srcMap
}

func renderLabel(l *asmil.Label, opts config.EmitOptions) string {
	name := l.Name

	switch {
	case l.Kind == asmil.LabelBlock:
		name = "." + name
	case l.Exported:
		name = "+" + name
	}

	text := name + ":"

	if opts.IncludeComments && l.Comment != "" {
		text += " ; " + l.Comment
	}

	return text
}

func renderInstruction(in *asmil.Instruction, opts config.EmitOptions) string {
	mnemonic := in.Mnemonic
	if opts.UppercaseMnemonics {
		mnemonic = strings.ToUpper(mnemonic)
	} else {
		mnemonic = strings.ToLower(mnemonic)
	}

	text := mnemonic

	if in.Mode != asmil.AddrImplied || in.Operand != "" {
		text += " " + formatOperand(in, opts)
	}

	if opts.IncludeCycleCounts {
		text += fmt.Sprintf(" ; %db %dc", in.Bytes, in.Cycles)
	}

	if opts.IncludeComments && in.Comment != "" {
		sep := " ; "
		if opts.IncludeCycleCounts {
			sep = ", "
		}

		text += sep + in.Comment
	}

	return text
}

func renderData(d *asmil.Data, opts config.EmitOptions) string {
	switch d.Kind {
	case asmil.DataByte:
		return "!byte " + joinHexBytes(d.Values, opts)
	case asmil.DataWord:
		return "!word " + joinHexWords(d.Values, opts)
	case asmil.DataText:
		return fmt.Sprintf("!text \"%s\"", escapeText(d.Text))
	case asmil.DataFill:
		if len(d.Values) < 2 {
			return "!fill 0, " + hexByte(0, opts)
		}

		return fmt.Sprintf("!fill %d, %s", d.Values[0], hexByte(byte(d.Values[1]), opts))
	default:
		return ""
	}
}

// renderComment splits a possibly multi-line comment (CommentSection is
// the teacher's own register-report style, a multi-line block) into one
// `; `-prefixed output line per input line, padding a section with blank
// lines so it reads as a header rather than running into the code above
// and below it.
func renderComment(c *asmil.Comment) []string {
	lines := strings.Split(strings.TrimRight(c.Text, "\n"), "\n")

	out := make([]string, 0, len(lines)+2)

	if c.Style == asmil.CommentSection {
		out = append(out, "")
	}

	for _, l := range lines {
		if l == "" {
			out = append(out, ";")
			continue
		}

		out = append(out, "; "+l)
	}

	if c.Style == asmil.CommentSection {
		out = append(out, "")
	}

	return out
}

func joinHexBytes(values []int64, opts config.EmitOptions) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = hexByte(byte(v), opts)
	}

	return strings.Join(parts, ", ")
}

func joinHexWords(values []int64, opts config.EmitOptions) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = hexWord(uint16(v), opts)
	}

	return strings.Join(parts, ", ")
}

func hexByte(v byte, opts config.EmitOptions) string {
	return fmt.Sprintf("%s%02X", opts.HexPrefix, v)
}

func hexWord(v uint16, opts config.EmitOptions) string {
	return fmt.Sprintf("%s%04X", opts.HexPrefix, v)
}

// escapeText applies spec.md section 6's `!text` escaping: backslash,
// quote, newline, tab.
func escapeText(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", `\n`,
		"\t", `\t`,
	)

	return r.Replace(s)
}
