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
package codegen

import (
	"github.com/sixc-lang/sixc/pkg/ast"
	"github.com/sixc-lang/sixc/pkg/diag"
	"github.com/sixc-lang/sixc/pkg/il"
)

// intrinsicKind tags how a dispatched call lowers. Most intrinsics are a
// single dedicated opcode, but a few (lo/hi, sizeof/length) have no opcode
// of their own and decompose into existing ones or fold at generation
// time.
type intrinsicKind uint8

const (
	intrinsicHardwareRead intrinsicKind = iota
	intrinsicHardwareWrite
	intrinsicLo
	intrinsicHi
	intrinsicSizeofLike
	intrinsicCPU
)

type intrinsicDef struct {
	kind intrinsicKind
	op   il.Opcode
	wide bool // peekw/pokew: word-sized hardware access
	len  bool // length(): array element count rather than sizeof's byte count
}

// intrinsics is the once-computed static table spec.md section 9 asks for
// in place of dynamic lookup of intrinsics by string name.
var intrinsics = map[string]intrinsicDef{
	"peek":           {kind: intrinsicHardwareRead, op: il.OpHardwareRead},
	"peekw":          {kind: intrinsicHardwareRead, op: il.OpHardwareRead, wide: true},
	"poke":           {kind: intrinsicHardwareWrite, op: il.OpHardwareWrite},
	"pokew":          {kind: intrinsicHardwareWrite, op: il.OpHardwareWrite, wide: true},
	"volatile_read":  {kind: intrinsicHardwareRead, op: il.OpHardwareRead},
	"volatile_write": {kind: intrinsicHardwareWrite, op: il.OpHardwareWrite},
	"lo":             {kind: intrinsicLo},
	"hi":             {kind: intrinsicHi},
	"sizeof":         {kind: intrinsicSizeofLike},
	"length":         {kind: intrinsicSizeofLike, len: true},
	"sei":            {kind: intrinsicCPU, op: il.OpSei},
	"cli":            {kind: intrinsicCPU, op: il.OpCli},
	"nop":            {kind: intrinsicCPU, op: il.OpNop},
	"brk":            {kind: intrinsicCPU, op: il.OpBrk},
	"pha":            {kind: intrinsicCPU, op: il.OpPha},
	"pla":            {kind: intrinsicCPU, op: il.OpPla},
	"php":            {kind: intrinsicCPU, op: il.OpPhp},
	"plp":            {kind: intrinsicCPU, op: il.OpPlp},
	// barrier has no runtime effect of its own; it only needs to survive
	"barrier": {kind: intrinsicCPU, op: il.OpNop},
}

func (g *Generator) functionReturnType(name string) (il.Type, bool) {
	t, ok := g.funcReturns[name]
	return t, ok
}

// lowerCall dispatches a named intrinsic to its dedicated lowering, or
// lowers everything else to a plain Call instruction (spec.md section
// 4.6).
func (fg *funcGen) lowerCall(n *ast.Call) il.RegisterID {
	id, isIdent := n.Callee.(*ast.Identifier)
	if isIdent {
		if def, isIntrinsic := intrinsics[id.Name]; isIntrinsic {
			return fg.lowerIntrinsic(id.Name, def, n)
		}
	}

	args := make([]il.RegisterID, len(n.Args))
	for i, a := range n.Args {
		args[i] = fg.lowerExpr(a)
	}

	calleeName := ""
	retType := il.TByte

	if isIdent {
		calleeName = id.Name
		if t, ok := fg.g.functionReturnType(calleeName); ok {
			retType = t
		}
	} else {
		fg.diags.Add(diag.Errorf("SEMANTIC-INVALID-CALLEE", n.Span(), "call target must be a named function"))
	}

	result := fg.fn.Registers.Alloc(retType)
	fg.emit(il.Instruction{Op: il.OpCall, Result: &result, Operands: args, Callee: calleeName, Span: n.Span()})

	return result
}

func (fg *funcGen) lowerIntrinsic(name string, def intrinsicDef, n *ast.Call) il.RegisterID {
	switch def.kind {
	case intrinsicCPU:
		fg.emit(il.Instruction{Op: def.op, Span: n.Span()})
		return fg.fn.Registers.Alloc(il.TVoid)

	case intrinsicHardwareRead:
		addr := fg.constAddr(name, n.Args[0])

		t := il.TByte
		if def.wide {
			t = il.TWord
		}

		result := fg.fn.Registers.Alloc(t)
		fg.emit(il.Instruction{Op: il.OpHardwareRead, Result: &result, Addr: &addr, Span: n.Span()})

		return result

	case intrinsicHardwareWrite:
		addr := fg.constAddr(name, n.Args[0])
		value := fg.lowerExpr(n.Args[1])
		fg.emit(il.Instruction{Op: il.OpHardwareWrite, Operands: []il.RegisterID{value}, Addr: &addr, Span: n.Span()})

		return fg.fn.Registers.Alloc(il.TVoid)

	case intrinsicLo:
		return fg.lowerLo(n)

	case intrinsicHi:
		return fg.lowerHi(n)

	case intrinsicSizeofLike:
		size := fg.constSize(n.Args[0], def.len)
		result := fg.fn.Registers.Alloc(il.TByte)
		imm := int64(size)
		fg.emit(il.Instruction{Op: il.OpConst, Result: &result, Imm: &imm, Span: n.Span()})

		return result

	default:
		fg.diags.Add(diag.Errorf(diag.CodeInternalUnhandledOpcode, n.Span(), "unhandled intrinsic %s", name))
		return fg.fn.Registers.Alloc(il.TVoid)
	}
}

// lowerLo truncates a word to its low byte -- there's no dedicated opcode,
// so it reuses Truncate directly.
func (fg *funcGen) lowerLo(n *ast.Call) il.RegisterID {
	word := fg.lowerExpr(n.Args[0])
	result := fg.fn.Registers.Alloc(il.TByte)
	fg.emit(il.Instruction{Op: il.OpTruncate, Result: &result, Operands: []il.RegisterID{word}, Span: n.Span()})

	return result
}

// lowerHi shifts right by 8 then truncates, since there's no dedicated
// high-byte opcode either.
func (fg *funcGen) lowerHi(n *ast.Call) il.RegisterID {
	word := fg.lowerExpr(n.Args[0])

	eight := fg.fn.Registers.Alloc(il.TByte)
	imm := int64(8)
	fg.emit(il.Instruction{Op: il.OpConst, Result: &eight, Imm: &imm})

	shifted := fg.fn.Registers.Alloc(il.TWord)
	fg.emit(il.Instruction{Op: il.OpShr, Result: &shifted, Operands: []il.RegisterID{word, eight}, Span: n.Span()})

	result := fg.fn.Registers.Alloc(il.TByte)
	fg.emit(il.Instruction{Op: il.OpTruncate, Result: &result, Operands: []il.RegisterID{shifted}})

	return result
}

// constAddr resolves a peek/poke address argument to a compile-time
// constant, consulting constant propagation's metadata when the argument
// isn't a literal outright.
func (fg *funcGen) constAddr(intrinsicName string, e ast.Expr) uint16 {
	if lit, ok := e.(*ast.Literal); ok && lit.Kind == ast.LiteralNumber {
		if v, ok := lit.Value.(int64); ok {
			return uint16(v)
		}
	}

	if a, ok := fg.g.meta.Lookup(e); ok && a.ConstantValue != nil && !a.ConstantValue.IsBottom {
		return uint16(a.ConstantValue.Value)
	}

	fg.diags.Add(diag.Errorf("SEMANTIC-NON-CONSTANT-ADDRESS", e.Span(), "%s address must be a compile-time constant", intrinsicName))

	return 0
}

// exprType best-effort resolves an expression's static type, enough to
// answer sizeof/length; anything beyond an identifier or one level of
// indexing is out of reach without a full type checker.
func (fg *funcGen) exprType(e ast.Expr) (il.Type, bool) {
	switch n := e.(type) {
	case *ast.Identifier:
		return fg.localType(n.Name)
	case *ast.Index:
		t, ok := fg.exprType(n.Object)
		if !ok || t.Elem == nil {
			return il.Type{}, false
		}

		return *t.Elem, true
	default:
		return il.Type{}, false
	}
}

func (fg *funcGen) constSize(e ast.Expr, wantLength bool) int {
	t, ok := fg.exprType(e)
	if !ok {
		fg.diags.Add(diag.Errorf("SEMANTIC-UNRESOLVED-TYPE", e.Span(), "cannot resolve a type for sizeof/length operand"))
		return 0
	}

	if wantLength {
		if t.Kind == il.Array && t.Size != nil {
			return *t.Size
		}

		fg.diags.Add(diag.Errorf("SEMANTIC-LENGTH-NON-ARRAY", e.Span(), "length() operand is not a fixed-size array"))

		return 0
	}

	return t.ByteSize()
}
