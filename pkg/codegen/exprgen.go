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
	"github.com/sixc-lang/sixc/pkg/source"
)

// binaryOpcodes maps every non-short-circuiting source operator to its IL
// opcode.
var binaryOpcodes = map[ast.BinaryOp]il.Opcode{
	ast.OpAdd: il.OpAdd,
	ast.OpSub: il.OpSub,
	ast.OpMul: il.OpMul,
	ast.OpDiv: il.OpDiv,
	ast.OpMod: il.OpMod,
	ast.OpAnd: il.OpAnd,
	ast.OpOr:  il.OpOr,
	ast.OpXor: il.OpXor,
	ast.OpShl: il.OpShl,
	ast.OpShr: il.OpShr,
	ast.OpEq:  il.OpCmpEq,
	ast.OpNe:  il.OpCmpNe,
	ast.OpLt:  il.OpCmpLt,
	ast.OpLe:  il.OpCmpLe,
	ast.OpGt:  il.OpCmpGt,
	ast.OpGe:  il.OpCmpGe,
}

// compoundOpcodes maps a compound-assignment operator to the binary
// opcode its desugaring applies.
var compoundOpcodes = map[ast.AssignOp]il.Opcode{
	ast.AssignAdd: il.OpAdd,
	ast.AssignSub: il.OpSub,
	ast.AssignMul: il.OpMul,
	ast.AssignDiv: il.OpDiv,
	ast.AssignAnd: il.OpAnd,
	ast.AssignOr:  il.OpOr,
	ast.AssignXor: il.OpXor,
	ast.AssignShl: il.OpShl,
	ast.AssignShr: il.OpShr,
}

func isComparison(op il.Opcode) bool {
	switch op {
	case il.OpCmpEq, il.OpCmpNe, il.OpCmpLt, il.OpCmpLe, il.OpCmpGt, il.OpCmpGe:
		return true
	default:
		return false
	}
}

// lowerExpr lowers one expression bottom-up; every expression evaluates to
// a virtual register (spec.md section 4.6).
func (fg *funcGen) lowerExpr(e ast.Expr) il.RegisterID {
	switch n := e.(type) {
	case *ast.Literal:
		return fg.lowerLiteral(n)
	case *ast.Identifier:
		return fg.lowerIdentifier(n)
	case *ast.Binary:
		return fg.lowerBinary(n)
	case *ast.Unary:
		return fg.lowerUnary(n)
	case *ast.Call:
		return fg.lowerCall(n)
	case *ast.Index:
		return fg.lowerIndex(n)
	case *ast.Assignment:
		return fg.lowerAssignment(n)
	case *ast.Member:
		return fg.lowerMember(n)
	default:
		fg.diags.Add(diag.Errorf(diag.CodeInternalUnhandledOpcode, e.Span(), "unhandled expression kind %s", e.Kind()))
		return fg.zero(il.TByte, e.Span())
	}
}

func (fg *funcGen) zero(t il.Type, span source.Span) il.RegisterID {
	reg := fg.fn.Registers.Alloc(t)
	imm := int64(0)
	fg.emit(il.Instruction{Op: il.OpConst, Result: &reg, Imm: &imm, Span: span})

	return reg
}

func (fg *funcGen) lowerLiteral(n *ast.Literal) il.RegisterID {
	t := il.TByte
	var imm int64

	switch n.Kind {
	case ast.LiteralBool:
		t = il.TBool

		if v, _ := n.Value.(bool); v {
			imm = 1
		}
	case ast.LiteralNumber:
		t = il.TWord

		if v, ok := n.Value.(int64); ok {
			imm = v
			if v >= 0 && v <= 0xff {
				t = il.TByte
			}
		}
	case ast.LiteralString:
		// String literals have no scalar register representation on this
		// target; they only ever appear as data-segment initializers,
		// which the code generator's global lowering handles directly
		// from the AST rather than through this path.
		t = il.TWord
	}

	reg := fg.fn.Registers.Alloc(t)
	fg.emit(il.Instruction{Op: il.OpConst, Result: &reg, Imm: &imm, Span: n.Span()})

	return reg
}

func (fg *funcGen) lowerIdentifier(n *ast.Identifier) il.RegisterID {
	t, ok := fg.localType(n.Name)
	if !ok {
		t = il.TByte
	}

	return fg.loadVar(n.Name, t, n.Span())
}

func (fg *funcGen) lowerBinary(n *ast.Binary) il.RegisterID {
	if n.Op == ast.OpLogicalAnd || n.Op == ast.OpLogicalOr {
		return fg.lowerShortCircuit(n)
	}

	left := fg.lowerExpr(n.Left)
	right := fg.lowerExpr(n.Right)

	op, ok := binaryOpcodes[n.Op]
	if !ok {
		fg.diags.Add(diag.Errorf(diag.CodeInternalUnhandledOpcode, n.Span(), "unhandled binary operator"))
		op = il.OpAdd
	}

	t := fg.fn.Registers.Get(left).Type
	if isComparison(op) {
		t = il.TBool
	}

	result := fg.fn.Registers.Alloc(t)
	fg.emit(il.Instruction{Op: op, Result: &result, Operands: []il.RegisterID{left, right}, Span: n.Span()})

	return result
}

// lowerShortCircuit evaluates the left operand, skips the right operand
// when its value already decides the result, and otherwise evaluates the
// right operand -- merged through a fabricated local so the result is a
// normal load, not a bespoke pre-SSA phi.
func (fg *funcGen) lowerShortCircuit(n *ast.Binary) il.RegisterID {
	left := fg.lowerExpr(n.Left)
	tmp := fg.tempVar(il.TBool)
	fg.emit(il.Instruction{Op: il.OpStoreVar, Var: tmp, Operands: []il.RegisterID{left}, Span: n.Span()})

	rhsID := fg.newBlock("logic.rhs")
	mergeID := fg.newBlock("logic.merge")
	pred := fg.block

	branch := il.Instruction{Op: il.OpBranch, Operands: []il.RegisterID{left}, HasThen: true, HasElse: true, Span: n.Span()}
	if n.Op == ast.OpLogicalOr {
		branch.Then, branch.Else = mergeID, rhsID
	} else {
		branch.Then, branch.Else = rhsID, mergeID
	}

	fg.emit(branch)
	fg.link(pred, rhsID)
	fg.link(pred, mergeID)

	fg.switchTo(rhsID)
	right := fg.lowerExpr(n.Right)
	fg.emit(il.Instruction{Op: il.OpStoreVar, Var: tmp, Operands: []il.RegisterID{right}})
	fg.emit(il.Instruction{Op: il.OpJump, Then: mergeID, HasThen: true})
	fg.link(rhsID, mergeID)

	fg.switchTo(mergeID)

	return fg.loadVar(tmp, il.TBool, n.Span())
}

func (fg *funcGen) lowerUnary(n *ast.Unary) il.RegisterID {
	if n.Op == ast.OpAddressOf {
		return fg.lowerAddressOf(n)
	}

	operand := fg.lowerExpr(n.Operand)

	var op il.Opcode

	t := fg.fn.Registers.Get(operand).Type

	switch n.Op {
	case ast.OpNeg:
		op = il.OpNeg
	case ast.OpBitNot:
		op = il.OpBitNot
	case ast.OpLogicalNot:
		op = il.OpLogicalNot
		t = il.TBool
	}

	result := fg.fn.Registers.Alloc(t)
	fg.emit(il.Instruction{Op: op, Result: &result, Operands: []il.RegisterID{operand}, Span: n.Span()})

	return result
}

// lowerAddressOf has no dedicated IL opcode to lower into: frame addresses
// aren't assigned until pkg/frame runs, after IL generation, so the
// operand's address can't be computed here. Instead it emits the same
// OpLoadVar a plain reference would, but typed Pointer-to-element; the
// code generator recognizes a Pointer-typed LoadVar result as "load this
// variable's frame address", not its value.
func (fg *funcGen) lowerAddressOf(n *ast.Unary) il.RegisterID {
	id, ok := n.Operand.(*ast.Identifier)

	name := ""
	elemType := il.TByte

	if ok {
		name = id.Name
		if t, found := fg.localType(name); found {
			elemType = t
		}
	} else {
		fg.diags.Add(diag.Errorf("SEMANTIC-INVALID-ADDRESSOF", n.Span(), "address-of operand must be an identifier"))
	}

	result := fg.fn.Registers.Alloc(il.NewPointer(elemType))
	fg.emit(il.Instruction{Op: il.OpLoadVar, Var: name, Result: &result, Span: n.Span()})

	return result
}

func (fg *funcGen) lowerIndex(n *ast.Index) il.RegisterID {
	name, elemType, ok := fg.indexTarget(n.Object)
	if !ok {
		fg.diags.Add(diag.Errorf("SEMANTIC-INVALID-INDEX-TARGET", n.Span(), "indexed expression must be an identifier"))
	}

	idx := fg.lowerExpr(n.Index)
	result := fg.fn.Registers.Alloc(elemType)
	fg.emit(il.Instruction{Op: il.OpLoadArray, Var: name, Result: &result, Operands: []il.RegisterID{idx}, Span: n.Span()})

	return result
}

func (fg *funcGen) indexTarget(object ast.Expr) (name string, elemType il.Type, ok bool) {
	elemType = il.TByte

	id, isIdent := object.(*ast.Identifier)
	if !isIdent {
		return "", elemType, false
	}

	name = id.Name
	if t, found := fg.localType(name); found && t.Elem != nil {
		elemType = *t.Elem
	}

	return name, elemType, true
}

func (fg *funcGen) lowerAssignment(n *ast.Assignment) il.RegisterID {
	switch target := n.Target.(type) {
	case *ast.Identifier:
		return fg.lowerIdentifierAssignment(target, n)
	case *ast.Index:
		return fg.lowerIndexAssignment(target, n)
	default:
		fg.diags.Add(diag.Errorf("SEMANTIC-INVALID-ASSIGNMENT-TARGET", n.Span(), "assignment target must be an identifier or index expression"))
		return fg.lowerExpr(n.Value)
	}
}

func (fg *funcGen) lowerIdentifierAssignment(target *ast.Identifier, n *ast.Assignment) il.RegisterID {
	value := fg.lowerExpr(n.Value)

	if n.Op != ast.AssignPlain {
		t, _ := fg.localType(target.Name)
		current := fg.loadVar(target.Name, t, n.Span())
		result := fg.fn.Registers.Alloc(t)
		fg.emit(il.Instruction{Op: compoundOpcodes[n.Op], Result: &result, Operands: []il.RegisterID{current, value}, Span: n.Span()})
		value = result
	}

	fg.emit(il.Instruction{Op: il.OpStoreVar, Var: target.Name, Operands: []il.RegisterID{value}, Span: n.Span()})

	return value
}

func (fg *funcGen) lowerIndexAssignment(target *ast.Index, n *ast.Assignment) il.RegisterID {
	name, elemType, ok := fg.indexTarget(target.Object)
	if !ok {
		fg.diags.Add(diag.Errorf("SEMANTIC-INVALID-ASSIGNMENT-TARGET", n.Span(), "indexed assignment target must be an identifier"))
	}

	idx := fg.lowerExpr(target.Index)
	value := fg.lowerExpr(n.Value)

	if n.Op != ast.AssignPlain {
		current := fg.fn.Registers.Alloc(elemType)
		fg.emit(il.Instruction{Op: il.OpLoadArray, Var: name, Result: &current, Operands: []il.RegisterID{idx}, Span: n.Span()})

		result := fg.fn.Registers.Alloc(elemType)
		fg.emit(il.Instruction{Op: compoundOpcodes[n.Op], Result: &result, Operands: []il.RegisterID{current, value}, Span: n.Span()})
		value = result
	}

	fg.emit(il.Instruction{Op: il.OpStoreArray, Var: name, Operands: []il.RegisterID{idx, value}, Span: n.Span()})

	return value
}

// lowerMember reports unsupported struct field access rather than
// aborting generation: this target's type system (ast.TypeRef) has no
// struct layout to resolve a field against.
func (fg *funcGen) lowerMember(n *ast.Member) il.RegisterID {
	fg.diags.Add(diag.Warnf("SEMANTIC-UNSUPPORTED-MEMBER-ACCESS", n.Span(), "struct field access %q is not supported by this target", n.Field))

	return fg.zero(il.TByte, n.Span())
}
