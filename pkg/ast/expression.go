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
package ast

import "github.com/sixc-lang/sixc/pkg/source"

// Expr is implemented by every expression kind.
type Expr interface {
	Node
	expression()
}

// LiteralKind tags which Go type backs a Literal's Value.
type LiteralKind uint8

// The three literal value kinds the source language supports.
const (
	LiteralNumber LiteralKind = iota
	LiteralString
	LiteralBool
)

// Literal is a constant written directly in the source.
type Literal struct {
	base
	Kind  LiteralKind
	Value any // int64, string, or bool depending on Kind
}

func (*Literal) expression() {}

// Kind implements Node.
func (*Literal) Kind() Kind { return KindLiteral }

// Identifier references a named variable, constant or function.
type Identifier struct {
	base
	Name string
}

func (*Identifier) expression() {}

// Kind implements Node.
func (*Identifier) Kind() Kind { return KindIdentifier }

// BinaryOp enumerates the binary operators.
type BinaryOp uint8

// Arithmetic, bitwise and comparison binary operators.
const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpLogicalAnd
	OpLogicalOr
)

// Binary is a two-operand expression.
type Binary struct {
	base
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (*Binary) expression() {}

// Kind implements Node.
func (*Binary) Kind() Kind { return KindBinary }

// UnaryOp enumerates the unary operators.
type UnaryOp uint8

// The unary operators: arithmetic negation, bitwise complement, logical
// negation, and address-of (which the escape analysis treats specially).
const (
	OpNeg UnaryOp = iota
	OpBitNot
	OpLogicalNot
	OpAddressOf
)

// Unary is a single-operand expression.
type Unary struct {
	base
	Op      UnaryOp
	Operand Expr
}

func (*Unary) expression() {}

// Kind implements Node.
func (*Unary) Kind() Kind { return KindUnary }

// Call invokes a named function or intrinsic with arguments.  Whether
// Callee resolves to a user function or one of the builtin intrinsics
// (spec.md section 4.6) is decided by the symbol table, not by this node.
type Call struct {
	base
	Callee Expr
	Args   []Expr
}

func (*Call) expression() {}

// Kind implements Node.
func (*Call) Kind() Kind { return KindCall }

// Index accesses an array element: object[index].
type Index struct {
	base
	Object Expr
	Index  Expr
}

func (*Index) expression() {}

// Kind implements Node.
func (*Index) Kind() Kind { return KindIndex }

// AssignOp enumerates plain and compound assignment operators.
type AssignOp uint8

// Plain and compound assignment operators.
const (
	AssignPlain AssignOp = iota
	AssignAdd
	AssignSub
	AssignMul
	AssignDiv
	AssignAnd
	AssignOr
	AssignXor
	AssignShl
	AssignShr
)

// Assignment writes Value into Target, which must be an Identifier or
// Index expression (spec.md section 4.6).
type Assignment struct {
	base
	Target Expr
	Op     AssignOp
	Value  Expr
}

func (*Assignment) expression() {}

// Kind implements Node.
func (*Assignment) Kind() Kind { return KindAssignment }

// Member accesses a field of a struct-typed object.
type Member struct {
	base
	Object Expr
	Field  string
}

func (*Member) expression() {}

// Kind implements Node.
func (*Member) Kind() Kind { return KindMember }

// --- constructors -----------------------------------------------------

// NewLiteral constructs a Literal.
func NewLiteral(gen *IDGen, span source.Span, kind LiteralKind, value any) *Literal {
	return &Literal{base{gen.fresh(), span}, kind, value}
}

// NewIdentifier constructs an Identifier.
func NewIdentifier(gen *IDGen, span source.Span, name string) *Identifier {
	return &Identifier{base{gen.fresh(), span}, name}
}

// NewBinary constructs a Binary.
func NewBinary(gen *IDGen, span source.Span, op BinaryOp, left, right Expr) *Binary {
	return &Binary{base{gen.fresh(), span}, op, left, right}
}

// NewUnary constructs a Unary.
func NewUnary(gen *IDGen, span source.Span, op UnaryOp, operand Expr) *Unary {
	return &Unary{base{gen.fresh(), span}, op, operand}
}

// NewCall constructs a Call.
func NewCall(gen *IDGen, span source.Span, callee Expr, args []Expr) *Call {
	return &Call{base{gen.fresh(), span}, callee, args}
}

// NewIndex constructs an Index.
func NewIndex(gen *IDGen, span source.Span, object, index Expr) *Index {
	return &Index{base{gen.fresh(), span}, object, index}
}

// NewAssignment constructs an Assignment.
func NewAssignment(gen *IDGen, span source.Span, target Expr, op AssignOp, value Expr) *Assignment {
	return &Assignment{base{gen.fresh(), span}, target, op, value}
}

// NewMember constructs a Member.
func NewMember(gen *IDGen, span source.Span, object Expr, field string) *Member {
	return &Member{base{gen.fresh(), span}, object, field}
}
