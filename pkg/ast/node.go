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

// Package ast models the tagged-variant declaration/statement/expression
// tree consumed from the (external) parser.  Every node carries a source
// span and a stable NodeID; per-node analysis results live in a side table
// (Metadata, in metadata.go) keyed by that ID rather than in a heterogeneous
// map owned by the node itself, so each analysis's output is a typed
// struct-of-optionals instead of an interface{} grab bag.
package ast

import "github.com/sixc-lang/sixc/pkg/source"

// NodeID uniquely identifies a node within one Circuit (the whole program's
// AST).  IDs are assigned by the parser/builder in construction order and
// never reused.
type NodeID uint32

// Kind tags every Node so callers can dispatch with an exhaustive switch
// instead of a type assertion chain (spec.md section 9: "Runtime type tests
// via instanceof: replace with tagged variants and exhaustive pattern
// matching on the kind field").
type Kind uint8

// Declaration kinds.
const (
	KindModule Kind = iota
	KindImport
	KindVariable
	KindFunction
)

// Statement kinds.
const (
	KindExpressionStmt Kind = iota + 16
	KindIf
	KindWhile
	KindDoWhile
	KindFor
	KindSwitch
	KindReturn
	KindBreak
	KindContinue
	KindBlock
	KindLocalVariable
)

// Expression kinds.
const (
	KindLiteral Kind = iota + 32
	KindIdentifier
	KindBinary
	KindUnary
	KindCall
	KindIndex
	KindAssignment
	KindMember
)

// String gives a human-readable tag, used in diagnostics and the -Render
// dumps.
func (k Kind) String() string {
	switch k {
	case KindModule:
		return "Module"
	case KindImport:
		return "Import"
	case KindVariable:
		return "Variable"
	case KindFunction:
		return "Function"
	case KindExpressionStmt:
		return "ExpressionStmt"
	case KindIf:
		return "If"
	case KindWhile:
		return "While"
	case KindDoWhile:
		return "DoWhile"
	case KindFor:
		return "For"
	case KindSwitch:
		return "Switch"
	case KindReturn:
		return "Return"
	case KindBreak:
		return "Break"
	case KindContinue:
		return "Continue"
	case KindBlock:
		return "Block"
	case KindLocalVariable:
		return "LocalVariable"
	case KindLiteral:
		return "Literal"
	case KindIdentifier:
		return "Identifier"
	case KindBinary:
		return "Binary"
	case KindUnary:
		return "Unary"
	case KindCall:
		return "Call"
	case KindIndex:
		return "Index"
	case KindAssignment:
		return "Assignment"
	case KindMember:
		return "Member"
	default:
		return "Unknown"
	}
}

// Node is implemented by every declaration, statement and expression. It
// deliberately carries no parent pointer (spec.md section 9's open question
// about dead-store detection notes the source AST walker lacks one; this
// port does not silently add one either — see pkg/dataflow's package
// comment).
type Node interface {
	// ID returns this node's stable identity, used to key the Metadata side
	// table.
	ID() NodeID
	// Kind returns the tag used for exhaustive dispatch.
	Kind() Kind
	// Span returns the node's extent in the original source.
	Span() source.Span
}

// base is embedded by every concrete node to provide ID/Span for free.
type base struct {
	id   NodeID
	span source.Span
}

// ID implements Node.
func (b base) ID() NodeID { return b.id }

// Span implements Node.
func (b base) Span() source.Span { return b.span }

// idGen assigns NodeIDs in construction order; one idGen is shared across a
// single Circuit's builder so IDs are unique within that program.
type idGen struct {
	next NodeID
}

func (g *idGen) fresh() NodeID {
	id := g.next
	g.next++

	return id
}
