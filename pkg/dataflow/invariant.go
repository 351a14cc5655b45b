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
package dataflow

import (
	"github.com/sixc-lang/sixc/pkg/ast"
	"github.com/sixc-lang/sixc/pkg/cfg"
)

// MarkLoopInvariant annotates every expression inside loop whose
// variables are never assigned anywhere in the loop's body -- a
// hoisting candidate the code generator or a future optimizer pass could
// lift above the loop header (spec.md section 4.5).
func MarkLoopInvariant(graph *cfg.Graph, loop Loop, meta *ast.Metadata) {
	inBody := make(map[cfg.BlockID]bool, len(loop.Body))
	for _, id := range loop.Body {
		inBody[id] = true
	}

	assigned := assignedNames(graph, inBody)

	for _, id := range loop.Body {
		for _, stmt := range graph.Block(id).Stmts {
			markInvariantStmt(stmt, assigned, meta)
		}
	}
}

func assignedNames(graph *cfg.Graph, inBody map[cfg.BlockID]bool) map[string]bool {
	assigned := make(map[string]bool)

	var walkExpr func(ast.Expr)

	walkExpr = func(e ast.Expr) {
		switch n := e.(type) {
		case *ast.Assignment:
			if id, ok := n.Target.(*ast.Identifier); ok {
				assigned[id.Name] = true
			}

			walkExpr(n.Value)
		case *ast.Binary:
			walkExpr(n.Left)
			walkExpr(n.Right)
		case *ast.Unary:
			walkExpr(n.Operand)
		case *ast.Call:
			for _, a := range n.Args {
				walkExpr(a)
			}
		case *ast.Index:
			walkExpr(n.Object)
			walkExpr(n.Index)
		}
	}

	for id, inLoop := range inBody {
		if !inLoop {
			continue
		}

		block := graph.Block(id)

		if block.ForLoop != nil && block.ForPhase != cfg.ForPhaseNone {
			assigned[block.ForLoop.Var] = true
		}

		for _, stmt := range block.Stmts {
			if s, ok := stmt.(*ast.ExpressionStmt); ok {
				walkExpr(s.Expr)
			}

			if lv, ok := stmt.(*ast.LocalVariable); ok {
				assigned[lv.Name] = true
			}
		}
	}

	return assigned
}

func markInvariantStmt(stmt ast.Stmt, assigned map[string]bool, meta *ast.Metadata) {
	s, ok := stmt.(*ast.ExpressionStmt)
	if !ok {
		return
	}

	markInvariantExpr(s.Expr, assigned, meta)
}

// markInvariantExpr returns whether e is itself loop-invariant (every
// identifier it reaches is unassigned within the loop), annotating every
// subexpression it visits along the way.
func markInvariantExpr(e ast.Expr, assigned map[string]bool, meta *ast.Metadata) bool {
	var invariant bool

	switch n := e.(type) {
	case *ast.Literal:
		invariant = true
	case *ast.Identifier:
		invariant = !assigned[n.Name]
	case *ast.Binary:
		invariant = markInvariantExpr(n.Left, assigned, meta) && markInvariantExpr(n.Right, assigned, meta)
	case *ast.Unary:
		invariant = n.Op != ast.OpAddressOf && markInvariantExpr(n.Operand, assigned, meta)
	case *ast.Index:
		invariant = markInvariantExpr(n.Object, assigned, meta) && markInvariantExpr(n.Index, assigned, meta)
	default:
		// Calls, assignments and member access may have side effects or
		// depend on state this pass doesn't track; never hoist them.
		invariant = false
	}

	if invariant {
		meta.Get(e).LoopInvariant = true
	}

	return invariant
}
