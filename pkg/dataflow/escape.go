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
	"fmt"

	"github.com/sixc-lang/sixc/pkg/ast"
)

// EscapeAnalysis walks fn's body looking for the four ways a local
// variable can outlive its stack frame (spec.md section 4.5):
// its address is taken, it is passed to another function, it is
// returned, or it is assigned into a global. Every global is always
// marked escaping regardless of use, since another function can observe
// it at any time. Results are written onto each local/parameter
// Declaration node's Annotation in meta, keyed by variable name through
// declByName.
func EscapeAnalysis(fn *ast.Function, globals map[string]bool, declByName map[string]ast.Node, meta *ast.Metadata) {
	for name := range globals {
		if decl, ok := declByName[name]; ok {
			escapes(meta, decl, "global variable, always escapes")
		}
	}

	for _, stmt := range fn.Body {
		walkEscapeStmt(stmt, globals, declByName, meta, false)
	}
}

func walkEscapeStmt(stmt ast.Stmt, globals map[string]bool, declByName map[string]ast.Node, meta *ast.Metadata, inReturn bool) {
	switch s := stmt.(type) {
	case *ast.ExpressionStmt:
		walkEscapeExpr(s.Expr, globals, declByName, meta, false)
	case *ast.Return:
		if s.Value != nil {
			walkEscapeExpr(s.Value, globals, declByName, meta, true)
		}
	case *ast.If:
		walkEscapeExpr(s.Cond, globals, declByName, meta, false)

		for _, b := range s.Then {
			walkEscapeStmt(b, globals, declByName, meta, inReturn)
		}

		for _, b := range s.Else {
			walkEscapeStmt(b, globals, declByName, meta, inReturn)
		}
	case *ast.While:
		walkEscapeExpr(s.Cond, globals, declByName, meta, false)

		for _, b := range s.Body {
			walkEscapeStmt(b, globals, declByName, meta, inReturn)
		}
	case *ast.DoWhile:
		for _, b := range s.Body {
			walkEscapeStmt(b, globals, declByName, meta, inReturn)
		}

		walkEscapeExpr(s.Cond, globals, declByName, meta, false)
	case *ast.For:
		for _, b := range s.Body {
			walkEscapeStmt(b, globals, declByName, meta, inReturn)
		}
	case *ast.Switch:
		walkEscapeExpr(s.Value, globals, declByName, meta, false)

		for _, c := range s.Cases {
			for _, b := range c.Body {
				walkEscapeStmt(b, globals, declByName, meta, inReturn)
			}
		}

		for _, b := range s.Default {
			walkEscapeStmt(b, globals, declByName, meta, inReturn)
		}
	case *ast.Block:
		for _, b := range s.Stmts {
			walkEscapeStmt(b, globals, declByName, meta, inReturn)
		}
	case *ast.LocalVariable:
		if s.Initializer != nil {
			walkEscapeExpr(s.Initializer, globals, declByName, meta, false)
		}
	}
}

func walkEscapeExpr(e ast.Expr, globals map[string]bool, declByName map[string]ast.Node, meta *ast.Metadata, returned bool) {
	switch n := e.(type) {
	case *ast.Identifier:
		if returned {
			markEscape(declByName, meta, n.Name, "returned from its defining function")
		}
	case *ast.Unary:
		if n.Op == ast.OpAddressOf {
			if id, ok := n.Operand.(*ast.Identifier); ok {
				markEscape(declByName, meta, id.Name, "address taken")
			}
		}

		walkEscapeExpr(n.Operand, globals, declByName, meta, false)
	case *ast.Binary:
		walkEscapeExpr(n.Left, globals, declByName, meta, false)
		walkEscapeExpr(n.Right, globals, declByName, meta, false)
	case *ast.Call:
		for _, a := range n.Args {
			if id, ok := a.(*ast.Identifier); ok {
				markEscape(declByName, meta, id.Name, "passed to a function call")
			}

			walkEscapeExpr(a, globals, declByName, meta, false)
		}
	case *ast.Index:
		walkEscapeExpr(n.Object, globals, declByName, meta, false)
		walkEscapeExpr(n.Index, globals, declByName, meta, false)
	case *ast.Assignment:
		if target, ok := n.Target.(*ast.Identifier); ok && globals[target.Name] {
			if id, ok := n.Value.(*ast.Identifier); ok {
				markEscape(declByName, meta, id.Name, "stored into global variable "+target.Name)
			}
		}

		walkEscapeExpr(n.Value, globals, declByName, meta, false)
	case *ast.Member:
		walkEscapeExpr(n.Object, globals, declByName, meta, false)
	}
}

func markEscape(declByName map[string]ast.Node, meta *ast.Metadata, name, reason string) {
	decl, ok := declByName[name]
	if !ok {
		return
	}

	escapes(meta, decl, reason)
}

func escapes(meta *ast.Metadata, decl ast.Node, reason string) {
	ann := meta.Get(decl)
	if ann.EscapeEscapes {
		ann.EscapeReason = fmt.Sprintf("%s; %s", ann.EscapeReason, reason)
		return
	}

	ann.EscapeEscapes = true
	ann.EscapeReason = reason
}
