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

// Package dataflow implements the AST-level dataflow analyses of spec.md
// section 4.5: constant propagation, dead-code detection, natural-loop
// analysis and escape analysis combined with 6502 stack-depth computation.
// Every analysis here writes its result into the function's ast.Metadata
// arena rather than returning a parallel tree, so later analyses and the
// code generator can all read the same annotations off the same nodes.
package dataflow

import "github.com/sixc-lang/sixc/pkg/ast"

// constant and bottom construct the two informative lattice points this
// pass computes with (spec.md section 4.5): Top (nil) means "not yet
// seen any value", a non-nil non-bottom value means "exactly this
// constant", Bottom means "provably not a single constant".
func constant(v int64) *ast.ConstantValue { return &ast.ConstantValue{Value: v} }

func bottom() *ast.ConstantValue { return &ast.ConstantValue{IsBottom: true} }

func isConstant(v *ast.ConstantValue) bool { return v != nil && !v.IsBottom }

// ConstantPropagation runs a flow-insensitive sparse constant fold over
// fn's body: every `const` declaration with a foldable initializer seeds
// the environment, every expression is evaluated bottom-up against that
// environment and annotated in meta, and every non-const local assigned
// exactly once with a foldable value is promoted to "effectively const"
// for the next pass to use as if it too were declared const (spec.md
// section 4.5's "Testable: ... the effectively-constant set").
func ConstantPropagation(fn *ast.Function, meta *ast.Metadata) *Result {
	env := make(map[string]*ast.ConstantValue)
	result := &Result{EffectivelyConst: make(map[string]int64), BranchConstant: make(map[ast.NodeID]bool)}

	assignCounts := countAssignments(fn.Body)

	for _, stmt := range fn.Body {
		seedDecl(stmt, env, meta, assignCounts, result)
	}

	walkStmts(fn.Body, env, meta, result)

	return result
}

// Result collects ConstantPropagation's outputs that aren't already
// sitting in per-node Annotations (those are read back via meta
// directly); this is the function-wide summary spec.md section 4.5 asks
// for alongside the per-node map.
type Result struct {
	// EffectivelyConst maps a local variable name to its single,
	// statically-known value.
	EffectivelyConst map[string]int64
	// BranchConstant maps an If/While node id to the statically-known
	// truth of its condition. DoWhile and Switch conditions are folded
	// into meta but not recorded here.
	BranchConstant map[ast.NodeID]bool
}

func seedDecl(
	stmt ast.Stmt, env map[string]*ast.ConstantValue, meta *ast.Metadata,
	assignCounts map[string]int, result *Result,
) {
	lv, ok := stmt.(*ast.LocalVariable)
	if !ok || lv.Initializer == nil {
		return
	}

	v := evalExpr(lv.Initializer, env, meta)
	if !isConstant(v) {
		return
	}

	if lv.IsConst {
		env[lv.Name] = v
		return
	}

	// Not declared const, but if it is assigned nowhere else in the
	// function and its one definition folds to a constant, it behaves
	// like one.
	if assignCounts[lv.Name] == 0 {
		env[lv.Name] = v
		result.EffectivelyConst[lv.Name] = v.Value
	}
}

func countAssignments(stmts []ast.Stmt) map[string]int {
	counts := make(map[string]int)

	var walkExpr func(ast.Expr)

	walkExpr = func(e ast.Expr) {
		switch n := e.(type) {
		case *ast.Assignment:
			if id, ok := n.Target.(*ast.Identifier); ok {
				counts[id.Name]++
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

	var walk func([]ast.Stmt)

	walk = func(stmts []ast.Stmt) {
		for _, stmt := range stmts {
			switch s := stmt.(type) {
			case *ast.ExpressionStmt:
				walkExpr(s.Expr)
			case *ast.If:
				walk(s.Then)
				walk(s.Else)
			case *ast.While:
				walk(s.Body)
			case *ast.DoWhile:
				walk(s.Body)
			case *ast.For:
				walk(s.Body)
			case *ast.Switch:
				for _, c := range s.Cases {
					walk(c.Body)
				}

				walk(s.Default)
			case *ast.Block:
				walk(s.Stmts)
			}
		}
	}

	walk(stmts)

	return counts
}

func walkStmts(stmts []ast.Stmt, env map[string]*ast.ConstantValue, meta *ast.Metadata, result *Result) {
	for _, stmt := range stmts {
		walkStmt(stmt, env, meta, result)
	}
}

func walkStmt(stmt ast.Stmt, env map[string]*ast.ConstantValue, meta *ast.Metadata, result *Result) {
	switch s := stmt.(type) {
	case *ast.ExpressionStmt:
		evalExpr(s.Expr, env, meta)
	case *ast.If:
		annotateBranch(s, s.Cond, env, meta, result)
		walkStmts(s.Then, env, meta, result)
		walkStmts(s.Else, env, meta, result)
	case *ast.While:
		annotateBranch(s, s.Cond, env, meta, result)
		walkStmts(s.Body, env, meta, result)
	case *ast.DoWhile:
		evalExpr(s.Cond, env, meta)
		walkStmts(s.Body, env, meta, result)
	case *ast.For:
		evalExpr(s.Start, env, meta)
		evalExpr(s.End, env, meta)

		if s.Step != nil {
			evalExpr(s.Step, env, meta)
		}

		walkStmts(s.Body, env, meta, result)
	case *ast.Switch:
		evalExpr(s.Value, env, meta)

		for _, c := range s.Cases {
			walkStmts(c.Body, env, meta, result)
		}

		walkStmts(s.Default, env, meta, result)
	case *ast.Return:
		if s.Value != nil {
			evalExpr(s.Value, env, meta)
		}
	case *ast.Block:
		walkStmts(s.Stmts, env, meta, result)
	case *ast.LocalVariable:
		// Top-level declarations were folded in seedDecl; initializers of
		// declarations nested inside a block are not evaluated.
	}
}

func annotateBranch(node ast.Node, cond ast.Expr, env map[string]*ast.ConstantValue, meta *ast.Metadata, result *Result) {
	v := evalExpr(cond, env, meta)
	if !isConstant(v) {
		return
	}

	truth := v.Value != 0
	meta.Get(node).BranchConstant = &truth
	result.BranchConstant[node.ID()] = truth
}

// evalExpr folds e bottom-up against env, writing the result into meta
// and returning it so callers composing larger expressions can fold
// further without a second metadata lookup.
func evalExpr(e ast.Expr, env map[string]*ast.ConstantValue, meta *ast.Metadata) *ast.ConstantValue {
	if e == nil {
		return nil
	}

	var v *ast.ConstantValue

	switch n := e.(type) {
	case *ast.Literal:
		v = evalLiteral(n)
	case *ast.Identifier:
		if known, ok := env[n.Name]; ok {
			v = known
		} else {
			v = bottom()
		}
	case *ast.Binary:
		left := evalExpr(n.Left, env, meta)
		right := evalExpr(n.Right, env, meta)
		v = evalBinary(n.Op, left, right)

		if isConstant(v) {
			meta.Get(n).ConstantFoldable = true
		}
	case *ast.Unary:
		operand := evalExpr(n.Operand, env, meta)
		v = evalUnary(n.Op, operand)

		if isConstant(v) {
			meta.Get(n).ConstantFoldable = true
		}
	case *ast.Call:
		for _, a := range n.Args {
			evalExpr(a, env, meta)
		}

		v = bottom()
	case *ast.Index:
		evalExpr(n.Object, env, meta)
		evalExpr(n.Index, env, meta)

		v = bottom()
	case *ast.Assignment:
		v = evalExpr(n.Value, env, meta)
	case *ast.Member:
		evalExpr(n.Object, env, meta)

		v = bottom()
	default:
		v = bottom()
	}

	if v != nil {
		meta.Get(e).ConstantValue = v
	}

	return v
}

func evalLiteral(lit *ast.Literal) *ast.ConstantValue {
	switch lit.Kind {
	case ast.LiteralNumber:
		if n, ok := lit.Value.(int64); ok {
			return constant(n)
		}
	case ast.LiteralBool:
		if b, ok := lit.Value.(bool); ok {
			if b {
				return constant(1)
			}

			return constant(0)
		}
	}

	return bottom()
}

func evalBinary(op ast.BinaryOp, left, right *ast.ConstantValue) *ast.ConstantValue {
	if !isConstant(left) || !isConstant(right) {
		return bottom()
	}

	l, r := left.Value, right.Value

	switch op {
	case ast.OpAdd:
		return constant(l + r)
	case ast.OpSub:
		return constant(l - r)
	case ast.OpMul:
		return constant(l * r)
	case ast.OpDiv:
		if r == 0 {
			return bottom()
		}

		return constant(l / r)
	case ast.OpMod:
		if r == 0 {
			return bottom()
		}

		return constant(l % r)
	case ast.OpAnd:
		return constant(l & r)
	case ast.OpOr:
		return constant(l | r)
	case ast.OpXor:
		return constant(l ^ r)
	case ast.OpShl:
		return constant(l << uint(r))
	case ast.OpShr:
		return constant(l >> uint(r))
	case ast.OpEq:
		return boolConstant(l == r)
	case ast.OpNe:
		return boolConstant(l != r)
	case ast.OpLt:
		return boolConstant(l < r)
	case ast.OpLe:
		return boolConstant(l <= r)
	case ast.OpGt:
		return boolConstant(l > r)
	case ast.OpGe:
		return boolConstant(l >= r)
	case ast.OpLogicalAnd:
		return boolConstant(l != 0 && r != 0)
	case ast.OpLogicalOr:
		return boolConstant(l != 0 || r != 0)
	default:
		return bottom()
	}
}

func evalUnary(op ast.UnaryOp, operand *ast.ConstantValue) *ast.ConstantValue {
	if op == ast.OpAddressOf {
		// Taking an address is never itself a constant value; it also
		// marks its operand as escaping, which escape.go handles.
		return bottom()
	}

	if !isConstant(operand) {
		return bottom()
	}

	switch op {
	case ast.OpNeg:
		return constant(-operand.Value)
	case ast.OpBitNot:
		return constant(^operand.Value)
	case ast.OpLogicalNot:
		return boolConstant(operand.Value == 0)
	default:
		return bottom()
	}
}

func boolConstant(b bool) *ast.ConstantValue {
	if b {
		return constant(1)
	}

	return constant(0)
}
