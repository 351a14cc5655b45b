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
	"fmt"

	"github.com/sixc-lang/sixc/pkg/ast"
	"github.com/sixc-lang/sixc/pkg/diag"
	"github.com/sixc-lang/sixc/pkg/il"
	"github.com/sixc-lang/sixc/pkg/source"
)

// loopTargets is the break/continue destination pair for one enclosing
// loop, mirroring pkg/cfg's builder.
type loopTargets struct {
	breakTo    il.BlockID
	continueTo il.BlockID
}

// funcGen threads the "current block" pointer explicitly through one
// function's lowering, the same discipline pkg/cfg's builder uses for the
// AST-level CFG.
type funcGen struct {
	g     *Generator
	fn    *il.Function
	block il.BlockID
	loops []loopTargets
	diags diag.List
	seq   int
}

func (fg *funcGen) cur() *il.BasicBlock {
	return fg.fn.Block(fg.block)
}

func (fg *funcGen) switchTo(id il.BlockID) {
	fg.block = id
}

func (fg *funcGen) link(from, to il.BlockID) {
	fg.fn.LinkTo(from, to)
}

func (fg *funcGen) label(prefix string) string {
	fg.seq++
	return fmt.Sprintf("%s.%d", prefix, fg.seq)
}

func (fg *funcGen) newBlock(prefix string) il.BlockID {
	return fg.fn.NewBlock(fg.label(prefix))
}

// emit appends an instruction to the current block, minting its id.
func (fg *funcGen) emit(in il.Instruction) {
	in.ID = fg.fn.NextInstructionID()
	fg.cur().Append(in)
}

// tempVar fabricates a synthetic local variable for a value that only
// exists to merge control flow (short-circuit booleans). It is a plain
// LocalVariable from pkg/ssa's point of view, so mem2reg promotes it to a
// real phi the same as any source-level local.
func (fg *funcGen) tempVar(t il.Type) string {
	fg.seq++
	name := fmt.Sprintf("$t%d", fg.seq)
	fg.fn.LocalVariables[name] = t

	return name
}

// loadVar emits an OpLoadVar for a named variable of known type.
func (fg *funcGen) loadVar(name string, t il.Type, span source.Span) il.RegisterID {
	reg := fg.fn.Registers.Alloc(t)
	fg.emit(il.Instruction{Op: il.OpLoadVar, Var: name, Result: &reg, Span: span})

	return reg
}

// localType resolves a name to its IL type: locals, then params, then
// module globals.
func (fg *funcGen) localType(name string) (il.Type, bool) {
	if t, ok := fg.fn.LocalVariables[name]; ok {
		return t, true
	}

	for _, p := range fg.fn.Params {
		if p.Name == name {
			return p.Type, true
		}
	}

	if t, ok := fg.g.globals[name]; ok {
		return t, true
	}

	return il.Type{}, false
}

// walkStmts lowers a statement sequence into the current block, creating
// new blocks at structural boundaries. It stops at the first statement
// following one that sealed the block: pkg/dataflow's dead-code pass has
// already reported those as unreachable earlier in the pipeline.
func (fg *funcGen) walkStmts(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		if fg.cur().Sealed() {
			return
		}

		fg.walkStmt(stmt)
	}
}

func (fg *funcGen) walkStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.ExpressionStmt:
		fg.lowerExpr(s.Expr)
	case *ast.LocalVariable:
		fg.walkLocalVariable(s)
	case *ast.Return:
		fg.walkReturn(s)
	case *ast.Break:
		fg.walkBreak(s)
	case *ast.Continue:
		fg.walkContinue(s)
	case *ast.Block:
		fg.walkStmts(s.Stmts)
	case *ast.If:
		fg.walkIf(s)
	case *ast.While:
		fg.walkWhile(s)
	case *ast.DoWhile:
		fg.walkDoWhile(s)
	case *ast.For:
		fg.walkFor(s)
	case *ast.Switch:
		fg.walkSwitch(s)
	default:
		fg.diags.Add(diag.Errorf(diag.CodeInternalUnhandledOpcode, stmt.Span(), "unhandled statement kind %s", stmt.Kind()))
	}
}

func (fg *funcGen) walkLocalVariable(s *ast.LocalVariable) {
	t := typeOrDefault(s.TypeAnnotation)
	fg.fn.LocalVariables[s.Name] = t

	if s.Initializer == nil {
		return
	}

	val := fg.lowerExpr(s.Initializer)
	fg.emit(il.Instruction{Op: il.OpStoreVar, Var: s.Name, Operands: []il.RegisterID{val}, Span: s.Span()})
}

func (fg *funcGen) walkReturn(s *ast.Return) {
	in := il.Instruction{Op: il.OpReturn, Span: s.Span()}

	if s.Value != nil {
		in.Operands = []il.RegisterID{fg.lowerExpr(s.Value)}
	}

	fg.emit(in)
}

func (fg *funcGen) walkBreak(s *ast.Break) {
	if len(fg.loops) == 0 {
		fg.diags.Add(diag.Errorf("SEMANTIC-BREAK-OUTSIDE-LOOP", s.Span(), "break outside loop"))
		return
	}

	target := fg.loops[len(fg.loops)-1].breakTo
	fg.emit(il.Instruction{Op: il.OpJump, Then: target, HasThen: true, Span: s.Span()})
	fg.link(fg.block, target)
}

func (fg *funcGen) walkContinue(s *ast.Continue) {
	if len(fg.loops) == 0 {
		fg.diags.Add(diag.Errorf("SEMANTIC-CONTINUE-OUTSIDE-LOOP", s.Span(), "continue outside loop"))
		return
	}

	target := fg.loops[len(fg.loops)-1].continueTo
	fg.emit(il.Instruction{Op: il.OpJump, Then: target, HasThen: true, Span: s.Span()})
	fg.link(fg.block, target)
}

// walkIf lowers an If the same way pkg/cfg's builder shapes the AST-level
// CFG: then/else?/merge blocks, a Branch terminating the predecessor, and
// an unconditional jump to merge from each arm that doesn't itself
// terminate.
func (fg *funcGen) walkIf(s *ast.If) {
	cond := fg.lowerExpr(s.Cond)

	thenID := fg.newBlock("if.then")
	mergeID := fg.newBlock("if.merge")

	var elseID il.BlockID

	hasElse := s.Else != nil
	if hasElse {
		elseID = fg.newBlock("if.else")
	} else {
		elseID = mergeID
	}

	pred := fg.block
	fg.emit(il.Instruction{
		Op: il.OpBranch, Operands: []il.RegisterID{cond},
		Then: thenID, Else: elseID, HasThen: true, HasElse: true, Span: s.Span(),
	})
	fg.link(pred, thenID)
	fg.link(pred, elseID)

	fg.switchTo(thenID)
	fg.walkStmts(s.Then)

	if !fg.cur().Sealed() {
		fg.emit(il.Instruction{Op: il.OpJump, Then: mergeID, HasThen: true})
		fg.link(fg.block, mergeID)
	}

	if hasElse {
		fg.switchTo(elseID)
		fg.walkStmts(s.Else)

		if !fg.cur().Sealed() {
			fg.emit(il.Instruction{Op: il.OpJump, Then: mergeID, HasThen: true})
			fg.link(fg.block, mergeID)
		}
	}

	fg.switchTo(mergeID)
}

func (fg *funcGen) walkWhile(s *ast.While) {
	headerID := fg.newBlock("while.header")
	bodyID := fg.newBlock("while.body")
	exitID := fg.newBlock("while.exit")

	fg.emit(il.Instruction{Op: il.OpJump, Then: headerID, HasThen: true})
	fg.link(fg.block, headerID)

	fg.switchTo(headerID)
	cond := fg.lowerExpr(s.Cond)
	fg.emit(il.Instruction{
		Op: il.OpBranch, Operands: []il.RegisterID{cond},
		Then: bodyID, Else: exitID, HasThen: true, HasElse: true, Span: s.Span(),
	})
	fg.link(headerID, bodyID)
	fg.link(headerID, exitID)

	fg.loops = append(fg.loops, loopTargets{breakTo: exitID, continueTo: headerID})
	fg.switchTo(bodyID)
	fg.walkStmts(s.Body)
	fg.loops = fg.loops[:len(fg.loops)-1]

	if !fg.cur().Sealed() {
		fg.emit(il.Instruction{Op: il.OpJump, Then: headerID, HasThen: true})
		fg.link(fg.block, headerID)
	}

	fg.switchTo(exitID)
}

func (fg *funcGen) walkDoWhile(s *ast.DoWhile) {
	bodyID := fg.newBlock("dowhile.body")
	testID := fg.newBlock("dowhile.test")
	exitID := fg.newBlock("dowhile.exit")

	fg.emit(il.Instruction{Op: il.OpJump, Then: bodyID, HasThen: true})
	fg.link(fg.block, bodyID)

	fg.loops = append(fg.loops, loopTargets{breakTo: exitID, continueTo: testID})
	fg.switchTo(bodyID)
	fg.walkStmts(s.Body)
	fg.loops = fg.loops[:len(fg.loops)-1]

	if !fg.cur().Sealed() {
		fg.emit(il.Instruction{Op: il.OpJump, Then: testID, HasThen: true})
		fg.link(fg.block, testID)
	}

	fg.switchTo(testID)
	cond := fg.lowerExpr(s.Cond)
	fg.emit(il.Instruction{
		Op: il.OpBranch, Operands: []il.RegisterID{cond},
		Then: bodyID, Else: exitID, HasThen: true, HasElse: true, Span: s.Span(),
	})
	fg.link(testID, bodyID)
	fg.link(testID, exitID)

	fg.switchTo(exitID)
}

// walkFor lowers a counted loop like a while over a fabricated induction
// variable: init, header compare (Le for Up, Ge for Down), body, step.
func (fg *funcGen) walkFor(s *ast.For) {
	t := il.TByte
	if existing, ok := fg.localType(s.Var); ok {
		t = existing
	}

	fg.fn.LocalVariables[s.Var] = t

	start := fg.lowerExpr(s.Start)
	fg.emit(il.Instruction{Op: il.OpStoreVar, Var: s.Var, Operands: []il.RegisterID{start}, Span: s.Span()})

	headerID := fg.newBlock("for.header")
	bodyID := fg.newBlock("for.body")
	stepID := fg.newBlock("for.step")
	exitID := fg.newBlock("for.exit")

	fg.emit(il.Instruction{Op: il.OpJump, Then: headerID, HasThen: true})
	fg.link(fg.block, headerID)

	fg.switchTo(headerID)
	cur := fg.loadVar(s.Var, t, s.Span())
	end := fg.lowerExpr(s.End)

	cmpOp := il.OpCmpLe
	if s.Direction == ast.Down {
		cmpOp = il.OpCmpGe
	}

	cond := fg.fn.Registers.Alloc(il.TBool)
	fg.emit(il.Instruction{Op: cmpOp, Result: &cond, Operands: []il.RegisterID{cur, end}, Span: s.Span()})
	fg.emit(il.Instruction{
		Op: il.OpBranch, Operands: []il.RegisterID{cond},
		Then: bodyID, Else: exitID, HasThen: true, HasElse: true,
	})
	fg.link(headerID, bodyID)
	fg.link(headerID, exitID)

	fg.loops = append(fg.loops, loopTargets{breakTo: exitID, continueTo: stepID})
	fg.switchTo(bodyID)
	fg.walkStmts(s.Body)
	fg.loops = fg.loops[:len(fg.loops)-1]

	if !fg.cur().Sealed() {
		fg.emit(il.Instruction{Op: il.OpJump, Then: stepID, HasThen: true})
		fg.link(fg.block, stepID)
	}

	fg.switchTo(stepID)

	var step il.RegisterID
	if s.Step != nil {
		step = fg.lowerExpr(s.Step)
	} else {
		step = fg.fn.Registers.Alloc(t)
		one := int64(1)
		fg.emit(il.Instruction{Op: il.OpConst, Result: &step, Imm: &one})
	}

	curAgain := fg.loadVar(s.Var, t, s.Span())
	next := fg.fn.Registers.Alloc(t)
	stepOp := il.OpAdd

	if s.Direction == ast.Down {
		stepOp = il.OpSub
	}

	fg.emit(il.Instruction{Op: stepOp, Result: &next, Operands: []il.RegisterID{curAgain, step}})
	fg.emit(il.Instruction{Op: il.OpStoreVar, Var: s.Var, Operands: []il.RegisterID{next}})
	fg.emit(il.Instruction{Op: il.OpJump, Then: headerID, HasThen: true})
	fg.link(stepID, headerID)

	fg.switchTo(exitID)
}

// walkSwitch desugars the AST's n-ary dispatch into a chain of equality
// tests: the IL instruction set's Branch is strictly binary (spec.md
// section 3 has no Switch opcode), so each case becomes its own
// compare-and-branch against the next test block, ending at default or
// merge.
func (fg *funcGen) walkSwitch(s *ast.Switch) {
	val := fg.lowerExpr(s.Value)
	mergeID := fg.newBlock("switch.merge")

	var defaultID il.BlockID

	hasDefault := s.Default != nil
	if hasDefault {
		defaultID = fg.newBlock("switch.default")
	}

	dispatch := fg.block
	fallThrough := mergeID

	if hasDefault {
		fallThrough = defaultID
	}

	for i, c := range s.Cases {
		fg.switchTo(dispatch)

		caseVal := fg.lowerExpr(c.Value)
		cmp := fg.fn.Registers.Alloc(il.TBool)
		fg.emit(il.Instruction{Op: il.OpCmpEq, Result: &cmp, Operands: []il.RegisterID{val, caseVal}, Span: c.Value.Span()})

		bodyID := fg.newBlock("switch.case")

		nextTest := fallThrough
		if i < len(s.Cases)-1 {
			nextTest = fg.newBlock("switch.test")
		}

		fg.emit(il.Instruction{
			Op: il.OpBranch, Operands: []il.RegisterID{cmp},
			Then: bodyID, Else: nextTest, HasThen: true, HasElse: true,
		})
		fg.link(dispatch, bodyID)
		fg.link(dispatch, nextTest)

		fg.switchTo(bodyID)
		fg.walkStmts(c.Body)

		if !fg.cur().Sealed() {
			fg.emit(il.Instruction{Op: il.OpJump, Then: mergeID, HasThen: true})
			fg.link(fg.block, mergeID)
		}

		dispatch = nextTest
	}

	// With no cases, the loop above never runs and so never emits the
	// dispatch block's own terminator; do it here instead, jumping straight
	// to whatever the loop would have fallen through to (the default block,
	// or the merge block if there is none).
	if len(s.Cases) == 0 {
		fg.switchTo(dispatch)
		fg.emit(il.Instruction{Op: il.OpJump, Then: fallThrough, HasThen: true})
		fg.link(dispatch, fallThrough)
	}

	if hasDefault {
		fg.switchTo(defaultID)
		fg.walkStmts(s.Default)

		if !fg.cur().Sealed() {
			fg.emit(il.Instruction{Op: il.OpJump, Then: mergeID, HasThen: true})
			fg.link(fg.block, mergeID)
		}
	}

	fg.switchTo(mergeID)
}
