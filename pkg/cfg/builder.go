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
package cfg

import (
	"fmt"

	"github.com/sixc-lang/sixc/pkg/ast"
	"github.com/sixc-lang/sixc/pkg/diag"
)

// loopTargets is the break/continue destination pair for one enclosing
// loop or switch.
type loopTargets struct {
	breakTo    BlockID
	continueTo BlockID
}

// builder threads the "current block" pointer explicitly (spec.md section
// 9: replace the source's global "current function"/"current block"
// pointers with explicit builder state scoped to one function at a time).
type builder struct {
	graph   *Graph
	current BlockID
	loops   []loopTargets
	diags   diag.List
	seq     int
}

// Build constructs the CFG for one function body (spec.md section 4.3).
func Build(fn *ast.Function) (*Graph, diag.List) {
	b := &builder{graph: &Graph{Function: fn}}
	b.graph.EntryID = b.graph.newBlock("entry")
	b.current = b.graph.EntryID

	b.walkStmts(fn.Body)

	// A function body that falls off the end without an explicit return
	// gets an implicit return, sealing the final block.
	if !b.graph.Block(b.current).sealed() {
		b.seal(Terminator{Kind: TermReturn})
	}

	return b.graph, b.diags
}

func (b *builder) label(prefix string) string {
	b.seq++
	return fmt.Sprintf("%s.%d", prefix, b.seq)
}

// seal terminates the current block by setting its terminator.
func (b *builder) seal(term Terminator) {
	b.graph.Blocks[b.current].Term = term
}

// switchTo makes id the current block, for use after creating and linking
// a fresh successor.
func (b *builder) switchTo(id BlockID) {
	b.current = id
}

// walkStmts threads statements into the current block, creating new blocks
// at structural boundaries, exactly as spec.md section 4.3 describes.
func (b *builder) walkStmts(stmts []ast.Stmt) {
	for i, stmt := range stmts {
		if b.graph.Block(b.current).sealed() {
			// Unreachable trailing statements: spec.md section 4.3, "a
			// Return/Break/Continue terminates the current block ...  and
			// unreachable trailing statements generate warnings".
			for _, rest := range stmts[i:] {
				b.diags.Add(diag.Warnf("SEMANTIC-UNREACHABLE", rest.Span(), "unreachable statement"))
			}

			return
		}

		b.walkStmt(stmt)
	}
}

func (b *builder) walkStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Return:
		b.graph.Blocks[b.current].Stmts = append(b.graph.Blocks[b.current].Stmts, s)
		b.seal(Terminator{Kind: TermReturn, Return: s})
	case *ast.Break:
		if len(b.loops) == 0 {
			b.diags.Add(diag.Errorf("SEMANTIC-BREAK-OUTSIDE-LOOP", s.Span(), "break outside loop"))
			return
		}

		target := b.loops[len(b.loops)-1].breakTo
		b.seal(Terminator{Kind: TermJump})
		b.graph.linkTo(b.current, target)
	case *ast.Continue:
		if len(b.loops) == 0 {
			b.diags.Add(diag.Errorf("SEMANTIC-CONTINUE-OUTSIDE-LOOP", s.Span(), "continue outside loop"))
			return
		}

		target := b.loops[len(b.loops)-1].continueTo
		b.seal(Terminator{Kind: TermJump})
		b.graph.linkTo(b.current, target)
	case *ast.Block:
		b.walkStmts(s.Stmts)
	case *ast.If:
		b.walkIf(s)
	case *ast.While:
		b.walkWhile(s)
	case *ast.DoWhile:
		b.walkDoWhile(s)
	case *ast.For:
		b.walkFor(s)
	case *ast.Switch:
		b.walkSwitch(s)
	default:
		// ExpressionStmt, LocalVariable: no control-flow effect, just append.
		b.graph.Blocks[b.current].Stmts = append(b.graph.Blocks[b.current].Stmts, s)
	}
}

// walkIf implements spec.md section 4.3's If rule: create then, else?,
// merge blocks; terminate the predecessor with Branch; both branches jump
// to merge if they don't themselves terminate.
func (b *builder) walkIf(s *ast.If) {
	thenID := b.graph.newBlock(b.label("then"))

	var elseID BlockID

	hasElse := s.Else != nil
	if hasElse {
		elseID = b.graph.newBlock(b.label("else"))
	}

	pred := b.current
	b.seal(Terminator{Kind: TermBranch, Cond: s.Cond})
	b.graph.linkTo(pred, thenID)

	if hasElse {
		b.graph.linkTo(pred, elseID)
	}

	mergeID := b.graph.newBlock(b.label("merge"))

	b.switchTo(thenID)
	b.walkStmts(s.Then)

	if !b.graph.Block(b.current).sealed() {
		b.seal(Terminator{Kind: TermJump})
		b.graph.linkTo(b.current, mergeID)
	}

	if hasElse {
		b.switchTo(elseID)
		b.walkStmts(s.Else)

		if !b.graph.Block(b.current).sealed() {
			b.seal(Terminator{Kind: TermJump})
			b.graph.linkTo(b.current, mergeID)
		}
	} else {
		b.graph.linkTo(pred, mergeID)
	}

	b.switchTo(mergeID)
}

// walkWhile implements spec.md section 4.3's While rule: header, body,
// exit blocks; predecessor jumps to header; header branches to body or
// exit; body jumps back to header.
func (b *builder) walkWhile(s *ast.While) {
	headerID := b.graph.newBlock(b.label("while.header"))
	bodyID := b.graph.newBlock(b.label("while.body"))
	exitID := b.graph.newBlock(b.label("while.exit"))

	b.seal(Terminator{Kind: TermJump})
	b.graph.linkTo(b.current, headerID)

	b.switchTo(headerID)
	b.seal(Terminator{Kind: TermBranch, Cond: s.Cond})
	b.graph.linkTo(headerID, bodyID)
	b.graph.linkTo(headerID, exitID)

	b.loops = append(b.loops, loopTargets{breakTo: exitID, continueTo: headerID})
	b.switchTo(bodyID)
	b.walkStmts(s.Body)
	b.loops = b.loops[:len(b.loops)-1]

	if !b.graph.Block(b.current).sealed() {
		b.seal(Terminator{Kind: TermJump})
		b.graph.linkTo(b.current, headerID)
	}

	b.switchTo(exitID)
}

// walkDoWhile implements spec.md section 4.3's DoWhile rule: body executes
// first; a back-edge from the body's end to the body's head is conditional
// on the loop condition.
func (b *builder) walkDoWhile(s *ast.DoWhile) {
	bodyID := b.graph.newBlock(b.label("dowhile.body"))
	testID := b.graph.newBlock(b.label("dowhile.test"))
	exitID := b.graph.newBlock(b.label("dowhile.exit"))

	b.seal(Terminator{Kind: TermJump})
	b.graph.linkTo(b.current, bodyID)

	b.loops = append(b.loops, loopTargets{breakTo: exitID, continueTo: testID})
	b.switchTo(bodyID)
	b.walkStmts(s.Body)
	b.loops = b.loops[:len(b.loops)-1]

	if !b.graph.Block(b.current).sealed() {
		b.seal(Terminator{Kind: TermJump})
		b.graph.linkTo(b.current, testID)
	}

	b.switchTo(testID)
	b.seal(Terminator{Kind: TermBranch, Cond: s.Cond})
	b.graph.linkTo(testID, bodyID)
	b.graph.linkTo(testID, exitID)

	b.switchTo(exitID)
}

// walkFor implements spec.md section 4.3's For rule: lowered like a while
// with an induction variable; the direction sign is propagated onto the
// comparison the IL generator later emits.
func (b *builder) walkFor(s *ast.For) {
	headerID := b.graph.newBlock(b.label("for.header"))
	bodyID := b.graph.newBlock(b.label("for.body"))
	exitID := b.graph.newBlock(b.label("for.exit"))

	b.graph.Blocks[b.current].ForLoop = s
	b.graph.Blocks[b.current].ForPhase = ForPhaseInit
	b.seal(Terminator{Kind: TermJump})
	b.graph.linkTo(b.current, headerID)

	b.switchTo(headerID)
	b.graph.Blocks[headerID].ForLoop = s
	b.graph.Blocks[headerID].ForPhase = ForPhaseHeader
	b.seal(Terminator{Kind: TermBranch})
	b.graph.linkTo(headerID, bodyID)
	b.graph.linkTo(headerID, exitID)

	b.loops = append(b.loops, loopTargets{breakTo: exitID, continueTo: headerID})
	b.switchTo(bodyID)
	b.walkStmts(s.Body)
	b.loops = b.loops[:len(b.loops)-1]

	if !b.graph.Block(b.current).sealed() {
		b.graph.Blocks[b.current].ForLoop = s
		b.graph.Blocks[b.current].ForPhase = ForPhaseStep
		b.seal(Terminator{Kind: TermJump})
		b.graph.linkTo(b.current, headerID)
	}

	b.switchTo(exitID)
}

// walkSwitch implements spec.md section 4.3's Switch rule: fan-out
// branches from a dispatch block to each case, each case ends with a jump
// to merge; there is no fall-through unless the source explicitly
// structures one (which this language does not support).
func (b *builder) walkSwitch(s *ast.Switch) {
	dispatchID := b.current
	mergeID := b.graph.newBlock(b.label("switch.merge"))

	caseIDs := make([]BlockID, len(s.Cases))
	for i, c := range s.Cases {
		caseIDs[i] = b.graph.newBlock(b.label("case"))
		b.graph.linkTo(dispatchID, caseIDs[i])

		b.switchTo(caseIDs[i])
		b.walkStmts(c.Body)

		if !b.graph.Block(b.current).sealed() {
			b.seal(Terminator{Kind: TermJump})
			b.graph.linkTo(b.current, mergeID)
		}
	}

	if s.Default != nil {
		defaultID := b.graph.newBlock(b.label("default"))
		b.graph.linkTo(dispatchID, defaultID)

		b.switchTo(defaultID)
		b.walkStmts(s.Default)

		if !b.graph.Block(b.current).sealed() {
			b.seal(Terminator{Kind: TermJump})
			b.graph.linkTo(b.current, mergeID)
		}
	} else {
		b.graph.linkTo(dispatchID, mergeID)
	}

	b.graph.Blocks[dispatchID].Term = Terminator{Kind: TermBranch, Cond: s.Value}
	b.switchTo(mergeID)
}
