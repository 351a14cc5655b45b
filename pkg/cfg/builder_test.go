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
	"testing"

	"github.com/sixc-lang/sixc/pkg/ast"
	"github.com/sixc-lang/sixc/pkg/source"
)

func fn(gen *ast.IDGen, body []ast.Stmt) *ast.Function {
	return ast.NewFunction(gen, source.Span{}, "f", nil, ast.TypeRef{Name: "void"}, body, false, false)
}

func TestIfElseProducesDiamond(t *testing.T) {
	gen := ast.NewIDGen()
	cond := ast.NewIdentifier(gen, source.Span{}, "flag")
	then := []ast.Stmt{ast.NewExpressionStmt(gen, source.Span{}, ast.NewIdentifier(gen, source.Span{}, "a"))}
	els := []ast.Stmt{ast.NewExpressionStmt(gen, source.Span{}, ast.NewIdentifier(gen, source.Span{}, "b"))}
	ifStmt := ast.NewIf(gen, source.Span{}, cond, then, els)

	graph, diags := Build(fn(gen, []ast.Stmt{ifStmt}))
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}

	entry := graph.Entry()
	if entry.Term.Kind != TermBranch {
		t.Fatalf("expected entry to branch, got %v", entry.Term.Kind)
	}

	if len(entry.Successors) != 2 {
		t.Fatalf("expected two successors from entry, got %d", len(entry.Successors))
	}

	thenID, elseID := entry.Successors[0], entry.Successors[1]
	thenBlock, elseBlock := graph.Block(thenID), graph.Block(elseID)

	if len(thenBlock.Successors) != 1 || len(elseBlock.Successors) != 1 {
		t.Fatalf("expected then/else to each fall into a single merge block")
	}

	if thenBlock.Successors[0] != elseBlock.Successors[0] {
		t.Fatalf("expected then and else to converge on the same merge block")
	}

	merge := graph.Block(thenBlock.Successors[0])
	if len(merge.Predecessors) != 2 {
		t.Fatalf("expected merge block to have two predecessors, got %d", len(merge.Predecessors))
	}
}

func TestWhileProducesBackEdge(t *testing.T) {
	gen := ast.NewIDGen()
	cond := ast.NewIdentifier(gen, source.Span{}, "cond")
	body := []ast.Stmt{ast.NewExpressionStmt(gen, source.Span{}, ast.NewIdentifier(gen, source.Span{}, "x"))}
	whileStmt := ast.NewWhile(gen, source.Span{}, cond, body)

	graph, _ := Build(fn(gen, []ast.Stmt{whileStmt}))

	var header *Block

	for _, b := range graph.Blocks {
		if b.Term.Kind == TermBranch {
			header = b
			break
		}
	}

	if header == nil {
		t.Fatal("expected a header block with a branch terminator")
	}

	if len(header.Predecessors) != 2 {
		t.Fatalf("expected header to have two predecessors (entry + back-edge), got %d", len(header.Predecessors))
	}
}

func TestUnreachableStatementAfterReturnWarns(t *testing.T) {
	gen := ast.NewIDGen()
	ret := ast.NewReturn(gen, source.Span{}, nil)
	after := ast.NewExpressionStmt(gen, source.Span{}, ast.NewIdentifier(gen, source.Span{}, "dead"))

	_, diags := Build(fn(gen, []ast.Stmt{ret, after}))

	if len(diags) != 1 || diags[0].Code != "SEMANTIC-UNREACHABLE" {
		t.Fatalf("expected one SEMANTIC-UNREACHABLE warning, got %v", diags)
	}
}

func TestBreakOutsideLoopIsError(t *testing.T) {
	gen := ast.NewIDGen()
	brk := ast.NewBreak(gen, source.Span{})

	_, diags := Build(fn(gen, []ast.Stmt{brk}))

	if len(diags) != 1 || diags[0].Code != "SEMANTIC-BREAK-OUTSIDE-LOOP" {
		t.Fatalf("expected one SEMANTIC-BREAK-OUTSIDE-LOOP error, got %v", diags)
	}
}

func TestContinueOutsideLoopIsError(t *testing.T) {
	gen := ast.NewIDGen()
	cont := ast.NewContinue(gen, source.Span{})

	_, diags := Build(fn(gen, []ast.Stmt{cont}))

	if len(diags) != 1 || diags[0].Code != "SEMANTIC-CONTINUE-OUTSIDE-LOOP" {
		t.Fatalf("expected one SEMANTIC-CONTINUE-OUTSIDE-LOOP error, got %v", diags)
	}
}

func TestForLoopTagsInitHeaderStep(t *testing.T) {
	gen := ast.NewIDGen()
	start := ast.NewLiteral(gen, source.Span{}, ast.LiteralNumber, int64(0))
	end := ast.NewLiteral(gen, source.Span{}, ast.LiteralNumber, int64(9))
	body := []ast.Stmt{ast.NewExpressionStmt(gen, source.Span{}, ast.NewIdentifier(gen, source.Span{}, "x"))}
	forStmt := ast.NewFor(gen, source.Span{}, "i", start, end, ast.Up, nil, body)

	graph, _ := Build(fn(gen, []ast.Stmt{forStmt}))

	if graph.Entry().ForPhase != ForPhaseInit {
		t.Fatalf("expected entry block tagged ForPhaseInit, got %v", graph.Entry().ForPhase)
	}

	var sawHeader, sawStep bool

	for _, b := range graph.Blocks {
		switch b.ForPhase {
		case ForPhaseHeader:
			sawHeader = true
		case ForPhaseStep:
			sawStep = true
		}
	}

	if !sawHeader || !sawStep {
		t.Fatalf("expected both header and step blocks tagged, header=%v step=%v", sawHeader, sawStep)
	}
}

func TestImplicitReturnSealsFallOffEnd(t *testing.T) {
	gen := ast.NewIDGen()
	graph, diags := Build(fn(gen, nil))

	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}

	if graph.Entry().Term.Kind != TermReturn {
		t.Fatalf("expected implicit return, got %v", graph.Entry().Term.Kind)
	}
}
