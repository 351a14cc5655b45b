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
	"testing"

	"github.com/sixc-lang/sixc/pkg/ast"
	"github.com/sixc-lang/sixc/pkg/il"
	"github.com/sixc-lang/sixc/pkg/source"
)

func byteType() *ast.TypeRef { return &ast.TypeRef{Name: "byte"} }

func moduleOf(gen *ast.IDGen, decls ...ast.Declaration) *ast.Module {
	return ast.NewModule(gen, source.Span{}, "m", decls)
}

func countInstructions(fn *il.Function, op il.Opcode) int {
	n := 0

	for _, b := range fn.Blocks {
		for _, in := range b.Instructions {
			if in.Op == op {
				n++
			}
		}
	}

	return n
}

func TestGenerateModuleLowersIfToBranch(t *testing.T) {
	gen := ast.NewIDGen()
	cond := ast.NewIdentifier(gen, source.Span{}, "flag")
	thenBody := []ast.Stmt{ast.NewReturn(gen, source.Span{}, ast.NewLiteral(gen, source.Span{}, ast.LiteralNumber, int64(1)))}
	elseBody := []ast.Stmt{ast.NewReturn(gen, source.Span{}, ast.NewLiteral(gen, source.Span{}, ast.LiteralNumber, int64(0)))}
	ifStmt := ast.NewIf(gen, source.Span{}, cond, thenBody, elseBody)

	params := []ast.Param{{Name: "flag", Type: ast.TypeRef{Name: "bool"}}}
	fn := ast.NewFunction(gen, source.Span{}, "pick", params, ast.TypeRef{Name: "byte"}, []ast.Stmt{ifStmt}, true, false)

	mod, diags := GenerateModule(moduleOf(gen, fn), ast.NewMetadata())
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}

	ilFn := mod.Functions["pick"]
	if ilFn == nil {
		t.Fatalf("expected function %q in generated module", "pick")
	}

	if countInstructions(ilFn, il.OpBranch) != 1 {
		t.Fatalf("expected exactly one Branch instruction")
	}

	// One Return per arm, plus the implicit Return the generator appends
	// to the (unreachable, since both arms already return) merge block.
	if countInstructions(ilFn, il.OpReturn) != 3 {
		t.Fatalf("expected three Return instructions, got %d", countInstructions(ilFn, il.OpReturn))
	}
}

func TestGenerateModuleLowersWhileLoopBackEdge(t *testing.T) {
	gen := ast.NewIDGen()
	cond := ast.NewIdentifier(gen, source.Span{}, "running")
	body := []ast.Stmt{ast.NewExpressionStmt(gen, source.Span{}, ast.NewIdentifier(gen, source.Span{}, "running"))}
	whileStmt := ast.NewWhile(gen, source.Span{}, cond, body)

	params := []ast.Param{{Name: "running", Type: ast.TypeRef{Name: "bool"}}}
	fn := ast.NewFunction(gen, source.Span{}, "loop", params, ast.TypeRef{Name: "void"}, []ast.Stmt{whileStmt}, false, false)

	mod, diags := GenerateModule(moduleOf(gen, fn), ast.NewMetadata())
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}

	ilFn := mod.Functions["loop"]

	var header *il.BasicBlock

	for _, b := range ilFn.Blocks {
		if b.Terminator().Op == il.OpBranch {
			header = b
			break
		}
	}

	if header == nil {
		t.Fatalf("expected a header block terminating in Branch")
	}

	found := false

	for _, succ := range header.Successors {
		body := ilFn.Block(succ)
		for _, s := range body.Successors {
			if s == header.ID {
				found = true
			}
		}
	}

	if !found {
		t.Fatalf("expected a back-edge from the loop body to the header")
	}
}

func TestGenerateModuleLowersIntrinsicPoke(t *testing.T) {
	gen := ast.NewIDGen()
	addr := ast.NewLiteral(gen, source.Span{}, ast.LiteralNumber, int64(0xD020))
	value := ast.NewLiteral(gen, source.Span{}, ast.LiteralNumber, int64(1))
	call := ast.NewCall(gen, source.Span{}, ast.NewIdentifier(gen, source.Span{}, "poke"), []ast.Expr{addr, value})
	stmt := ast.NewExpressionStmt(gen, source.Span{}, call)

	fn := ast.NewFunction(gen, source.Span{}, "setBorder", nil, ast.TypeRef{Name: "void"}, []ast.Stmt{stmt}, false, false)

	mod, diags := GenerateModule(moduleOf(gen, fn), ast.NewMetadata())
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}

	ilFn := mod.Functions["setBorder"]
	if countInstructions(ilFn, il.OpHardwareWrite) != 1 {
		t.Fatalf("expected exactly one HardwareWrite instruction")
	}

	for _, b := range ilFn.Blocks {
		for _, in := range b.Instructions {
			if in.Op == il.OpHardwareWrite {
				if in.Addr == nil || *in.Addr != 0xD020 {
					t.Fatalf("expected hardware write address 0xD020, got %v", in.Addr)
				}
			}
		}
	}
}

func TestGenerateModuleRejectsNonConstantHardwareAddress(t *testing.T) {
	gen := ast.NewIDGen()
	addrVar := ast.NewIdentifier(gen, source.Span{}, "addr")
	call := ast.NewCall(gen, source.Span{}, ast.NewIdentifier(gen, source.Span{}, "peek"), []ast.Expr{addrVar})
	local := ast.NewLocalVariable(gen, source.Span{}, "result", byteType(), call, false)

	params := []ast.Param{{Name: "addr", Type: ast.TypeRef{Name: "word"}}}
	fn := ast.NewFunction(gen, source.Span{}, "readIt", params, ast.TypeRef{Name: "void"}, []ast.Stmt{local}, false, false)

	_, diags := GenerateModule(moduleOf(gen, fn), ast.NewMetadata())
	if len(diags) != 1 || diags[0].Code != "SEMANTIC-NON-CONSTANT-ADDRESS" {
		t.Fatalf("expected a single SEMANTIC-NON-CONSTANT-ADDRESS diagnostic, got %v", diags)
	}
}

func TestGenerateModuleCompoundAssignmentLoadsThenStores(t *testing.T) {
	gen := ast.NewIDGen()
	assign := ast.NewAssignment(gen, source.Span{}, ast.NewIdentifier(gen, source.Span{}, "x"), ast.AssignAdd,
		ast.NewLiteral(gen, source.Span{}, ast.LiteralNumber, int64(1)))
	stmt := ast.NewExpressionStmt(gen, source.Span{}, assign)
	local := ast.NewLocalVariable(gen, source.Span{}, "x", byteType(), ast.NewLiteral(gen, source.Span{}, ast.LiteralNumber, int64(0)), false)

	fn := ast.NewFunction(gen, source.Span{}, "inc", nil, ast.TypeRef{Name: "void"}, []ast.Stmt{local, stmt}, false, false)

	mod, diags := GenerateModule(moduleOf(gen, fn), ast.NewMetadata())
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}

	ilFn := mod.Functions["inc"]
	if countInstructions(ilFn, il.OpAdd) != 1 {
		t.Fatalf("expected one Add from the += desugaring")
	}

	if countInstructions(ilFn, il.OpLoadVar) != 1 {
		t.Fatalf("expected one load of the current value before the add")
	}

	if countInstructions(ilFn, il.OpStoreVar) != 2 {
		t.Fatalf("expected two stores: the initializer and the compound assignment")
	}
}

func TestGenerateModuleSwitchWithNoCasesStillTerminatesDispatchBlock(t *testing.T) {
	gen := ast.NewIDGen()
	value := ast.NewIdentifier(gen, source.Span{}, "selector")
	defaultBody := []ast.Stmt{ast.NewReturn(gen, source.Span{}, nil)}
	switchStmt := ast.NewSwitch(gen, source.Span{}, value, nil, defaultBody)

	params := []ast.Param{{Name: "selector", Type: ast.TypeRef{Name: "byte"}}}
	fn := ast.NewFunction(gen, source.Span{}, "dispatch", params, ast.TypeRef{Name: "void"}, []ast.Stmt{switchStmt}, false, false)

	mod, diags := GenerateModule(moduleOf(gen, fn), ast.NewMetadata())
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}

	ilFn := mod.Functions["dispatch"]

	for _, b := range ilFn.Blocks {
		if !b.Sealed() {
			t.Fatalf("expected every block to be sealed, block %q has no terminator", b.Label)
		}
	}

	if countInstructions(ilFn, il.OpJump) == 0 {
		t.Fatalf("expected the dispatch block to jump straight to the default block")
	}
}
