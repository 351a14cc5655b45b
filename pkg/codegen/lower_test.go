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
	"testing"

	"github.com/sixc-lang/sixc/pkg/ast"
	"github.com/sixc-lang/sixc/pkg/asmil"
	"github.com/sixc-lang/sixc/pkg/callgraph"
	"github.com/sixc-lang/sixc/pkg/frame"
	"github.com/sixc-lang/sixc/pkg/il"
	"github.com/sixc-lang/sixc/pkg/source"
)

func allocateOne(t *testing.T, fn *il.Function) map[string]*frame.Allocation {
	t.Helper()

	gen := ast.NewIDGen()
	g := callgraph.NewGraph()
	g.AddFunction(ast.NewFunction(gen, source.Span{}, fn.Name, nil, ast.TypeRef{Name: "void"}, nil, false, false))

	allocs, diags := frame.Allocate([]*il.Function{fn}, g, frame.DefaultMemoryMap)
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics from allocation, got %v", diags)
	}

	return allocs
}

func instructionsOf(m *asmil.Module) []*asmil.Instruction {
	var out []*asmil.Instruction

	for _, item := range m.Items {
		if in, ok := item.(*asmil.Instruction); ok {
			out = append(out, in)
		}
	}

	return out
}

func TestLowerConstStoreVarEmitsLoadThenStore(t *testing.T) {
	fn := il.NewFunction("setx", nil, il.TVoid)
	fn.LocalVariables = map[string]il.Type{"x": il.TByte}

	reg := fn.Registers.Alloc(il.TByte)
	imm := int64(5)
	blk := fn.EntryBlock()
	blk.Append(il.Instruction{Op: il.OpConst, Result: &reg, Imm: &imm})
	blk.Append(il.Instruction{Op: il.OpStoreVar, Var: "x", Operands: []il.RegisterID{reg}})
	blk.Append(il.Instruction{Op: il.OpReturn})

	mod := il.NewModule("m")
	mod.AddFunction(fn)

	allocs := allocateOne(t, fn)

	cg := NewCodeGenerator(asmil.Target{Architecture: "c64"})
	out, _, diags := cg.Generate(mod, allocs)
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}

	slot := allocs["setx"].Slots[0]

	ins := instructionsOf(out)
	if len(ins) < 2 {
		t.Fatalf("expected at least an LDA/STA pair, got %d instructions", len(ins))
	}

	if ins[0].Mnemonic != "LDA" || ins[0].Operand != "#$05" {
		t.Fatalf("expected LDA #$05 first, got %+v", ins[0])
	}

	wantOperand := fmt.Sprintf("$%04X", slot.Address)
	found := false

	for _, in := range ins {
		if in.Mnemonic == "STA" && in.Operand == wantOperand {
			found = true
		}
	}

	if !found {
		t.Fatalf("expected a STA to %q's frame slot %s, got %+v", "x", wantOperand, ins)
	}
}

func TestLowerMulIsUnsupportedButNonFatal(t *testing.T) {
	fn := il.NewFunction("mul", nil, il.TByte)

	lhs := fn.Registers.Alloc(il.TByte)
	rhs := fn.Registers.Alloc(il.TByte)
	result := fn.Registers.Alloc(il.TByte)

	blk := fn.EntryBlock()
	blk.Append(il.Instruction{Op: il.OpMul, Result: &result, Operands: []il.RegisterID{lhs, rhs}})
	blk.Append(il.Instruction{Op: il.OpReturn, Operands: []il.RegisterID{result}})

	mod := il.NewModule("m")
	mod.AddFunction(fn)

	allocs := allocateOne(t, fn)

	cg := NewCodeGenerator(asmil.Target{Architecture: "c64"})
	out, _, diags := cg.Generate(mod, allocs)

	if len(diags) != 1 || diags[0].Code != "CODEGEN-UNSUPPORTED-OPCODE" {
		t.Fatalf("expected exactly one CODEGEN-UNSUPPORTED-OPCODE warning, got %v", diags)
	}

	foundNop := false

	for _, in := range instructionsOf(out) {
		if in.Mnemonic == "NOP" {
			foundNop = true
		}
	}

	if !foundNop {
		t.Fatalf("expected a NOP placeholder for the unsupported Mul")
	}
}

func TestLowerPhiResolvesToMoveOnEachEdge(t *testing.T) {
	fn := il.NewFunction("pick", []il.Param{{Name: "flag", Type: il.TBool}}, il.TByte)

	thenID := fn.NewBlock("then")
	elseID := fn.NewBlock("else")
	mergeID := fn.NewBlock("merge")

	flagReg := fn.Registers.Alloc(il.TBool)
	entry := fn.EntryBlock()
	entry.Append(il.Instruction{
		Op: il.OpBranch, Operands: []il.RegisterID{flagReg},
		Then: thenID, Else: elseID, HasThen: true, HasElse: true,
	})
	fn.LinkTo(entry.ID, thenID)
	fn.LinkTo(entry.ID, elseID)

	oneImm, zeroImm := int64(1), int64(0)
	oneReg := fn.Registers.Alloc(il.TByte)
	fn.Block(thenID).Append(il.Instruction{Op: il.OpConst, Result: &oneReg, Imm: &oneImm})
	fn.Block(thenID).Append(il.Instruction{Op: il.OpJump, Then: mergeID, HasThen: true})
	fn.LinkTo(thenID, mergeID)

	zeroReg := fn.Registers.Alloc(il.TByte)
	fn.Block(elseID).Append(il.Instruction{Op: il.OpConst, Result: &zeroReg, Imm: &zeroImm})
	fn.Block(elseID).Append(il.Instruction{Op: il.OpJump, Then: mergeID, HasThen: true})
	fn.LinkTo(elseID, mergeID)

	phiResult := fn.Registers.Alloc(il.TByte)
	fn.Block(mergeID).Append(il.Instruction{
		Op: il.OpPhi, Result: &phiResult,
		Incoming: []il.PhiEdge{{Block: thenID, Reg: oneReg}, {Block: elseID, Reg: zeroReg}},
	})
	fn.Block(mergeID).Append(il.Instruction{Op: il.OpReturn, Operands: []il.RegisterID{phiResult}})

	mod := il.NewModule("m")
	mod.AddFunction(fn)

	allocs := allocateOne(t, fn)

	cg := NewCodeGenerator(asmil.Target{Architecture: "c64"})
	out, _, diags := cg.Generate(mod, allocs)
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}

	// Every arm's block jumps to merge; the moves resolving the phi must
	// appear before each arm's JMP, never as a "phi" instruction of their
	// own (spec.md section 4.7: phi is resolved via moves, not emitted).
	ins := instructionsOf(out)

	jmpCount := 0

	for _, in := range ins {
		if in.Mnemonic == "JMP" && in.Operand == "pick_merge" {
			jmpCount++
		}
	}

	if jmpCount != 2 {
		t.Fatalf("expected both arms to jump to the merge block, got %d JMPs", jmpCount)
	}
}

func TestStatisticsTotalBytesMatchesModuleStats(t *testing.T) {
	fn := il.NewFunction("noop", nil, il.TVoid)
	fn.EntryBlock().Append(il.Instruction{Op: il.OpReturn})

	mod := il.NewModule("m")
	mod.AddFunction(fn)
	mod.Globals = append(mod.Globals, il.Global{Name: "g", Type: il.TByte})

	allocs := allocateOne(t, fn)

	cg := NewCodeGenerator(asmil.Target{Architecture: "vic20"})
	out, stats, diags := cg.Generate(mod, allocs)
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}

	if stats.TotalBytes != out.Stats.CodeBytes+out.Stats.DataBytes {
		t.Fatalf("expected TotalBytes to match module stats, got %d vs %d", stats.TotalBytes, out.Stats.CodeBytes+out.Stats.DataBytes)
	}

	if stats.FunctionCount != 1 {
		t.Fatalf("expected FunctionCount 1, got %d", stats.FunctionCount)
	}

	if stats.GlobalCount != 1 {
		t.Fatalf("expected GlobalCount 1, got %d", stats.GlobalCount)
	}
}
