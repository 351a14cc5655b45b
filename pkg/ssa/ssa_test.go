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
package ssa

import (
	"testing"

	"github.com/sixc-lang/sixc/pkg/il"
)

// buildDiamond builds:
//
//	entry: x = 1; branch cond
//	then:  x = 2; jump merge
//	else:  x = 3; jump merge
//	merge: y = x; return
//
// the canonical diamond that needs exactly one phi for x in merge.
func buildDiamond(t *testing.T) *il.Function {
	t.Helper()

	f := il.NewFunction("f", nil, il.TByte)
	f.LocalVariables["x"] = il.TByte
	f.LocalVariables["y"] = il.TByte

	entry := f.EntryBlock()
	condReg := f.Registers.Alloc(il.TBool)
	entry.Append(il.Instruction{ID: f.NextInstructionID(), Op: il.OpConst, Result: &condReg})

	one := f.Registers.Alloc(il.TByte)
	entry.Append(il.Instruction{ID: f.NextInstructionID(), Op: il.OpConst, Result: &one})
	entry.Append(il.Instruction{ID: f.NextInstructionID(), Op: il.OpStoreVar, Var: "x", Operands: []il.RegisterID{one}})

	thenID := f.NewBlock("then")
	elseID := f.NewBlock("else")
	mergeID := f.NewBlock("merge")

	entry.Append(il.Instruction{
		ID: f.NextInstructionID(), Op: il.OpBranch, Operands: []il.RegisterID{condReg},
		Then: thenID, Else: elseID, HasThen: true, HasElse: true,
	})
	f.LinkTo(f.EntryBlockID, thenID)
	f.LinkTo(f.EntryBlockID, elseID)

	two := f.Registers.Alloc(il.TByte)
	thenBlock := f.Block(thenID)
	thenBlock.Append(il.Instruction{ID: f.NextInstructionID(), Op: il.OpConst, Result: &two})
	thenBlock.Append(il.Instruction{ID: f.NextInstructionID(), Op: il.OpStoreVar, Var: "x", Operands: []il.RegisterID{two}})
	thenBlock.Append(il.Instruction{ID: f.NextInstructionID(), Op: il.OpJump, Then: mergeID, HasThen: true})
	f.LinkTo(thenID, mergeID)

	three := f.Registers.Alloc(il.TByte)
	elseBlock := f.Block(elseID)
	elseBlock.Append(il.Instruction{ID: f.NextInstructionID(), Op: il.OpConst, Result: &three})
	elseBlock.Append(il.Instruction{ID: f.NextInstructionID(), Op: il.OpStoreVar, Var: "x", Operands: []il.RegisterID{three}})
	elseBlock.Append(il.Instruction{ID: f.NextInstructionID(), Op: il.OpJump, Then: mergeID, HasThen: true})
	f.LinkTo(elseID, mergeID)

	loadX := f.Registers.Alloc(il.TByte)
	mergeBlock := f.Block(mergeID)
	mergeBlock.Append(il.Instruction{ID: f.NextInstructionID(), Op: il.OpLoadVar, Var: "x", Result: &loadX})
	mergeBlock.Append(il.Instruction{ID: f.NextInstructionID(), Op: il.OpStoreVar, Var: "y", Operands: []il.RegisterID{loadX}})
	mergeBlock.Append(il.Instruction{ID: f.NextInstructionID(), Op: il.OpReturn})

	return f
}

func TestDiamondGetsExactlyOnePhi(t *testing.T) {
	f := buildDiamond(t)

	result, diags := Construct(f, Options{PromoteToSSA: true})
	if len(diags) != 0 {
		t.Fatalf("expected no verification diagnostics, got %v", diags)
	}

	if len(result.PhiBlocks["x"]) != 1 {
		t.Fatalf("expected exactly one phi block for x, got %v", result.PhiBlocks["x"])
	}

	var mergeID il.BlockID

	for _, b := range f.Blocks {
		if b.Label == "merge" {
			mergeID = b.ID
		}
	}

	phis := f.Block(mergeID).Phis()
	if len(phis) != 1 {
		t.Fatalf("expected one phi instruction in merge block, got %d", len(phis))
	}

	if len(phis[0].Incoming) != 2 {
		t.Fatalf("expected phi to have two incoming edges, got %d", len(phis[0].Incoming))
	}

	for _, b := range f.Blocks {
		for _, in := range b.Instructions {
			if in.Op == il.OpLoadVar || in.Op == il.OpStoreVar {
				t.Fatalf("expected mem2reg to eliminate all loadvar/storevar, found %v in block %q", in.Op, b.Label)
			}
		}
	}
}

func TestDominatorTreeOnDiamond(t *testing.T) {
	f := buildDiamond(t)
	tree := ComputeDominators(f)

	var thenID, elseID, mergeID il.BlockID

	for _, b := range f.Blocks {
		switch b.Label {
		case "then":
			thenID = b.ID
		case "else":
			elseID = b.ID
		case "merge":
			mergeID = b.ID
		}
	}

	if idom, _ := tree.IDom(thenID); idom != f.EntryBlockID {
		t.Fatalf("expected entry to dominate then")
	}

	if idom, _ := tree.IDom(elseID); idom != f.EntryBlockID {
		t.Fatalf("expected entry to dominate else")
	}

	if idom, _ := tree.IDom(mergeID); idom != f.EntryBlockID {
		t.Fatalf("expected entry to be merge's immediate dominator (not then or else), got %d", idom)
	}

	if !tree.Dominates(f.EntryBlockID, mergeID) {
		t.Fatal("expected entry to dominate merge")
	}

	if tree.Dominates(thenID, mergeID) {
		t.Fatal("then should not dominate merge: else reaches merge without passing through then")
	}
}
