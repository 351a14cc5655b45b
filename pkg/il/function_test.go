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
package il

import "testing"

// TestSealedBlockRejectsFurtherInstructions checks spec.md section 3's
// "instructions after the terminator are forbidden" invariant.
func TestSealedBlockRejectsFurtherInstructions(t *testing.T) {
	f := NewFunction("main", nil, TVoid)
	entry := f.EntryBlock()
	entry.Append(Instruction{ID: f.NextInstructionID(), Op: OpReturn})

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic appending after a terminator")
		}
	}()

	entry.Append(Instruction{ID: f.NextInstructionID(), Op: OpNop})
}

// TestReachabilityFindsUnreachableBlock exercises ComputeReachability
// against a block with no path from entry.
func TestReachabilityFindsUnreachableBlock(t *testing.T) {
	f := NewFunction("main", nil, TVoid)
	entry := f.EntryBlock()
	entry.Append(Instruction{ID: f.NextInstructionID(), Op: OpReturn})

	orphan := f.NewBlock("orphan")
	f.Block(orphan).Append(Instruction{ID: f.NextInstructionID(), Op: OpReturn})

	reachable := f.ComputeReachability()
	if !reachable[f.EntryBlockID] {
		t.Fatal("entry block should be reachable")
	}

	if reachable[orphan] {
		t.Fatal("orphan block should not be reachable")
	}
}

// TestPrependPhiOrdersBeforeNonPhi checks spec.md section 3's "every phi
// appears at the block head, before any non-phi instruction".
func TestPrependPhiOrdersBeforeNonPhi(t *testing.T) {
	f := NewFunction("main", nil, TVoid)
	b := f.EntryBlock()
	b.Append(Instruction{ID: f.NextInstructionID(), Op: OpNop})

	phiReg := f.Registers.Alloc(TByte)
	b.PrependPhi(Instruction{ID: f.NextInstructionID(), Op: OpPhi, Result: &phiReg})

	if !b.Instructions[0].Op.IsPhi() {
		t.Fatalf("expected phi first, got %v", b.Instructions[0].Op)
	}

	if b.Instructions[1].Op != OpNop {
		t.Fatalf("expected nop second, got %v", b.Instructions[1].Op)
	}
}
