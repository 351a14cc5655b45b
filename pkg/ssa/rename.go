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
	"github.com/sixc-lang/sixc/pkg/il"
	"github.com/sixc-lang/sixc/pkg/util/collection/stack"
)

// Rename performs the dominator-tree-walk variable renaming pass of
// spec.md section 4.4: it eliminates OpLoadVar/OpStoreVar for every
// promotable variable, replacing each load with whatever register
// currently holds that variable's value (a prior store's operand, an
// entry-block parameter register, or a phi placed by PlacePhis), and
// wires each phi's Incoming edges from the value live in each
// predecessor.
//
// Each promotable variable gets its own stack of live registers
// (pkg/util/collection/stack.Stack, reused verbatim from the source
// project this compiler is descended from); entering a block pushes new
// definitions, leaving it pops exactly what was pushed, so sibling
// subtrees of the dominator tree never see each other's definitions.
func Rename(f *il.Function, tree *DominatorTree, phiBlocks map[string][]il.BlockID) {
	stacks := make(map[string]*stack.Stack[il.RegisterID])
	// substitution maps an eliminated OpLoadVar's result register to the
	// register that now stands in for it. RegisterIDs are unique
	// function-wide, so this is safe to share across every block the walk
	// visits rather than resetting it per block.
	substitution := make(map[il.RegisterID]il.RegisterID)

	current := func(v string) (il.RegisterID, bool) {
		s, ok := stacks[v]
		if !ok || s.IsEmpty() {
			return 0, false
		}

		return s.Peek(0), true
	}

	push := func(v string, r il.RegisterID) {
		if stacks[v] == nil {
			stacks[v] = stack.NewStack[il.RegisterID]()
		}

		stacks[v].Push(r)
	}

	// Parameters are live from the entry block under their original
	// Register allocated by the IL generator; seed each promotable
	// parameter's stack so the first load inside the entry block (before
	// any store) resolves correctly.
	for _, p := range f.Params {
		if !promotable(f, p.Name) {
			continue
		}

		for _, reg := range f.Registers.All() {
			if reg.Name == p.Name {
				push(p.Name, reg.ID)
				break
			}
		}
	}

	var walk func(b il.BlockID)
	walk = func(b il.BlockID) {
		pushed := make(map[string]int)

		block := f.Block(b)
		rewritten := make([]il.Instruction, 0, len(block.Instructions))

		for _, in := range block.Instructions {
			switch {
			case in.Op == il.OpPhi && in.Var != "":
				push(in.Var, *in.Result)
				pushed[in.Var]++
				rewritten = append(rewritten, in)
			case in.Op == il.OpStoreVar && promotable(f, in.Var):
				if r, ok := substitution[in.Operands[0]]; ok {
					in.Operands[0] = r
				}

				push(in.Var, in.Operands[0])
				pushed[in.Var]++
				// Dropped: the value already lives in Operands[0]'s register,
				// so no separate store instruction is needed in SSA form.
			case in.Op == il.OpLoadVar && promotable(f, in.Var):
				if r, ok := current(in.Var); ok {
					substitution[*in.Result] = r
				}
				// Dropped: downstream uses are redirected via substitution.
			default:
				for i, op := range in.Operands {
					if r, ok := substitution[op]; ok {
						in.Operands[i] = r
					}
				}

				rewritten = append(rewritten, in)
			}
		}

		block.Instructions = rewritten

		for _, succ := range block.Successors {
			for _, phi := range f.Block(succ).Phis() {
				if phi.Var == "" {
					continue
				}

				if r, ok := current(phi.Var); ok {
					addIncoming(f.Block(succ), phi.ID, b, r)
				}
			}
		}

		for _, child := range tree.Children(b) {
			walk(child)
		}

		for v, n := range pushed {
			for i := 0; i < n; i++ {
				stacks[v].Pop()
			}
		}
	}

	walk(f.EntryBlockID)

	_ = phiBlocks // phi placement already recorded on the blocks themselves
}

func addIncoming(b *il.BasicBlock, phiID il.InstructionID, from il.BlockID, reg il.RegisterID) {
	for i := range b.Instructions {
		if b.Instructions[i].ID == phiID {
			b.Instructions[i].Incoming = append(b.Instructions[i].Incoming, il.PhiEdge{Block: from, Reg: reg})
			return
		}
	}
}
