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

// BlockID identifies a basic block within its owning function.  CFG edges
// between blocks are index pairs into the owning function's block slice,
// never owning references (spec.md section 9's note on avoiding reference
// cycles in the IL object graph).
type BlockID uint32

// BasicBlock is a maximal straight-line instruction sequence with a single
// entry and (after sealing) a single terminator.  Predecessor/successor
// edges are maintained bidirectionally by LinkTo.
type BasicBlock struct {
	ID           BlockID
	Label        string
	Instructions []Instruction
	Predecessors []BlockID
	Successors   []BlockID
}

// Sealed reports whether the block already ends in a terminator.
func (b *BasicBlock) Sealed() bool {
	n := len(b.Instructions)
	return n > 0 && b.Instructions[n-1].IsTerminator()
}

// Append adds a non-terminator or terminator instruction to the block. It
// panics if called after the block is already sealed, enforcing spec.md
// section 3's "instructions after the terminator are forbidden".
func (b *BasicBlock) Append(in Instruction) {
	if b.Sealed() {
		panic("cannot append to a sealed basic block: " + b.Label)
	}

	b.Instructions = append(b.Instructions, in)
}

// PrependPhi inserts a phi instruction at the head of the block, after any
// phis already there (spec.md section 3: "every phi appears at the block
// head, before any non-phi instruction").
func (b *BasicBlock) PrependPhi(in Instruction) {
	insertAt := 0

	for insertAt < len(b.Instructions) && b.Instructions[insertAt].Op.IsPhi() {
		insertAt++
	}

	b.Instructions = append(b.Instructions, Instruction{})
	copy(b.Instructions[insertAt+1:], b.Instructions[insertAt:])
	b.Instructions[insertAt] = in
}

// Phis returns the leading run of phi instructions.
func (b *BasicBlock) Phis() []Instruction {
	var out []Instruction

	for _, in := range b.Instructions {
		if !in.Op.IsPhi() {
			break
		}

		out = append(out, in)
	}

	return out
}

// Terminator returns the block's terminating instruction. It panics if the
// block is not sealed; callers should only call this after CFG
// construction completes.
func (b *BasicBlock) Terminator() Instruction {
	if !b.Sealed() {
		panic("basic block has no terminator: " + b.Label)
	}

	return b.Instructions[len(b.Instructions)-1]
}

// linkTo adds a successor edge from `from` to `to` and the matching
// predecessor edge on `to`, maintaining both sides as spec.md section 3
// requires ("linkTo(other) adds to both sides").
func linkTo(blocks []*BasicBlock, from, to BlockID) {
	a, b := blocks[from], blocks[to]
	a.Successors = append(a.Successors, to)
	b.Predecessors = append(b.Predecessors, from)
}
