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

// Param is a function parameter's IL-level name and type.
type Param struct {
	Name string
	Type Type
}

// Function owns every BasicBlock and Register it contains (spec.md
// section 5): nothing outside this struct may allocate into its pool or
// append a block to its list.
type Function struct {
	Name           string
	Params         []Param
	ReturnType     Type
	EntryBlockID   BlockID
	Blocks         []*BasicBlock
	Registers      RegisterPool
	LocalVariables map[string]Type
	IsCallback     bool

	nextBlockID BlockID
	nextInstrID InstructionID
}

// NewFunction constructs an empty function with a single, unsealed entry
// block labeled "entry".
func NewFunction(name string, params []Param, ret Type) *Function {
	f := &Function{
		Name:           name,
		Params:         params,
		ReturnType:     ret,
		LocalVariables: make(map[string]Type),
	}
	f.EntryBlockID = f.NewBlock("entry")

	return f
}

// NewBlock allocates and appends a new, empty basic block, returning its
// ID.
func (f *Function) NewBlock(label string) BlockID {
	id := f.nextBlockID
	f.nextBlockID++
	f.Blocks = append(f.Blocks, &BasicBlock{ID: id, Label: label})

	return id
}

// Block returns the block with the given ID.
func (f *Function) Block(id BlockID) *BasicBlock {
	return f.Blocks[id]
}

// EntryBlock returns the function's distinguished entry block.
func (f *Function) EntryBlock() *BasicBlock {
	return f.Blocks[f.EntryBlockID]
}

// LinkTo records a CFG edge from one block to another, maintained
// bidirectionally.
func (f *Function) LinkTo(from, to BlockID) {
	linkTo(f.Blocks, from, to)
}

// NextInstructionID mints a fresh instruction id, unique within this
// function.
func (f *Function) NextInstructionID() InstructionID {
	id := f.nextInstrID
	f.nextInstrID++

	return id
}

// ParamBytes returns the total byte size of this function's parameters,
// reported in the code generator's function-label comment.
func (f *Function) ParamBytes() int {
	total := 0
	for _, p := range f.Params {
		total += p.Type.ByteSize()
	}

	return total
}

// LocalBytes returns the total byte size of this function's local
// variables (not including parameters).
func (f *Function) LocalBytes() int {
	total := 0
	for _, t := range f.LocalVariables {
		total += t.ByteSize()
	}

	return total
}

// ComputeReachability performs a depth-first traversal from the entry
// block and returns the set of reachable block IDs (spec.md section 4.3).
func (f *Function) ComputeReachability() map[BlockID]bool {
	visited := make(map[BlockID]bool, len(f.Blocks))

	var walk func(BlockID)
	walk = func(id BlockID) {
		if visited[id] {
			return
		}

		visited[id] = true

		for _, succ := range f.Blocks[id].Successors {
			walk(succ)
		}
	}

	walk(f.EntryBlockID)

	return visited
}
