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
	"sort"

	"github.com/sixc-lang/sixc/pkg/il"
)

// promotable is a scalar local variable or parameter that mem2reg can lift
// into registers. Arrays and globals are excluded: arrays because
// loadarray/storearray address individual elements (spec.md section 4.6),
// globals because they always escape (spec.md section 4.5) and must keep a
// stable memory address for other functions to observe.
func promotable(f *il.Function, name string) bool {
	if t, ok := f.LocalVariables[name]; ok {
		return t.Kind != il.Array
	}

	for _, p := range f.Params {
		if p.Name == name {
			return p.Type.Kind != il.Array
		}
	}

	return false
}

// defBlocks collects, for every promotable variable, the set of blocks
// containing at least one OpStoreVar to it.
func defBlocks(f *il.Function) map[string][]il.BlockID {
	seen := make(map[string]map[il.BlockID]bool)

	for _, b := range f.Blocks {
		for _, in := range b.Instructions {
			if in.Op != il.OpStoreVar || !promotable(f, in.Var) {
				continue
			}

			if seen[in.Var] == nil {
				seen[in.Var] = make(map[il.BlockID]bool)
			}

			seen[in.Var][b.ID] = true
		}
	}

	out := make(map[string][]il.BlockID, len(seen))

	for v, blocks := range seen {
		ids := make([]il.BlockID, 0, len(blocks))
		for id := range blocks {
			ids = append(ids, id)
		}

		out[v] = sortedBlockIDs(ids)
	}

	return out
}

// PlacePhis inserts one OpPhi instruction at the head of every block in
// each promotable variable's iterated dominance frontier (spec.md section
// 4.4). The phi's Result register is freshly allocated and its Var field
// records which source variable it promotes; Incoming is populated later
// by Rename. Returns, per variable, the blocks that received a phi.
func PlacePhis(f *il.Function, df Frontiers) map[string][]il.BlockID {
	placed := make(map[string][]il.BlockID)

	vars := make([]string, 0)
	for v := range defBlocks(f) {
		vars = append(vars, v)
	}

	sort.Strings(vars)

	defs := defBlocks(f)

	for _, v := range vars {
		varType := variableType(f, v)
		frontier := IteratedFrontier(df, defs[v])

		for _, b := range frontier {
			if hasPhiFor(f.Block(b), v) {
				continue
			}

			reg := f.Registers.AllocNamed(varType, v)
			f.Block(b).PrependPhi(il.Instruction{
				ID:     f.NextInstructionID(),
				Op:     il.OpPhi,
				Result: &reg,
				Var:    v,
			})
			placed[v] = append(placed[v], b)
		}
	}

	return placed
}

func hasPhiFor(b *il.BasicBlock, v string) bool {
	for _, in := range b.Phis() {
		if in.Var == v {
			return true
		}
	}

	return false
}

func variableType(f *il.Function, v string) il.Type {
	if t, ok := f.LocalVariables[v]; ok {
		return t
	}

	for _, p := range f.Params {
		if p.Name == v {
			return p.Type
		}
	}

	return il.TVoid
}
