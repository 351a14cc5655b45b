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
	bitset "github.com/bits-and-blooms/bitset"

	"github.com/sixc-lang/sixc/pkg/il"
)

// Frontiers maps every block to its dominance frontier: the set of blocks
// where this block's dominance "stops", i.e. where two or more paths from
// this block's dominated region can first merge (spec.md section 4.4).
type Frontiers map[il.BlockID][]il.BlockID

// ComputeDominanceFrontiers walks predecessors up the dominator tree: for
// every block b with two or more predecessors, walk each predecessor up the
// dominator tree (stopping at idom(b)) adding b to each visited block's
// frontier. It does not traverse the dominator tree bottom-up.
func ComputeDominanceFrontiers(f *il.Function, tree *DominatorTree) Frontiers {
	df := make(Frontiers, len(f.Blocks))
	sets := make(map[il.BlockID]*bitset.BitSet, len(f.Blocks))

	for _, b := range f.Blocks {
		if len(b.Predecessors) < 2 {
			continue
		}

		idomB, ok := tree.IDom(b.ID)
		if !ok {
			idomB = tree.entry
		}

		for _, p := range b.Predecessors {
			runner := p

			for runner != idomB {
				set, exists := sets[runner]
				if !exists {
					set = bitset.New(uint(len(f.Blocks)))
					sets[runner] = set
				}

				set.Set(uint(b.ID))

				next, ok := tree.IDom(runner)
				if !ok {
					break
				}

				runner = next
			}
		}
	}

	for b, set := range sets {
		var frontier []il.BlockID

		for i, e := set.NextSet(0); e; i, e = set.NextSet(i + 1) {
			frontier = append(frontier, il.BlockID(i))
		}

		df[b] = frontier
	}

	return df
}

// IteratedFrontier computes the iterated dominance frontier of a set of
// blocks: repeatedly union in the frontier of every block already in the
// result, until a fixpoint is reached. This is the set of blocks where a
// variable defined in any of `defs` needs a phi (spec.md section 4.4).
func IteratedFrontier(df Frontiers, defs []il.BlockID) []il.BlockID {
	seen := make(map[il.BlockID]bool)
	worklist := append([]il.BlockID{}, defs...)

	for len(worklist) > 0 {
		b := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		for _, f := range df[b] {
			if !seen[f] {
				seen[f] = true
				worklist = append(worklist, f)
			}
		}
	}

	out := make([]il.BlockID, 0, len(seen))
	for b := range seen {
		out = append(out, b)
	}

	return sortedBlockIDs(out)
}
