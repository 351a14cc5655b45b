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

import "github.com/sixc-lang/sixc/pkg/il"

// DominatorTree is the immediate-dominator relation over one function's
// reachable blocks, plus the derived children lists the renaming pass walks
// in pre-order (spec.md section 4.4).
type DominatorTree struct {
	entry    il.BlockID
	idom     map[il.BlockID]il.BlockID
	children map[il.BlockID][]il.BlockID
}

// IDom returns the immediate dominator of b, or (entry, false) if b is the
// entry block itself (which has no immediate dominator).
func (t *DominatorTree) IDom(b il.BlockID) (il.BlockID, bool) {
	if b == t.entry {
		return t.entry, false
	}

	id, ok := t.idom[b]

	return id, ok
}

// Children returns the blocks whose immediate dominator is b, in
// ascending BlockID order.
func (t *DominatorTree) Children(b il.BlockID) []il.BlockID {
	return t.children[b]
}

// Dominates reports whether a dominates b (reflexively: a dominates
// itself).
func (t *DominatorTree) Dominates(a, b il.BlockID) bool {
	for cur := b; ; {
		if cur == a {
			return true
		}

		next, ok := t.IDom(cur)
		if !ok {
			return cur == a
		}

		if next == cur {
			return cur == a
		}

		cur = next
	}
}

// reversePostorder performs a depth-first traversal from the entry block
// and returns blocks in reverse postorder: the order the iterative
// dominance fixpoint (Cooper, Harvey & Kennedy, "A Simple, Fast Dominance
// Algorithm") expects, with the entry block first.
func reversePostorder(f *il.Function) []il.BlockID {
	visited := make(map[il.BlockID]bool, len(f.Blocks))

	var post []il.BlockID

	var walk func(il.BlockID)
	walk = func(id il.BlockID) {
		if visited[id] {
			return
		}

		visited[id] = true

		for _, succ := range f.Block(id).Successors {
			walk(succ)
		}

		post = append(post, id)
	}

	walk(f.EntryBlockID)

	rpo := make([]il.BlockID, len(post))
	for i, id := range post {
		rpo[len(post)-1-i] = id
	}

	return rpo
}

// ComputeDominators builds the dominator tree of f using the iterative
// fixpoint algorithm: `Dom(b) = {b} union (intersection of Dom(p) for
// every processed predecessor p)`, converging monotonically over
// reverse-postorder sweeps (spec.md section 4.4).
func ComputeDominators(f *il.Function) *DominatorTree {
	rpo := reversePostorder(f)

	postNumber := make(map[il.BlockID]int, len(rpo))
	for i, id := range rpo {
		// Higher postNumber means earlier in reverse postorder; the entry
		// block gets the highest number, matching the Cooper/Harvey/Kennedy
		// convention used by intersect below.
		postNumber[id] = len(rpo) - i
	}

	idom := make(map[il.BlockID]il.BlockID, len(rpo))
	entry := f.EntryBlockID
	idom[entry] = entry

	intersect := func(a, b il.BlockID) il.BlockID {
		for a != b {
			for postNumber[a] < postNumber[b] {
				a = idom[a]
			}

			for postNumber[b] < postNumber[a] {
				b = idom[b]
			}
		}

		return a
	}

	changed := true
	for changed {
		changed = false

		for _, b := range rpo {
			if b == entry {
				continue
			}

			var newIdom il.BlockID

			haveFirst := false

			for _, p := range f.Block(b).Predecessors {
				if _, processed := idom[p]; !processed {
					continue
				}

				if !haveFirst {
					newIdom = p
					haveFirst = true

					continue
				}

				newIdom = intersect(newIdom, p)
			}

			if !haveFirst {
				continue
			}

			if cur, ok := idom[b]; !ok || cur != newIdom {
				idom[b] = newIdom
				changed = true
			}
		}
	}

	delete(idom, entry)

	children := make(map[il.BlockID][]il.BlockID, len(idom))
	for b, p := range idom {
		children[p] = append(children[p], b)
	}

	for p, list := range children {
		children[p] = sortedBlockIDs(list)
	}

	return &DominatorTree{entry: entry, idom: idom, children: children}
}

func sortedBlockIDs(ids []il.BlockID) []il.BlockID {
	out := append([]il.BlockID{}, ids...)

	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}

	return out
}
