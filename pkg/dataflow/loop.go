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
package dataflow

import "github.com/sixc-lang/sixc/pkg/cfg"

// Loop is one natural loop: a header all loop paths pass through, and
// every block reachable from the header without leaving the loop.
type Loop struct {
	Header cfg.BlockID
	Body   []cfg.BlockID
}

// dominators computes the same iterative fixpoint as pkg/ssa, but over
// cfg.Graph's AST-level blocks rather than il.Function's IL-level ones --
// the two CFGs are different graphs serving different consumers (this
// one backs loop analysis at the AST stage, before
// any IL exists), so this is a second, smaller computation rather than a
// shared one.
func dominators(graph *cfg.Graph) map[cfg.BlockID]cfg.BlockID {
	order := reversePostorderCfg(graph)

	postNumber := make(map[cfg.BlockID]int, len(order))
	for i, id := range order {
		postNumber[id] = len(order) - i
	}

	idom := make(map[cfg.BlockID]cfg.BlockID, len(order))
	idom[graph.EntryID] = graph.EntryID

	intersect := func(a, b cfg.BlockID) cfg.BlockID {
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

		for _, b := range order {
			if b == graph.EntryID {
				continue
			}

			var newIdom cfg.BlockID

			haveFirst := false

			for _, p := range graph.Block(b).Predecessors {
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

	return idom
}

func reversePostorderCfg(graph *cfg.Graph) []cfg.BlockID {
	visited := make(map[cfg.BlockID]bool, len(graph.Blocks))

	var post []cfg.BlockID

	var walk func(cfg.BlockID)
	walk = func(id cfg.BlockID) {
		if visited[id] {
			return
		}

		visited[id] = true

		for _, succ := range graph.Block(id).Successors {
			walk(succ)
		}

		post = append(post, id)
	}

	walk(graph.EntryID)

	rpo := make([]cfg.BlockID, len(post))
	for i, id := range post {
		rpo[len(post)-1-i] = id
	}

	return rpo
}

// NaturalLoops finds every back edge (an edge n -> h where h dominates
// n) and, for each, computes the natural loop it heads: h plus every
// block that can reach n by walking predecessors without passing through
// h (Aho/Sethi/Ullman's standard natural-loop construction).
func NaturalLoops(graph *cfg.Graph) []Loop {
	idom := dominators(graph)

	dominatesFn := func(a, b cfg.BlockID) bool {
		for cur := b; ; {
			if cur == a {
				return true
			}

			next, ok := idom[cur]
			if !ok || next == cur {
				return cur == a
			}

			cur = next
		}
	}

	var loops []Loop

	for _, b := range graph.Blocks {
		for _, succ := range b.Successors {
			if !dominatesFn(succ, b.ID) {
				continue
			}

			loops = append(loops, buildLoop(graph, succ, b.ID))
		}
	}

	return loops
}

func buildLoop(graph *cfg.Graph, header, tail cfg.BlockID) Loop {
	inLoop := map[cfg.BlockID]bool{header: true, tail: true}
	worklist := []cfg.BlockID{tail}

	for len(worklist) > 0 {
		b := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		for _, p := range graph.Block(b).Predecessors {
			if !inLoop[p] {
				inLoop[p] = true
				worklist = append(worklist, p)
			}
		}
	}

	body := make([]cfg.BlockID, 0, len(inLoop))
	for id := range inLoop {
		body = append(body, id)
	}

	return Loop{Header: header, Body: sortedBlockIDsCfg(body)}
}

func sortedBlockIDsCfg(ids []cfg.BlockID) []cfg.BlockID {
	out := append([]cfg.BlockID{}, ids...)

	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}

	return out
}
