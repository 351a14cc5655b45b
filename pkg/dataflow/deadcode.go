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

import (
	"github.com/sixc-lang/sixc/pkg/ast"
	"github.com/sixc-lang/sixc/pkg/cfg"
)

// DeadCode marks every block unreachable from entry once constant
// branch conditions are taken into account (spec.md section 4.5): a
// plain CFG reachability walk already catches structurally-unreachable
// blocks (pkg/cfg.Graph.ComputeReachability does that at construction
// time); this adds the second pass that also prunes the untaken side of
// a branch whose condition ConstantPropagation proved always-true or
// always-false -- read directly off the condition expression's
// Annotation rather than threaded through separately, since
// ConstantPropagation already wrote it there.
//
// Dead-store elimination (removing an assignment whose value is never
// read before being overwritten) is deliberately not implemented here:
// nothing downstream of this package currently consumes such a result,
// and the SSA mem2reg pass already removes the one case that matters for
// code size -- a promoted local's redundant store never survives
// renaming. Adding a dedicated dead-store pass with no consumer would be
// speculative.
func DeadCode(graph *cfg.Graph, meta *ast.Metadata) map[cfg.BlockID]string {
	reachable := make(map[cfg.BlockID]bool)

	var walk func(cfg.BlockID)

	walk = func(id cfg.BlockID) {
		if reachable[id] {
			return
		}

		reachable[id] = true

		block := graph.Block(id)

		if block.Term.Kind == cfg.TermBranch && block.Term.Cond != nil && len(block.Successors) == 2 {
			if ann, ok := meta.Lookup(block.Term.Cond); ok && isConstant(ann.ConstantValue) {
				// walkIf/walkWhile always link the then/true successor
				// first, the else/false successor second.
				if ann.ConstantValue.Value != 0 {
					walk(block.Successors[0])
				} else {
					walk(block.Successors[1])
				}

				return
			}
		}

		for _, succ := range block.Successors {
			walk(succ)
		}
	}

	walk(graph.EntryID)

	reasons := make(map[cfg.BlockID]string)

	for _, b := range graph.Blocks {
		if !reachable[b.ID] {
			reasons[b.ID] = "unreachable: no live path from the function entry reaches this block"
		}

		for _, stmt := range b.Stmts {
			if !reachable[b.ID] {
				ann := meta.Get(stmt)
				ann.DeadCodeUnreachable = true
				ann.DeadCodeReason = reasons[b.ID]
			}
		}
	}

	return reasons
}
