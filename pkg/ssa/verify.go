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
	"github.com/sixc-lang/sixc/pkg/diag"
	"github.com/sixc-lang/sixc/pkg/il"
	"github.com/sixc-lang/sixc/pkg/source"
)

// Verify checks the three invariants spec.md section 4.4 asks SSA
// construction to optionally self-check before handing the function to
// the dataflow analyses: every phi's operand count matches its block's
// predecessor count, no register is defined twice, and every use is
// dominated by its definition.
func Verify(f *il.Function, tree *DominatorTree) diag.List {
	var diags diag.List

	defBlock := make(map[il.RegisterID]il.BlockID)
	seenDef := make(map[il.RegisterID]bool)

	for _, b := range f.Blocks {
		for _, in := range b.Instructions {
			if in.Result == nil {
				continue
			}

			if seenDef[*in.Result] {
				diags.Add(diag.Errorf(
					diag.CodeInternalSSAVerification, in.Span,
					"register %%%d defined more than once", *in.Result,
				))
			}

			seenDef[*in.Result] = true
			defBlock[*in.Result] = b.ID
		}
	}

	for _, b := range f.Blocks {
		for _, in := range b.Instructions {
			if in.Op == il.OpPhi {
				if len(in.Incoming) != len(b.Predecessors) {
					diags.Add(diag.Errorf(
						diag.CodeInternalSSAVerification, in.Span,
						"phi in block %q has %d incoming edges but block has %d predecessors",
						b.Label, len(in.Incoming), len(b.Predecessors),
					))
				}

				continue
			}

			for _, operand := range in.Operands {
				checkDominance(&diags, tree, defBlock, b.ID, operand, in.Span)
			}
		}
	}

	return diags
}

func checkDominance(
	diags *diag.List, tree *DominatorTree, defBlock map[il.RegisterID]il.BlockID,
	useBlock il.BlockID, reg il.RegisterID, span source.Span,
) {
	def, ok := defBlock[reg]
	if !ok {
		return
	}

	if !tree.Dominates(def, useBlock) {
		diags.Add(diag.Errorf(
			diag.CodeInternalSSAVerification, span,
			"register %%%d used in block %d is not dominated by its definition in block %d",
			reg, useBlock, def,
		))
	}
}
