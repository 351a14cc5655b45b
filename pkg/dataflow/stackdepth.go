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
	"github.com/sixc-lang/sixc/pkg/callgraph"
	"github.com/sixc-lang/sixc/pkg/diag"
)

// DefaultStackDepthWarningThreshold is the default warning threshold below
// the hard 256-byte hardware stack limit (spec.md section 4.5).
const DefaultStackDepthWarningThreshold = 200

// hardwareStackLimit is the 6502's hardware stack size; spec.md section
// 4.5 calls exceeding it an error regardless of the configured warning
// threshold.
const hardwareStackLimit = 256

// StackDepths computes, for every function in graph, the worst-case
// 6502 hardware stack consumption of calling it:
//
//	StackDepth(f) = 2 (return address) + paramBytes(f) + localBytes(f) +
//	                max(StackDepth(g) for g called by f)
//
// reached to a fixpoint over the call graph (spec.md section 4.5). Because
// pkg/callgraph already forbids recursion, the graph is a DAG, so one pass
// in reverse topological order (leaves first) already gives the fixed
// point; this still iterates to a fixpoint explicitly rather than relying
// on topological order, since DetectRecursion may not have run yet (a
// caller analysing a single function in isolation, or a cyclic program
// whose diagnostics haven't been surfaced yet, must still terminate). The
// sweep is bounded at len(names) iterations (spec.md section 8: "fixpoint
// reached within N iterations where N = number of functions"), so a cyclic
// call graph still terminates instead of growing every depth without
// bound. The bound guarantees termination, not that a cycle is always
// flagged as an overflow within it: a cycle whose members have small
// frames may still read a finite, not-yet-converged depth when the sweep
// stops, the same as any other non-DAG input this analysis was never
// designed to model correctly (recursion is pkg/callgraph's job to reject
// before this pass runs).
// Results are written onto each Function node's Annotation.StackDepth in
// meta, and also returned as a name-keyed map for frame allocation to
// consume directly.
func StackDepths(graph *callgraph.Graph, meta *ast.Metadata, warnThreshold int) (map[string]int, diag.List) {
	if warnThreshold <= 0 {
		warnThreshold = DefaultStackDepthWarningThreshold
	}

	names := graph.Names()

	own := make(map[string]int, len(names))
	for _, name := range names {
		fn, _ := graph.Function(name)
		own[name] = ownFrameBytes(fn)
	}

	depth := make(map[string]int, len(names))
	for _, name := range names {
		depth[name] = 2 + own[name]
	}

	maxIterations := len(names)
	if maxIterations == 0 {
		maxIterations = 1
	}

	changed := true
	for iteration := 0; changed && iteration < maxIterations; iteration++ {
		changed = false

		for _, name := range names {
			calleeMax := 0

			for _, callee := range graph.Callees(name) {
				if depth[callee] > calleeMax {
					calleeMax = depth[callee]
				}
			}

			next := 2 + own[name] + calleeMax
			if next != depth[name] {
				depth[name] = next
				changed = true
			}
		}
	}

	var diags diag.List

	for _, name := range names {
		fn, _ := graph.Function(name)
		ann := meta.Get(fn)
		ann.StackDepth = depth[name]

		if depth[name] > hardwareStackLimit {
			diags.Add(diag.Errorf(
				"RESOURCE-STACK-OVERFLOW", fn.Span(),
				"function %q has a worst-case stack depth of %d bytes, exceeding the 256-byte hardware stack",
				name, depth[name],
			))
		} else if depth[name] > warnThreshold {
			diags.Add(diag.Warnf(
				"RESOURCE-STACK-DEPTH", fn.Span(),
				"function %q has a worst-case stack depth of %d bytes, above the configured warning threshold of %d",
				name, depth[name], warnThreshold,
			))
		}
	}

	return depth, diags
}

// ownFrameBytes sums a function's own parameter and local-variable bytes,
// excluding callees -- the per-function contribution StackDepths combines
// with the max over callees.
func ownFrameBytes(fn *ast.Function) int {
	total := 0

	for _, p := range fn.Params {
		total += p.Type.ByteSize()
	}

	total += localBytes(fn.Body)

	return total
}

func localBytes(stmts []ast.Stmt) int {
	total := 0

	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.LocalVariable:
			if s.TypeAnnotation != nil {
				total += s.TypeAnnotation.ByteSize()
			}
		case *ast.If:
			total += localBytes(s.Then)
			total += localBytes(s.Else)
		case *ast.While:
			total += localBytes(s.Body)
		case *ast.DoWhile:
			total += localBytes(s.Body)
		case *ast.For:
			total += localBytes(s.Body)
		case *ast.Switch:
			for _, c := range s.Cases {
				total += localBytes(c.Body)
			}

			total += localBytes(s.Default)
		case *ast.Block:
			total += localBytes(s.Stmts)
		}
	}

	return total
}
