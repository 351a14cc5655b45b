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

// Package callgraph builds the call graph over resolved functions and
// detects direct and indirect recursion (spec.md section 4.2). The Static
// Frame Allocation model assigns one fixed RAM region per function
// (spec.md Glossary); recursion would have two live activations of the
// same function corrupt each other's region, so it is a compile-time
// error rather than a runtime concern.
package callgraph

import (
	"sort"
	"strings"

	"github.com/sixc-lang/sixc/pkg/ast"
	"github.com/sixc-lang/sixc/pkg/diag"
	"github.com/sixc-lang/sixc/pkg/source"
)

// Graph is the call graph: edges `caller -> callee` for every direct call
// expression that resolved to a known function.
type Graph struct {
	functions map[string]*ast.Function
	edges     map[string]map[string]source.Span
	order     []string
}

// NewGraph constructs an empty call graph.
func NewGraph() *Graph {
	return &Graph{
		functions: make(map[string]*ast.Function),
		edges:     make(map[string]map[string]source.Span),
	}
}

// AddFunction registers a function as a call graph node.
func (g *Graph) AddFunction(f *ast.Function) {
	if _, ok := g.functions[f.Name]; ok {
		return
	}

	g.functions[f.Name] = f
	g.order = append(g.order, f.Name)
	g.edges[f.Name] = make(map[string]source.Span)
}

// AddCall records that caller directly calls callee at loc. Both names
// must already have been added via AddFunction; calls to unresolved names
// (externs, intrinsics) are simply not recorded, matching spec.md's "for
// every direct call expression resolved to a known function".
func (g *Graph) AddCall(caller, callee string, loc source.Span) {
	if _, ok := g.functions[caller]; !ok {
		return
	}

	if _, ok := g.functions[callee]; !ok {
		return
	}

	g.edges[caller][callee] = loc
}

// Names returns every function registered in the graph, in registration
// order.
func (g *Graph) Names() []string {
	return append([]string{}, g.order...)
}

// Function returns the AST node a name was registered with.
func (g *Graph) Function(name string) (*ast.Function, bool) {
	f, ok := g.functions[name]
	return f, ok
}

// Callees returns the functions `name` directly calls, sorted for
// determinism.
func (g *Graph) Callees(name string) []string {
	out := make([]string, 0, len(g.edges[name]))
	for callee := range g.edges[name] {
		out = append(out, callee)
	}

	sort.Strings(out)

	return out
}

// Cycle describes one strongly-connected component of size > 1, or a
// self-loop, reported as a recursion error.
type Cycle struct {
	Functions []string
	Locations []source.Span
}

// DetectRecursion runs Tarjan's strongly-connected-component algorithm
// over the call graph and reports every SCC of size > 1 plus every
// self-loop (spec.md section 4.2).
func (g *Graph) DetectRecursion() []Cycle {
	t := &tarjan{
		graph:   g,
		index:   make(map[string]int),
		lowlink: make(map[string]int),
		onStack: make(map[string]bool),
	}

	for _, name := range g.order {
		if _, visited := t.index[name]; !visited {
			t.strongConnect(name)
		}
	}

	var cycles []Cycle

	for _, scc := range t.sccs {
		_, selfLoop := g.edges[scc[0]][scc[0]]
		if len(scc) > 1 || selfLoop {
			cycles = append(cycles, buildCycle(g, scc))
		}
	}

	return cycles
}

func buildCycle(g *Graph, scc []string) Cycle {
	sorted := append([]string{}, scc...)
	sort.Strings(sorted)

	var locs []source.Span

	for _, name := range scc {
		for _, callee := range g.Callees(name) {
			for _, other := range scc {
				if callee == other {
					locs = append(locs, g.edges[name][callee])
				}
			}
		}
	}

	return Cycle{Functions: sorted, Locations: locs}
}

// Diagnostics converts every detected Cycle into an Error diagnostic
// naming every function in the cycle, one diagnostic per cycle location
// (spec.md section 4.2: "Error messages name every function in the
// cycle"), for the caller to surface alongside every other phase's
// diagnostics.
func Diagnostics(cycles []Cycle) diag.List {
	var diags diag.List

	for _, c := range cycles {
		names := strings.Join(c.Functions, " -> ")

		for _, loc := range c.Locations {
			diags.Add(diag.Errorf("ANALYTICAL-RECURSION", loc, "recursion detected: %s", names))
		}

		if len(c.Locations) == 0 {
			diags.Add(diag.Errorf("ANALYTICAL-RECURSION", source.Span{}, "recursion detected: %s", names))
		}
	}

	return diags
}

// tarjan implements the classic algorithm (Tarjan 1972): a single DFS that
// assigns each node a discovery index and a lowlink, pushing nodes onto an
// explicit stack and popping a complete SCC whenever a node's lowlink
// equals its own index.
type tarjan struct {
	graph     *Graph
	nextIndex int
	index     map[string]int
	lowlink   map[string]int
	onStack   map[string]bool
	stack     []string
	sccs      [][]string
}

func (t *tarjan) strongConnect(v string) {
	t.index[v] = t.nextIndex
	t.lowlink[v] = t.nextIndex
	t.nextIndex++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.graph.Callees(v) {
		if _, visited := t.index[w]; !visited {
			t.strongConnect(w)
			t.lowlink[v] = min(t.lowlink[v], t.lowlink[w])
		} else if t.onStack[w] {
			t.lowlink[v] = min(t.lowlink[v], t.index[w])
		}
	}

	if t.lowlink[v] == t.index[v] {
		var scc []string

		for {
			n := len(t.stack) - 1
			w := t.stack[n]
			t.stack = t.stack[:n]
			t.onStack[w] = false
			scc = append(scc, w)

			if w == v {
				break
			}
		}

		t.sccs = append(t.sccs, scc)
	}
}
