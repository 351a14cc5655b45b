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

// Package modgraph implements the module dependency graph of spec.md
// section 4.1: a directed graph of module-name -> module-name import
// edges, supporting cycle detection and a topological compilation order.
package modgraph

import (
	"sort"
	"strings"

	"github.com/sixc-lang/sixc/pkg/source"
)

// Edge records where, in the source, a "from imports to" dependency arose.
type Edge struct {
	From     string
	To       string
	Location source.Span
}

// Graph is a directed graph of modules: nodes are fully-qualified module
// names, edges are import relationships.  addEdge is idempotent on the
// node set and overwrites any existing edge's location (spec.md section
// 4.1).
type Graph struct {
	nodes map[string]bool
	// order preserves first-insertion order so topologicalOrder is
	// deterministic for disconnected nodes (spec.md: "disconnected nodes
	// included").
	order []string
	// adjacency maps a module to its outgoing edges, keyed by target so a
	// repeat addEdge just overwrites the location.
	adjacency map[string]map[string]Edge
	// reverse is the dependents index, maintained alongside adjacency.
	reverse map[string]map[string]bool
}

// NewGraph constructs an empty module graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:     make(map[string]bool),
		adjacency: make(map[string]map[string]Edge),
		reverse:   make(map[string]map[string]bool),
	}
}

// AddNode registers a module name; idempotent.
func (g *Graph) AddNode(name string) {
	if g.nodes[name] {
		return
	}

	g.nodes[name] = true
	g.order = append(g.order, name)
	g.adjacency[name] = make(map[string]Edge)
	g.reverse[name] = make(map[string]bool)
}

// AddEdge records that `from` imports `to`, auto-creating both nodes.
// Calling this again for the same (from, to) pair overwrites the recorded
// location rather than duplicating the edge.
func (g *Graph) AddEdge(from, to string, loc source.Span) {
	g.AddNode(from)
	g.AddNode(to)
	g.adjacency[from][to] = Edge{from, to, loc}
	g.reverse[to][from] = true
}

// GetDependencies returns the modules `name` imports from, sorted by
// name.
func (g *Graph) GetDependencies(name string) []string {
	var deps []string

	for to := range g.adjacency[name] {
		deps = append(deps, to)
	}

	sort.Strings(deps)

	return deps
}

// GetDependents returns the modules that import `name`.
func (g *Graph) GetDependents(name string) []string {
	var deps []string

	for from := range g.reverse[name] {
		deps = append(deps, from)
	}

	sort.Strings(deps)

	return deps
}

// CycleInfo describes one detected circular dependency.
type CycleInfo struct {
	Cycle    []string
	Location source.Span
}

// DetectCycles performs a recursive depth-first search tracking the
// current path, and reports every cycle found (spec.md section 4.1: "any
// cycle is fatal for compilation but non-fatal for the detector itself --
// it reports all cycles and then returns"). A self-loop (a -> a) is
// reported as a one-element-path cycle closing on itself.
func (g *Graph) DetectCycles() []CycleInfo {
	var (
		cycles  []CycleInfo
		visited = make(map[string]bool)
	)

	for _, name := range g.order {
		if !visited[name] {
			g.dfsDetectCycles(name, nil, make(map[string]int), visited, &cycles)
		}
	}

	return cycles
}

// dfsDetectCycles walks outgoing edges from `node`, maintaining `path` (the
// current DFS stack) and `onPath` (node -> index in path, for O(1) cycle
// detection). `visited` records nodes whose entire subtree has already been
// explored, so no node is processed twice across separate DFS roots.
func (g *Graph) dfsDetectCycles(
	node string, path []string, onPath map[string]int, visited map[string]bool, cycles *[]CycleInfo,
) {
	path = append(path, node)
	onPath[node] = len(path) - 1

	// Iterate targets deterministically so cycle reports are stable.
	targets := g.GetDependencies(node)
	for _, to := range targets {
		if idx, onStack := onPath[to]; onStack {
			cycle := append([]string{}, path[idx:]...)
			cycle = append(cycle, to)
			*cycles = append(*cycles, CycleInfo{cycle, g.adjacency[node][to].Location})

			continue
		}

		if !visited[to] {
			g.dfsDetectCycles(to, path, onPath, visited, cycles)
		}
	}

	delete(onPath, node)
	visited[node] = true
}

// TopologicalOrder returns every node exactly once such that every edge
// points from an earlier to a later position (Kahn's algorithm), with
// disconnected nodes included. If the graph has cycles the result is only
// a best-effort order over the acyclic remainder plus the leftover nodes
// appended in insertion order -- callers must check DetectCycles first.
func (g *Graph) TopologicalOrder() []string {
	indegree := make(map[string]int, len(g.nodes))
	for _, n := range g.order {
		indegree[n] = 0
	}

	for _, n := range g.order {
		for to := range g.adjacency[n] {
			indegree[to]++
		}
	}

	var (
		ready []string
		order []string
		seen  = make(map[string]bool)
	)

	for _, n := range g.order {
		if indegree[n] == 0 {
			ready = append(ready, n)
		}
	}

	for len(ready) > 0 {
		sort.Strings(ready)
		n := ready[0]
		ready = ready[1:]

		if seen[n] {
			continue
		}

		seen[n] = true
		order = append(order, n)

		for _, to := range g.GetDependencies(n) {
			indegree[to]--
			if indegree[to] == 0 {
				ready = append(ready, to)
			}
		}
	}

	// Any remaining nodes are part of a cycle; append them in insertion
	// order so the result still names every node exactly once.
	for _, n := range g.order {
		if !seen[n] {
			order = append(order, n)
			seen[n] = true
		}
	}

	return order
}

// CompilationOrder is the exact reverse of TopologicalOrder: leaf modules
// (no outgoing edges) first, so dependencies compile before dependents.
func (g *Graph) CompilationOrder() []string {
	topo := g.TopologicalOrder()
	rev := make([]string, len(topo))

	for i, n := range topo {
		rev[len(topo)-1-i] = n
	}

	return rev
}

// Render produces an indented textual dump of the graph for the modgraph
// CLI subcommand, grounded in the teacher's convention of a human-readable
// Lisp-free printer for graph-shaped data.
func (g *Graph) Render() string {
	var b strings.Builder

	for _, n := range g.order {
		b.WriteString(n)
		b.WriteString(":\n")

		for _, to := range g.GetDependencies(n) {
			b.WriteString("  -> ")
			b.WriteString(to)
			b.WriteByte('\n')
		}
	}

	return b.String()
}
