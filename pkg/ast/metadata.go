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
package ast

// Annotation is a typed struct-of-optionals: the set of results every
// dataflow analysis (pkg/dataflow) may attach to one node.  spec.md's data
// model describes this as "a mutable metadata map keyed by an
// enumeration"; section 9 asks for it to be replaced with "a struct of
// optionals per analysis, or an arena-backed side table keyed by node id" --
// this is both at once: one optional field per analysis output, stored in
// an arena (Metadata below) indexed by NodeID.
type Annotation struct {
	// ConstantValue is set by constant propagation when this expression
	// folds to a single known value.
	ConstantValue *ConstantValue
	// ConstantFoldable marks an expression node whose ConstantValue was
	// derived by folding two already-constant operands (as opposed to being
	// a literal to begin with).
	ConstantFoldable bool
	// EffectivelyConst marks an identifier with exactly one definition,
	// which is itself constant.
	EffectivelyConst bool
	// BranchConstant records the statically-known truth value of an `if`'s
	// condition, when constant propagation could determine one.
	BranchConstant *bool
	// DeadCodeUnreachable marks a statement that can never execute.
	DeadCodeUnreachable bool
	// DeadCodeReason explains why, for diagnostics.
	DeadCodeReason string
	// EscapeEscapes marks a variable that escapes its defining function.
	EscapeEscapes bool
	// EscapeReason explains why, when EscapeEscapes is true.
	EscapeReason string
	// StackDepth is only meaningful on Function nodes: the worst-case
	// 6502 hardware stack consumption of a call to this function.
	StackDepth int
	// LoopInvariant marks an expression, inside some enclosing loop, whose
	// operands are all defined outside the loop (or are themselves
	// invariant) -- a hoisting candidate the optimizer may act on.
	LoopInvariant bool
}

// ConstantValue is the lattice value constant propagation computes for an
// expression or variable (spec.md section 4.5): Top (not yet seen, encoded
// here as a nil *ConstantValue), a known constant, or Bottom (not constant).
type ConstantValue struct {
	// IsBottom, if true, means "provably not a single constant"; Value is
	// meaningless in that case. A *ConstantValue that is nil altogether
	// represents Top (no information yet).
	IsBottom bool
	Value    int64
}

// Metadata is the arena owning every node's Annotation, keyed by NodeID.
// It belongs to the Circuit it annotates (spec.md section 5: "Metadata maps
// on AST nodes are owned by the AST node; analyses write into them").
// Because nodes here are int-keyed structs rather than heap cells carrying
// their own map, ownership is equivalently expressed as "owned by the
// Circuit's Metadata arena", which is simpler to reason about and avoids a
// map allocation per node that is never annotated.
type Metadata struct {
	entries map[NodeID]*Annotation
}

// NewMetadata constructs an empty arena.
func NewMetadata() *Metadata {
	return &Metadata{make(map[NodeID]*Annotation)}
}

// Get returns the Annotation for a node, creating an empty one on first
// access. The returned pointer is stable and may be mutated directly by an
// analysis -- this is the one sanctioned exception to "no mutation after
// construction" (spec.md section 5), matching the source's write-once-per-
// key discipline for exactly this map.
func (m *Metadata) Get(n Node) *Annotation {
	id := n.ID()
	if a, ok := m.entries[id]; ok {
		return a
	}

	a := &Annotation{}
	m.entries[id] = a

	return a
}

// Lookup returns the Annotation for a node without creating one, and
// whether it existed.
func (m *Metadata) Lookup(n Node) (*Annotation, bool) {
	a, ok := m.entries[n.ID()]
	return a, ok
}
