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

// Package symbol implements the hierarchical symbol table of spec.md
// section 2: nested scopes with lookup by name, each entry recording its
// declaration site and type.  The table references AST declaration nodes
// rather than copying them; the AST outlives the table (spec.md section 5).
package symbol

import (
	"github.com/sixc-lang/sixc/pkg/ast"
)

// Kind classifies a symbol table entry.
type Kind uint8

// The symbol kinds a scope can hold.
const (
	KindVariable Kind = iota
	KindConstant
	KindFunction
	KindParameter
	KindModule
)

// Entry is one resolved name: where it came from and what it denotes.
type Entry struct {
	Name    string
	Kind    Kind
	Type    ast.TypeRef
	Decl    ast.Node
	Module  string
	Exported bool
}

// Scope is one level of lexical nesting: function body, block, or the
// module top level.  Scopes form a tree via Parent; lookup walks upward.
type Scope struct {
	parent  *Scope
	entries map[string]*Entry
	// children is retained so a caller can walk the whole tree (e.g. for
	// dumping a symbol table), but lookup never needs it.
	children []*Scope
}

// NewScope constructs a root scope (module or global level).
func NewScope() *Scope {
	return &Scope{nil, make(map[string]*Entry), nil}
}

// Push creates and returns a new child scope nested inside this one.
func (s *Scope) Push() *Scope {
	child := &Scope{s, make(map[string]*Entry), nil}
	s.children = append(s.children, child)

	return child
}

// Parent returns the enclosing scope, or nil for a root scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Declare adds a new entry to this (innermost) scope.  It returns false,
// without modifying the scope, if name is already declared directly in
// this scope (shadowing an outer declaration is fine; redeclaring in the
// same scope is a semantic error the caller should report).
func (s *Scope) Declare(e *Entry) bool {
	if _, exists := s.entries[e.Name]; exists {
		return false
	}

	s.entries[e.Name] = e

	return true
}

// Lookup searches this scope and then each enclosing scope in turn,
// returning the first match.
func (s *Scope) Lookup(name string) (*Entry, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if e, ok := scope.entries[name]; ok {
			return e, true
		}
	}

	return nil, false
}

// LookupLocal searches only this scope, not its ancestors.
func (s *Scope) LookupLocal(name string) (*Entry, bool) {
	e, ok := s.entries[name]
	return e, ok
}

// Table is the symbol table for one module: a root Scope plus a name index
// for every declaration in that module's top level, used by module-graph
// and import resolution to check "imported symbol not found" /
// "imported symbol not exported" (spec.md section 7).
type Table struct {
	Module string
	Root   *Scope
}

// NewTable constructs an (initially empty) symbol table for one module.
func NewTable(module string) *Table {
	return &Table{module, NewScope()}
}

// Exported returns every entry in the root scope marked exported, in
// declaration order is not guaranteed (map iteration); callers needing
// determinism should sort by Name.
func (t *Table) Exported() []*Entry {
	var out []*Entry

	for _, e := range t.Root.entries {
		if e.Exported {
			out = append(out, e)
		}
	}

	return out
}
