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

import "github.com/sixc-lang/sixc/pkg/source"

// Declaration is implemented by every top-level item: modules, imports,
// globals and functions.
type Declaration interface {
	Node
	declaration()
}

// Circuit is the root of the AST: the whole program, as a sequence of
// modules.  Each module is compiled independently but may import symbols
// from others (pkg/modgraph resolves the order).
type Circuit struct {
	Modules []*Module
}

// Module is a single source file's top-level declarations, named for
// dependency resolution (pkg/modgraph) by its fully-qualified module name.
type Module struct {
	base
	Name         string
	Declarations []Declaration
}

func (*Module) declaration() {}

// Kind implements Node.
func (*Module) Kind() Kind { return KindModule }

// Import brings one or more identifiers from another module into scope.
type Import struct {
	base
	Idents []string
	Path   []string
	Alias  string // "" if unaliased
}

func (*Import) declaration() {}

// Kind implements Node.
func (*Import) Kind() Kind { return KindImport }

// Variable is a top-level (global) variable or constant declaration.
type Variable struct {
	base
	Name           string
	TypeAnnotation *TypeRef
	Initializer    Expr
	IsConst        bool
	IsExported     bool
}

func (*Variable) declaration() {}

// Kind implements Node.
func (*Variable) Kind() Kind { return KindVariable }

// Param is a function parameter: a name plus its declared type.
type Param struct {
	Name string
	Type TypeRef
}

// Function declares a named function.  Body is nil for an external
// (forward) declaration; IsCallback marks functions used as hardware
// interrupt handlers, which the frame allocator and recursion detector
// treat specially (an ISR is never itself "called" by the program's call
// graph, but its stack depth still matters).
type Function struct {
	base
	Name       string
	Params     []Param
	ReturnType TypeRef
	Body       []Stmt
	IsExported bool
	IsCallback bool
}

func (*Function) declaration() {}

// Kind implements Node.
func (*Function) Kind() Kind { return KindFunction }

// NewModule constructs a Module node, minting a fresh NodeID from gen.
func NewModule(gen *IDGen, span source.Span, name string, decls []Declaration) *Module {
	return &Module{base{gen.fresh(), span}, name, decls}
}

// NewImport constructs an Import node.
func NewImport(gen *IDGen, span source.Span, idents, path []string, alias string) *Import {
	return &Import{base{gen.fresh(), span}, idents, path, alias}
}

// NewVariable constructs a Variable node.
func NewVariable(gen *IDGen, span source.Span, name string, typ *TypeRef, init Expr, isConst, isExported bool) *Variable {
	return &Variable{base{gen.fresh(), span}, name, typ, init, isConst, isExported}
}

// NewFunction constructs a Function node.
func NewFunction(
	gen *IDGen, span source.Span, name string, params []Param, ret TypeRef, body []Stmt, exported, callback bool,
) *Function {
	return &Function{base{gen.fresh(), span}, name, params, ret, body, exported, callback}
}

// IDGen is the exported name for idGen: the parser/builder constructs one
// per Circuit and threads it through every New* constructor so NodeIDs stay
// unique across the whole program.
type IDGen = idGen

// NewIDGen constructs a fresh generator, numbering from zero.
func NewIDGen() *IDGen {
	return &idGen{}
}
