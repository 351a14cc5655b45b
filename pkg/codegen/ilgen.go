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

// Package codegen implements spec.md sections 4.6 and 4.7: lowering a
// module's AST + symbol table into typed IL (this file and funcgen.go,
// exprgen.go, intrinsics.go), and lowering IL into AsmIL (lower.go).
//
// The IL generator reads declaration types directly off the AST rather
// than through the symbol table: pkg/modgraph has already established a
// dependency order by the time codegen runs, and within one module every
// type a generator needs (parameter types, return types, global types) is
// already sitting on the declaration node.
package codegen

import (
	"github.com/sixc-lang/sixc/pkg/ast"
	"github.com/sixc-lang/sixc/pkg/diag"
	"github.com/sixc-lang/sixc/pkg/il"
)

// Generator holds the state shared across every function lowered from one
// module: the dataflow metadata arena (consulted when an intrinsic needs a
// compile-time-constant argument), and the global/return-type tables every
// function body's expression lowering may need to resolve an identifier or
// call it doesn't itself declare.
type Generator struct {
	meta        *ast.Metadata
	diags       diag.List
	globals     map[string]il.Type
	funcReturns map[string]il.Type
}

// GenerateModule lowers one AST module into an IL module (spec.md section
// 4.6). meta is the metadata arena dataflow analyses have already
// annotated; constAddr below reads ConstantValue off it when a `peek`/
// `poke` argument isn't a literal.
func GenerateModule(mod *ast.Module, meta *ast.Metadata) (*il.Module, diag.List) {
	g := &Generator{
		meta:        meta,
		globals:     make(map[string]il.Type),
		funcReturns: make(map[string]il.Type),
	}

	out := il.NewModule(mod.Name)

	for _, decl := range mod.Declarations {
		switch d := decl.(type) {
		case *ast.Variable:
			t := typeOrDefault(d.TypeAnnotation)
			g.globals[d.Name] = t
			out.Globals = append(out.Globals, il.Global{Name: d.Name, Type: t})
		case *ast.Function:
			g.funcReturns[d.Name] = typeFromRef(d.ReturnType)
		}
	}

	for _, decl := range mod.Declarations {
		fn, ok := decl.(*ast.Function)
		if !ok || fn.Body == nil {
			continue // external/forward declaration: signature recorded above, no body to lower
		}

		ilFn, diags := g.generateFunction(fn)
		g.diags.AddAll(diags)
		out.AddFunction(ilFn)

		if fn.Name == "main" {
			out.EntryPoint = fn.Name
		}
	}

	return out, g.diags
}

// generateFunction lowers one function body into a fresh il.Function.
func (g *Generator) generateFunction(fn *ast.Function) (*il.Function, diag.List) {
	params := make([]il.Param, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = il.Param{Name: p.Name, Type: typeFromRef(p.Type)}
	}

	ilFn := il.NewFunction(fn.Name, params, typeFromRef(fn.ReturnType))
	ilFn.IsCallback = fn.IsCallback

	fg := &funcGen{g: g, fn: ilFn, block: ilFn.EntryBlockID}
	fg.walkStmts(fn.Body)

	if !fg.cur().Sealed() {
		fg.emit(il.Instruction{Op: il.OpReturn})
	}

	return ilFn, fg.diags
}

// typeFromRef resolves a source-level type annotation to its IL type.
func typeFromRef(ref ast.TypeRef) il.Type {
	base := scalarType(ref.Name)

	if ref.ArraySize != nil {
		return il.NewArray(base, ref.ArraySize)
	}

	if ref.Pointer {
		return il.NewPointer(base)
	}

	return base
}

// typeOrDefault resolves an optional type annotation, falling back to Byte
// for the inferred case (spec.md leaves initializer-based inference to the
// external semantic analyser; this generator only consumes what's already
// resolved).
func typeOrDefault(ref *ast.TypeRef) il.Type {
	if ref == nil {
		return il.TByte
	}

	return typeFromRef(*ref)
}

func scalarType(name string) il.Type {
	switch name {
	case "void":
		return il.TVoid
	case "bool":
		return il.TBool
	case "word":
		return il.TWord
	default:
		// "byte", or a user-defined alias -- this target has no struct
		// types (ast.TypeRef.ByteSize's elementSize makes the same call).
		return il.TByte
	}
}
