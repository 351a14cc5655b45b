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
package cmd

import (
	"github.com/sixc-lang/sixc/pkg/ast"
	"github.com/sixc-lang/sixc/pkg/callgraph"
	"github.com/sixc-lang/sixc/pkg/il"
	"github.com/sixc-lang/sixc/pkg/modgraph"
	"github.com/sixc-lang/sixc/pkg/source"
)

// demoModule hand-builds a small IL fixture exercising a comparison, a
// branch, a direct call and a hardware write -- standing in for the
// parser/front-end this compiler's mid-end takes as given (spec.md section
// 1: the AST is consumed as input, not produced by this module). It mirrors
// the way pkg/codegen's own tests construct fixtures: by hand, no text
// format to parse.
func demoModule() (*il.Module, *callgraph.Graph) {
	mod := il.NewModule("demo")
	mod.Globals = append(mod.Globals, il.Global{Name: "lastBorderColor", Type: il.TByte})

	clamp := buildClampFunction()
	main := buildMainFunction()

	mod.AddFunction(clamp)
	mod.AddFunction(main)

	gen := ast.NewIDGen()
	graph := callgraph.NewGraph()
	graph.AddFunction(ast.NewFunction(gen, source.Span{}, "clamp", nil, ast.TypeRef{Name: "byte"}, nil, false, false))
	graph.AddFunction(ast.NewFunction(gen, source.Span{}, "main", nil, ast.TypeRef{Name: "void"}, nil, true, false))
	graph.AddCall("main", "clamp", source.Span{})

	return mod, graph
}

// buildClampFunction implements, in IL, the equivalent of:
//
//	fn clamp(x byte) byte {
//	    if x > 100 { return 100 }
//	    return x
//	}
func buildClampFunction() *il.Function {
	fn := il.NewFunction("clamp", []il.Param{{Name: "x", Type: il.TByte}}, il.TByte)

	overID := fn.NewBlock("over")
	okID := fn.NewBlock("ok")

	xReg := fn.Registers.Alloc(il.TByte)
	limit := int64(100)
	limitReg := fn.Registers.Alloc(il.TByte)
	cmpReg := fn.Registers.Alloc(il.TBool)

	entry := fn.EntryBlock()
	entry.Append(il.Instruction{Op: il.OpLoadVar, Result: &xReg, Var: "x"})
	entry.Append(il.Instruction{Op: il.OpConst, Result: &limitReg, Imm: &limit})
	entry.Append(il.Instruction{Op: il.OpCmpGt, Result: &cmpReg, Operands: []il.RegisterID{xReg, limitReg}})
	entry.Append(il.Instruction{
		Op: il.OpBranch, Operands: []il.RegisterID{cmpReg},
		Then: overID, Else: okID, HasThen: true, HasElse: true,
	})
	fn.LinkTo(fn.EntryBlockID, overID)
	fn.LinkTo(fn.EntryBlockID, okID)

	fn.Block(overID).Append(il.Instruction{Op: il.OpReturn, Operands: []il.RegisterID{limitReg}})
	fn.Block(okID).Append(il.Instruction{Op: il.OpReturn, Operands: []il.RegisterID{xReg}})

	return fn
}

// buildMainFunction implements, in IL, the equivalent of:
//
//	fn main() {
//	    result byte = clamp(150)
//	    poke($D020, result)
//	}
func buildMainFunction() *il.Function {
	fn := il.NewFunction("main", nil, il.TVoid)
	fn.LocalVariables["result"] = il.TByte

	argImm := int64(150)
	argReg := fn.Registers.Alloc(il.TByte)
	resultReg := fn.Registers.Alloc(il.TByte)
	borderColor := uint16(0xD020)

	entry := fn.EntryBlock()
	entry.Append(il.Instruction{Op: il.OpConst, Result: &argReg, Imm: &argImm})
	entry.Append(il.Instruction{Op: il.OpCall, Result: &resultReg, Operands: []il.RegisterID{argReg}, Callee: "clamp"})
	entry.Append(il.Instruction{Op: il.OpStoreVar, Var: "result", Operands: []il.RegisterID{resultReg}})
	entry.Append(il.Instruction{Op: il.OpHardwareWrite, Addr: &borderColor, Operands: []il.RegisterID{resultReg}})
	entry.Append(il.Instruction{Op: il.OpReturn})

	return fn
}

// demoModuleGraph builds a small module dependency graph for the modgraph
// subcommand: "main" depends on "clamp" and "hardware", mirroring the two
// IL functions demoModule constructs plus a leaf module standing in for a
// hardware-register package. withCycle additionally makes "hardware"
// depend back on "main", to demonstrate DetectCycles' report.
func demoModuleGraph(withCycle bool) *modgraph.Graph {
	g := modgraph.NewGraph()
	g.AddEdge("main", "clamp", source.Span{})
	g.AddEdge("main", "hardware", source.Span{})

	if withCycle {
		g.AddEdge("hardware", "main", source.Span{})
	}

	return g
}
