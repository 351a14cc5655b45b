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
package frame

import (
	"testing"

	"github.com/sixc-lang/sixc/pkg/ast"
	"github.com/sixc-lang/sixc/pkg/callgraph"
	"github.com/sixc-lang/sixc/pkg/il"
	"github.com/sixc-lang/sixc/pkg/source"
)

func TestAllocateAssignsNonOverlappingFrames(t *testing.T) {
	leaf := il.NewFunction("leaf", []il.Param{{Name: "p", Type: il.TByte}}, il.TVoid)
	leaf.LocalVariables = map[string]il.Type{"x": il.TWord}

	caller := il.NewFunction("caller", nil, il.TVoid)
	caller.LocalVariables = map[string]il.Type{"y": il.TByte}

	gen := ast.NewIDGen()
	astLeaf := ast.NewFunction(gen, source.Span{}, "leaf", nil, ast.TypeRef{Name: "void"}, nil, false, false)
	astCaller := ast.NewFunction(gen, source.Span{}, "caller", nil, ast.TypeRef{Name: "void"}, nil, false, false)

	g := callgraph.NewGraph()
	g.AddFunction(astLeaf)
	g.AddFunction(astCaller)
	g.AddCall("caller", "leaf", source.Span{})

	allocs, diags := Allocate([]*il.Function{leaf, caller}, g, DefaultMemoryMap)
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}

	leafAlloc, callerAlloc := allocs["leaf"], allocs["caller"]
	if leafAlloc.Size != 3 { // 1 byte param + 2 byte local
		t.Fatalf("expected leaf frame size 3, got %d", leafAlloc.Size)
	}

	if callerAlloc.Size != 1 {
		t.Fatalf("expected caller frame size 1, got %d", callerAlloc.Size)
	}

	leafEnd := leafAlloc.Base + uint16(leafAlloc.Size)
	if callerAlloc.Base < leafEnd && leafAlloc.Base < callerAlloc.Base+uint16(callerAlloc.Size) {
		t.Fatalf("expected non-overlapping frames, got leaf=%+v caller=%+v", leafAlloc, callerAlloc)
	}
}

func TestAllocateRefusesRecursiveGraph(t *testing.T) {
	gen := ast.NewIDGen()
	astA := ast.NewFunction(gen, source.Span{}, "a", nil, ast.TypeRef{Name: "void"}, nil, false, false)

	g := callgraph.NewGraph()
	g.AddFunction(astA)
	g.AddCall("a", "a", source.Span{})

	fnA := il.NewFunction("a", nil, il.TVoid)

	allocs, diags := Allocate([]*il.Function{fnA}, g, DefaultMemoryMap)
	if allocs != nil {
		t.Fatalf("expected no allocations for a recursive graph")
	}

	if !diags.HasErrors() {
		t.Fatalf("expected a recursion diagnostic, got %v", diags)
	}
}

func TestAllocateSpillsToRAMWhenZeroPageExhausted(t *testing.T) {
	tiny := MemoryMap{CodeStart: 0x1000, StackPointer: 0x01, ZeroPageStart: 0x02, ZeroPageEnd: 0x02}

	fn := il.NewFunction("f", nil, il.TVoid)
	fn.LocalVariables = map[string]il.Type{"a": il.TByte, "b": il.TByte}

	g := callgraph.NewGraph()
	gen := ast.NewIDGen()
	g.AddFunction(ast.NewFunction(gen, source.Span{}, "f", nil, ast.TypeRef{Name: "void"}, nil, false, false))

	allocs, diags := Allocate([]*il.Function{fn}, g, tiny)
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}

	alloc := allocs["f"]
	if len(alloc.Slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(alloc.Slots))
	}

	zp, ram := 0, 0
	for _, s := range alloc.Slots {
		if s.ZeroPage {
			zp++
		} else {
			ram++
		}
	}

	if zp != 1 || ram != 1 {
		t.Fatalf("expected one zero-page and one RAM slot once zero page is exhausted, got zp=%d ram=%d", zp, ram)
	}
}
