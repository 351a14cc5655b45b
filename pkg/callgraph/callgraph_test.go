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
package callgraph

import (
	"testing"

	"github.com/sixc-lang/sixc/pkg/ast"
	"github.com/sixc-lang/sixc/pkg/source"
)

func fn(name string) *ast.Function {
	gen := ast.NewIDGen()
	return ast.NewFunction(gen, source.Span{}, name, nil, ast.TypeRef{Name: "void"}, nil, false, false)
}

func TestAcyclicCallGraphHasNoCycles(t *testing.T) {
	g := NewGraph()
	g.AddFunction(fn("main"))
	g.AddFunction(fn("helper"))
	g.AddFunction(fn("leaf"))

	g.AddCall("main", "helper", source.Span{})
	g.AddCall("helper", "leaf", source.Span{})

	if cycles := g.DetectRecursion(); len(cycles) != 0 {
		t.Fatalf("expected no cycles, got %v", cycles)
	}
}

func TestDirectRecursionDetected(t *testing.T) {
	g := NewGraph()
	g.AddFunction(fn("factorial"))

	g.AddCall("factorial", "factorial", source.Span{Start: source.Position{Line: 3}})

	cycles := g.DetectRecursion()
	if len(cycles) != 1 {
		t.Fatalf("expected one cycle, got %d", len(cycles))
	}

	if len(cycles[0].Functions) != 1 || cycles[0].Functions[0] != "factorial" {
		t.Fatalf("unexpected cycle: %v", cycles[0])
	}
}

func TestIndirectRecursionDetected(t *testing.T) {
	g := NewGraph()
	g.AddFunction(fn("a"))
	g.AddFunction(fn("b"))
	g.AddFunction(fn("c"))

	g.AddCall("a", "b", source.Span{})
	g.AddCall("b", "c", source.Span{})
	g.AddCall("c", "a", source.Span{})

	cycles := g.DetectRecursion()
	if len(cycles) != 1 {
		t.Fatalf("expected one cycle, got %d", len(cycles))
	}

	if len(cycles[0].Functions) != 3 {
		t.Fatalf("expected all three functions in the cycle, got %v", cycles[0].Functions)
	}
}

func TestUnresolvedCallsAreIgnored(t *testing.T) {
	g := NewGraph()
	g.AddFunction(fn("main"))

	g.AddCall("main", "extern_not_registered", source.Span{})

	if callees := g.Callees("main"); len(callees) != 0 {
		t.Fatalf("expected call to unregistered function to be dropped, got %v", callees)
	}
}
