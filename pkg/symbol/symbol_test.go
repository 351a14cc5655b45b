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
package symbol

import (
	"sort"
	"testing"

	"github.com/sixc-lang/sixc/pkg/ast"
)

func TestDeclareRejectsRedeclarationInSameScope(t *testing.T) {
	s := NewScope()

	if ok := s.Declare(&Entry{Name: "x", Kind: KindVariable, Type: ast.TypeRef{Name: "byte"}}); !ok {
		t.Fatalf("expected first declaration of x to succeed")
	}

	if ok := s.Declare(&Entry{Name: "x", Kind: KindVariable, Type: ast.TypeRef{Name: "word"}}); ok {
		t.Fatalf("expected redeclaration of x in the same scope to fail")
	}
}

func TestPushAllowsShadowingAnOuterDeclaration(t *testing.T) {
	root := NewScope()
	root.Declare(&Entry{Name: "x", Kind: KindVariable, Type: ast.TypeRef{Name: "byte"}})

	child := root.Push()
	if ok := child.Declare(&Entry{Name: "x", Kind: KindVariable, Type: ast.TypeRef{Name: "word"}}); !ok {
		t.Fatalf("expected shadowing declaration in a child scope to succeed")
	}

	if e, ok := child.Lookup("x"); !ok || e.Type.Name != "word" {
		t.Fatalf("expected child scope's Lookup to find its own x, got %+v, %v", e, ok)
	}

	if e, ok := root.Lookup("x"); !ok || e.Type.Name != "byte" {
		t.Fatalf("expected root scope's x to remain unaffected, got %+v, %v", e, ok)
	}
}

func TestLookupWalksUpThroughEnclosingScopes(t *testing.T) {
	root := NewScope()
	root.Declare(&Entry{Name: "g", Kind: KindVariable})

	child := root.Push()
	grandchild := child.Push()

	if _, ok := grandchild.Lookup("g"); !ok {
		t.Fatalf("expected Lookup to find g declared two scopes up")
	}

	if _, ok := grandchild.LookupLocal("g"); ok {
		t.Fatalf("expected LookupLocal not to see an ancestor's declaration")
	}
}

func TestLookupMissingNameReturnsFalse(t *testing.T) {
	s := NewScope()
	if _, ok := s.Lookup("nope"); ok {
		t.Fatalf("expected Lookup of an undeclared name to fail")
	}
}

func TestScopeParentReflectsNesting(t *testing.T) {
	root := NewScope()
	child := root.Push()

	if child.Parent() != root {
		t.Fatalf("expected child's Parent to be root")
	}

	if root.Parent() != nil {
		t.Fatalf("expected root's Parent to be nil")
	}
}

func TestTableExportedReturnsOnlyExportedEntries(t *testing.T) {
	table := NewTable("demo")
	table.Root.Declare(&Entry{Name: "helper", Kind: KindFunction, Module: "demo", Exported: false})
	table.Root.Declare(&Entry{Name: "Main", Kind: KindFunction, Module: "demo", Exported: true})
	table.Root.Declare(&Entry{Name: "Clamp", Kind: KindFunction, Module: "demo", Exported: true})

	exported := table.Exported()

	names := make([]string, 0, len(exported))
	for _, e := range exported {
		names = append(names, e.Name)
	}
	sort.Strings(names)

	if len(names) != 2 || names[0] != "Clamp" || names[1] != "Main" {
		t.Fatalf("expected exactly [Clamp Main], got %v", names)
	}
}
