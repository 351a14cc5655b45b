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

import (
	"testing"

	"github.com/sixc-lang/sixc/pkg/source"
)

func span() source.Span {
	return source.NewSpan("t.6502", source.Position{Line: 1, Col: 1, Offset: 0}, source.Position{Line: 1, Col: 2, Offset: 1})
}

func TestIDGenAssignsUniqueIncreasingIDs(t *testing.T) {
	gen := NewIDGen()

	a := NewIdentifier(gen, span(), "a")
	b := NewIdentifier(gen, span(), "b")
	c := NewIdentifier(gen, span(), "c")

	if a.ID() == b.ID() || b.ID() == c.ID() || a.ID() == c.ID() {
		t.Fatalf("expected distinct IDs, got %d %d %d", a.ID(), b.ID(), c.ID())
	}

	if !(a.ID() < b.ID() && b.ID() < c.ID()) {
		t.Fatalf("expected increasing construction-order IDs, got %d %d %d", a.ID(), b.ID(), c.ID())
	}
}

func TestTwoIDGensAreIndependentlyNumbered(t *testing.T) {
	genA, genB := NewIDGen(), NewIDGen()

	a := NewIdentifier(genA, span(), "a")
	b := NewIdentifier(genB, span(), "b")

	if a.ID() != 0 || b.ID() != 0 {
		t.Fatalf("expected each generator to number from zero, got %d and %d", a.ID(), b.ID())
	}
}

func TestEveryNodeKindReportsItsTag(t *testing.T) {
	gen := NewIDGen()

	lit := NewLiteral(gen, span(), LiteralNumber, int64(42))
	ident := NewIdentifier(gen, span(), "x")
	fn := NewFunction(gen, span(), "clamp", []Param{{Name: "x", Type: TypeRef{Name: "byte"}}}, TypeRef{Name: "byte"}, nil, true, false)

	cases := []struct {
		node Node
		want Kind
	}{
		{lit, KindLiteral},
		{ident, KindIdentifier},
		{NewBinary(gen, span(), OpAdd, ident, lit), KindBinary},
		{NewUnary(gen, span(), OpNeg, lit), KindUnary},
		{NewCall(gen, span(), ident, []Expr{lit}), KindCall},
		{NewIndex(gen, span(), ident, lit), KindIndex},
		{NewAssignment(gen, span(), ident, AssignPlain, lit), KindAssignment},
		{NewMember(gen, span(), ident, "field"), KindMember},
		{fn, KindFunction},
		{NewReturn(gen, span(), lit), KindReturn},
		{NewBreak(gen, span()), KindBreak},
		{NewContinue(gen, span()), KindContinue},
		{NewBlock(gen, span(), nil), KindBlock},
		{NewLocalVariable(gen, span(), "y", nil, nil, false), KindLocalVariable},
	}

	for _, c := range cases {
		if got := c.node.Kind(); got != c.want {
			t.Fatalf("expected kind %v, got %v for %#v", c.want, got, c.node)
		}

		if got := c.node.Kind().String(); got == "Unknown" {
			t.Fatalf("expected a human-readable Kind.String() for %v", c.want)
		}
	}
}

func TestUnknownKindStringIsUnknown(t *testing.T) {
	if got := Kind(255).String(); got != "Unknown" {
		t.Fatalf("expected 'Unknown' for an unrecognised kind, got %q", got)
	}
}

func TestFunctionConstructorPreservesFields(t *testing.T) {
	gen := NewIDGen()
	params := []Param{{Name: "x", Type: TypeRef{Name: "byte"}}}
	fn := NewFunction(gen, span(), "clamp", params, TypeRef{Name: "byte"}, nil, true, false)

	if fn.Name != "clamp" || !fn.IsExported || fn.IsCallback {
		t.Fatalf("unexpected function fields: %+v", fn)
	}

	if len(fn.Params) != 1 || fn.Params[0].Name != "x" {
		t.Fatalf("unexpected params: %+v", fn.Params)
	}
}

func TestMetadataGetCreatesAndPersistsAnnotation(t *testing.T) {
	gen := NewIDGen()
	node := NewIdentifier(gen, span(), "x")
	md := NewMetadata()

	if _, ok := md.Lookup(node); ok {
		t.Fatalf("expected no annotation before first Get")
	}

	a := md.Get(node)
	a.EffectivelyConst = true

	again := md.Get(node)
	if !again.EffectivelyConst {
		t.Fatalf("expected Get to return the same stable Annotation across calls")
	}

	if found, ok := md.Lookup(node); !ok || found != again {
		t.Fatalf("expected Lookup to report the same Annotation Get created")
	}
}

func TestTypeRefByteSizeMatchesStaticFrameAllocationRules(t *testing.T) {
	three := 3

	cases := []struct {
		name string
		ref  TypeRef
		want int
	}{
		{"void", TypeRef{Name: "void"}, 0},
		{"bool", TypeRef{Name: "bool"}, 1},
		{"byte", TypeRef{Name: "byte"}, 1},
		{"word", TypeRef{Name: "word"}, 2},
		{"pointer to byte", TypeRef{Name: "byte", Pointer: true}, 2},
		{"array of 3 words", TypeRef{Name: "word", ArraySize: &three}, 6},
	}

	for _, c := range cases {
		if got := c.ref.ByteSize(); got != c.want {
			t.Fatalf("%s: got ByteSize %d, want %d", c.name, got, c.want)
		}
	}
}

func TestTypeRefIsArrayReflectsArraySize(t *testing.T) {
	three := 3

	if (TypeRef{Name: "byte"}).IsArray() {
		t.Fatalf("expected a scalar type ref not to be an array")
	}

	if !(TypeRef{Name: "byte", ArraySize: &three}).IsArray() {
		t.Fatalf("expected an array type ref to report IsArray")
	}
}

func TestMetadataIsKeyedPerNodeNotPerCall(t *testing.T) {
	gen := NewIDGen()
	a := NewIdentifier(gen, span(), "a")
	b := NewIdentifier(gen, span(), "b")
	md := NewMetadata()

	md.Get(a).StackDepth = 3
	md.Get(b).StackDepth = 7

	if md.Get(a).StackDepth != 3 || md.Get(b).StackDepth != 7 {
		t.Fatalf("expected independent annotations per node, got a=%d b=%d", md.Get(a).StackDepth, md.Get(b).StackDepth)
	}
}
