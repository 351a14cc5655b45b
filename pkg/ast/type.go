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

// TypeRef is a source-level type annotation, as written by the programmer
// (or omitted, in which case the semantic analyser must infer one).  It is
// distinct from il.Type: this is what parses out of the token stream, that
// is what the IL generator resolves it to.
type TypeRef struct {
	// Name is one of "void", "bool", "byte", "word", or a user-defined
	// struct/alias name.
	Name string
	// Pointer is true if this is a pointer-to-Name.
	Pointer bool
	// ArraySize is nil for a non-array type, Some(n) for a fixed-size array,
	// and present-but-unused-size for an unsized array parameter.
	ArraySize *int
}

// IsArray reports whether this type ref denotes an array.
func (t TypeRef) IsArray() bool {
	return t.ArraySize != nil
}

// ByteSize returns the number of bytes a value of this source-level type
// occupies under the Static Frame Allocation model (spec.md Glossary),
// mirroring il.Type.ByteSize for the analyses that run before IL exists
// (pkg/dataflow's stack-depth computation, pkg/frame's allocator).
func (t TypeRef) ByteSize() int {
	if t.Pointer {
		return 2
	}

	if t.ArraySize != nil {
		return *t.ArraySize * elementSize(t.Name)
	}

	return elementSize(t.Name)
}

func elementSize(name string) int {
	switch name {
	case "void":
		return 0
	case "bool", "byte":
		return 1
	case "word":
		return 2
	default:
		// User-defined alias; this language has no struct types, so any
		// other name is either unresolved (caught earlier by the symbol
		// resolver) or behaves as a byte-sized opaque handle.
		return 1
	}
}
