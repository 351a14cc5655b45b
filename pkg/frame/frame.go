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

// Package frame implements the Static Frame Allocation model (spec.md
// Glossary): every function gets one fixed RAM region for its parameters
// and locals, assigned at compile time rather than pushed onto a runtime
// stack frame. This is what makes recursion impossible -- two live
// activations of the same function would corrupt each other's region --
// so allocation refuses to run over a call graph pkg/callgraph still
// reports a cycle in.
package frame

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sixc-lang/sixc/pkg/callgraph"
	"github.com/sixc-lang/sixc/pkg/diag"
	"github.com/sixc-lang/sixc/pkg/il"
)

// MemoryMap is the target's address-space layout (spec.md section 6's
// `TargetConfig.memoryMap`): where zero page runs, where the hardware
// stack pointer sits, and where generated code starts.
type MemoryMap struct {
	CodeStart     uint16
	StackPointer  uint8
	ZeroPageStart uint8
	ZeroPageEnd   uint8
}

// DefaultMemoryMap is the conventional 6502/C64-style layout: zero page
// $02-$8F free for variables (the low end is reserved by the KERNAL/BASIC
// ROM), hardware stack at $0100-$01FF untouched, static data filling
// $0200 up to codeStart.
var DefaultMemoryMap = MemoryMap{
	CodeStart:     0x0801,
	StackPointer:  0x01,
	ZeroPageStart: 0x02,
	ZeroPageEnd:   0x8f,
}

// dataStart is where non-zero-page variable storage begins: just above
// the hardware stack page, since $0100-$01FF is reserved for it
// regardless of StackPointer's exact value.
const dataStart = 0x0200

// Slot is one variable's address within its function's frame.
type Slot struct {
	Name     string
	Address  uint16
	Size     int
	ZeroPage bool
}

// Allocation is one function's fixed RAM region.
type Allocation struct {
	Function string
	Base     uint16
	Size     int
	Slots    []Slot
}

// Render produces a human-readable table of one function's frame,
// grounded on the teacher's register-allocation report convention (a
// plain indented dump, no external formatting library) -- the Static
// Frame Allocation model is otherwise invisible to a reader of the
// generated assembly (SPEC_FULL.md section 4).
func (a *Allocation) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s: $%04X-$%04X (%d bytes)\n", a.Function, a.Base, a.Base+uint16(a.Size)-1, a.Size)

	for _, s := range a.Slots {
		page := "ram"
		if s.ZeroPage {
			page = "zp "
		}

		fmt.Fprintf(&b, "  $%04X  %s  %-24s %d byte(s)\n", s.Address, page, s.Name, s.Size)
	}

	return b.String()
}

// Allocator assigns non-overlapping frames to a sequence of functions,
// preferring zero page addresses (cheaper addressing modes on the 6502)
// until it is exhausted, then spilling into ordinary RAM above the
// hardware stack page.
type Allocator struct {
	mm      MemoryMap
	nextZP  uint16
	nextRAM uint16
}

// NewAllocator constructs an Allocator over mm, starting both the
// zero-page and general-RAM cursors at their respective region starts.
func NewAllocator(mm MemoryMap) *Allocator {
	return &Allocator{mm: mm, nextZP: uint16(mm.ZeroPageStart), nextRAM: dataStart}
}

// Allocate assigns one frame per function, in the given order, and
// refuses to run at all if graph still reports a recursion cycle (the
// model this package implements is undefined in that case). Functions
// are the caller's responsibility to order; frames are placed in the
// order given.
func Allocate(functions []*il.Function, graph *callgraph.Graph, mm MemoryMap) (map[string]*Allocation, diag.List) {
	if cycles := graph.DetectRecursion(); len(cycles) > 0 {
		return nil, callgraph.Diagnostics(cycles)
	}

	a := NewAllocator(mm)

	out := make(map[string]*Allocation, len(functions))

	var diags diag.List

	for _, fn := range functions {
		alloc, fnDiags := a.allocateFunction(fn)
		diags.AddAll(fnDiags)
		out[fn.Name] = alloc
	}

	return out, diags
}

func (a *Allocator) allocateFunction(fn *il.Function) (*Allocation, diag.List) {
	var diags diag.List

	names := make([]string, 0, len(fn.Params)+len(fn.LocalVariables))
	sizes := make(map[string]int, cap(names))

	for _, p := range fn.Params {
		names = append(names, p.Name)
		sizes[p.Name] = p.Type.ByteSize()
	}

	localNames := make([]string, 0, len(fn.LocalVariables))
	for name := range fn.LocalVariables {
		localNames = append(localNames, name)
	}

	sort.Strings(localNames)

	for _, name := range localNames {
		names = append(names, name)
		sizes[name] = fn.LocalVariables[name].ByteSize()
	}

	base := a.nextRAM
	if len(names) > 0 {
		base = a.frameBase(names, sizes)
	}

	slots := make([]Slot, 0, len(names))

	var size int

	for _, name := range names {
		s := sizes[name]
		slots = append(slots, a.place(name, s))
		size += s
	}

	if size == 0 {
		return &Allocation{Function: fn.Name, Base: base, Size: 0, Slots: nil}, diags
	}

	return &Allocation{Function: fn.Name, Base: slots[0].Address, Size: size, Slots: slots}, diags
}

// frameBase previews the address the first slot of this function will
// land at, purely so Allocation.Base can report a single contiguous
// range header even though individual slots may straddle the zero
// page/RAM boundary (a function with more locals than remaining zero
// page has its overflow slots placed in RAM, not reported as a gap).
func (a *Allocator) frameBase(names []string, sizes map[string]int) uint16 {
	if a.zeroPageRemaining() >= sizes[names[0]] {
		return a.nextZP
	}

	return a.nextRAM
}

func (a *Allocator) zeroPageRemaining() int {
	return int(a.mm.ZeroPageEnd) + 1 - int(a.nextZP)
}

func (a *Allocator) place(name string, size int) Slot {
	if a.zeroPageRemaining() >= size {
		addr := a.nextZP
		a.nextZP += uint16(size)

		return Slot{Name: name, Address: addr, Size: size, ZeroPage: true}
	}

	addr := a.nextRAM
	a.nextRAM += uint16(size)

	return Slot{Name: name, Address: addr, Size: size, ZeroPage: false}
}
