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
package asmil

// Target carries the code generator's chosen architecture tag (spec.md
// section 6: `target.architecture`, e.g. "c64", "vic20") through to the
// assembly module, purely for a comment/metadata header -- it selects no
// behavior in this package.
type Target struct {
	Architecture string
}

// Stats is the AsmIL module's own running byte/data tally (spec.md
// section 3's `AsmModule.stats`); pkg/codegen.Statistics is the richer,
// JSON-serializable superset exposed to the CLI `stats` subcommand
// (SPEC_FULL.md section 4), computed from this plus function/global
// counts codegen already tracks.
type Stats struct {
	CodeBytes     int
	DataBytes     int
	FunctionCount int
	GlobalCount   int
}

// Module is the AsmIL module: an ordered item stream plus a label index,
// exclusively owning both (spec.md section 5: "AsmModule exclusively owns
// its items and its label index"). It is produced fresh by the code
// generator and is write-once from the builder's perspective thereafter.
type Module struct {
	Name       string
	OutputFile string // empty means no `!to` directive
	Origin     *uint16
	Target     Target
	Items      []Item
	Labels     map[string]*Label
	Stats      Stats
}

// NewModule constructs an empty AsmIL module.
func NewModule(name string, target Target) *Module {
	return &Module{
		Name:   name,
		Target: target,
		Labels: make(map[string]*Label),
	}
}

// Builder appends items to a Module in sequence, maintaining its label
// index and running byte/data stats as each item is added -- the
// "write-once from the builder's perspective" lifecycle spec.md section 5
// describes; nothing outside Builder mutates a Module's Items slice.
type Builder struct {
	m *Module
}

// NewBuilder constructs a Builder writing into m.
func NewBuilder(m *Module) *Builder {
	return &Builder{m: m}
}

// Label appends and indexes a label.
func (b *Builder) Label(name string, kind LabelKind, exported bool, comment string) *Label {
	l := &Label{Name: name, Kind: kind, Exported: exported, Comment: comment}
	b.m.Items = append(b.m.Items, l)
	b.m.Labels[name] = l

	return l
}

// Instruction appends one emitted instruction and folds its byte size
// into the module's running Stats.CodeBytes; cycle counts stay on the
// instruction and are not totalled.
func (b *Builder) Instruction(in Instruction) {
	b.m.Items = append(b.m.Items, &in)
	b.m.Stats.CodeBytes += in.Bytes
}

// Data appends a data directive and folds its size into Stats.DataBytes.
func (b *Builder) Data(d Data) {
	b.m.Items = append(b.m.Items, &d)
	b.m.Stats.DataBytes += d.Size
}

// Comment appends a non-code annotation.
func (b *Builder) Comment(text string, style CommentStyle) {
	b.m.Items = append(b.m.Items, &Comment{Text: text, Style: style})
}

// Origin appends an origin directive and records it as the module's
// current origin in Module.Origin. pkg/emit renders each Origin item as
// `*= $XXXX` at its place in the item stream; it does not read
// Module.Origin.
func (b *Builder) Origin(addr uint16) {
	b.m.Items = append(b.m.Items, &Origin{Address: addr})
	b.m.Origin = &addr
}

// Blank appends one blank line.
func (b *Builder) Blank() {
	b.m.Items = append(b.m.Items, &Blank{})
}

// Raw appends verbatim text.
func (b *Builder) Raw(text string) {
	b.m.Items = append(b.m.Items, &Raw{Text: text})
}

// Module returns the module this builder writes into.
func (b *Builder) Module() *Module {
	return b.m
}
