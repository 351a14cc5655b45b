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
package emit

import (
	"strings"
	"testing"

	"github.com/sixc-lang/sixc/pkg/asmil"
	"github.com/sixc-lang/sixc/pkg/config"
	"github.com/sixc-lang/sixc/pkg/source"
)

func sampleModule() *asmil.Module {
	m := asmil.NewModule("main", asmil.Target{Architecture: "c64"})
	b := asmil.NewBuilder(m)

	b.Label("main", asmil.LabelFunction, true, "entry point")
	b.Label("loop", asmil.LabelBlock, false, "")
	b.Instruction(asmil.Instruction{Mnemonic: "LDA", Mode: asmil.AddrImmediate, Operand: "#$01", Bytes: 2, Cycles: 2,
		SourceLoc: source.Span{File: "f.6c", Start: source.Position{Line: 3}}})
	b.Instruction(asmil.Instruction{Mnemonic: "STA", Mode: asmil.AddrAbsoluteX, Operand: "$0400", Bytes: 3, Cycles: 5})
	b.Data(asmil.Data{Kind: asmil.DataByte, Values: []int64{1, 2, 3}, Size: 3})
	b.Comment("a plain note", asmil.CommentLine)

	return m
}

func TestEmitRendersLabelsExportedAndBlock(t *testing.T) {
	m := sampleModule()

	text, _ := Emit(m, config.DefaultEmitOptions)

	if !strings.Contains(text, "+main:") {
		t.Fatalf("expected exported label +main:, got:\n%s", text)
	}

	if !strings.Contains(text, ".loop:") {
		t.Fatalf("expected block-local label .loop:, got:\n%s", text)
	}
}

func TestEmitAppliesIndexedAddressingSuffix(t *testing.T) {
	m := sampleModule()

	text, _ := Emit(m, config.DefaultEmitOptions)

	if !strings.Contains(text, "STA $0400,X") {
		t.Fatalf("expected absolute,X operand suffix, got:\n%s", text)
	}
}

func TestEmitHonorsConfigurableHexPrefixAndMnemonicCase(t *testing.T) {
	m := sampleModule()

	opts := config.DefaultEmitOptions
	opts.HexPrefix = "0x"
	opts.UppercaseMnemonics = false

	text, _ := Emit(m, opts)

	if !strings.Contains(text, "lda #0x01") {
		t.Fatalf("expected lowercase mnemonic with 0x-prefixed operand, got:\n%s", text)
	}
}

func TestEmitOmitsCommentsWhenDisabled(t *testing.T) {
	m := sampleModule()

	opts := config.DefaultEmitOptions
	opts.IncludeComments = false

	text, _ := Emit(m, opts)

	if strings.Contains(text, "a plain note") {
		t.Fatalf("expected comments to be omitted, got:\n%s", text)
	}
}

func TestEmitProducesSourceMapEntryForInstructionWithSpan(t *testing.T) {
	m := sampleModule()

	_, srcMap := Emit(m, config.DefaultEmitOptions)

	if len(srcMap) != 1 {
		t.Fatalf("expected exactly one source map entry, got %d: %v", len(srcMap), srcMap)
	}

	if srcMap[0].Span.Start.Line != 3 {
		t.Fatalf("expected source map entry for line 3, got %+v", srcMap[0].Span)
	}
}

func TestEmitIncludesCycleCountsWhenEnabled(t *testing.T) {
	m := sampleModule()

	opts := config.DefaultEmitOptions
	opts.IncludeCycleCounts = true

	text, _ := Emit(m, opts)

	if !strings.Contains(text, "2b 2c") {
		t.Fatalf("expected byte/cycle annotation, got:\n%s", text)
	}
}

func TestEmitRendersDataDirective(t *testing.T) {
	m := sampleModule()

	text, _ := Emit(m, config.DefaultEmitOptions)

	if !strings.Contains(text, "!byte $01, $02, $03") {
		t.Fatalf("expected a !byte directive, got:\n%s", text)
	}
}
