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
package lspdiag

import (
	"testing"

	"go.lsp.dev/protocol"

	"github.com/sixc-lang/sixc/pkg/diag"
	"github.com/sixc-lang/sixc/pkg/source"
)

func span(file string, line, col int) source.Span {
	p := source.Position{Line: line, Col: col}
	return source.Span{Start: p, End: p, File: file}
}

func TestParamsGroupsDiagnosticsByFile(t *testing.T) {
	diags := diag.List{
		diag.Errorf("CODEGEN-UNSUPPORTED-OPCODE", span("a.6c", 3, 5), "no native opcode for Mul"),
		diag.Warnf("FRAME-SPILL", span("b.6c", 1, 1), "spilled to RAM"),
		diag.Errorf("CODEGEN-UNSUPPORTED-OPCODE", span("a.6c", 10, 1), "no native opcode for Div"),
	}

	params := Params(diags)

	if len(params) != 2 {
		t.Fatalf("expected 2 files' worth of params, got %d", len(params))
	}

	if got := len(params[0].Diagnostics); got != 2 {
		t.Fatalf("expected 2 diagnostics for a.6c, got %d", got)
	}

	if got := len(params[1].Diagnostics); got != 1 {
		t.Fatalf("expected 1 diagnostic for b.6c, got %d", got)
	}
}

func TestConvertTranslatesSeverityAndZeroIndexesPosition(t *testing.T) {
	diags := diag.List{
		diag.Errorf("INTERNAL-UNHANDLED-OPCODE", span("a.6c", 3, 5), "boom"),
	}

	grouped := Convert(diags)

	var found *protocol.Diagnostic

	for _, ds := range grouped {
		for i := range ds {
			found = &ds[i]
		}
	}

	if found == nil {
		t.Fatalf("expected one converted diagnostic")
	}

	if found.Severity != protocol.DiagnosticSeverityError {
		t.Fatalf("expected error severity, got %v", found.Severity)
	}

	if found.Range.Start.Line != 2 || found.Range.Start.Character != 4 {
		t.Fatalf("expected 0-indexed line 2, col 4, got %+v", found.Range.Start)
	}

	if found.Message != "boom" {
		t.Fatalf("expected message to round-trip, got %q", found.Message)
	}
}

func TestParamsIsDeterministicallyOrdered(t *testing.T) {
	diags := diag.List{
		diag.Warnf("X", span("z.6c", 1, 1), "z"),
		diag.Warnf("X", span("a.6c", 1, 1), "a"),
	}

	params := Params(diags)

	if string(params[0].URI) >= string(params[1].URI) {
		t.Fatalf("expected URIs sorted ascending, got %q then %q", params[0].URI, params[1].URI)
	}
}
