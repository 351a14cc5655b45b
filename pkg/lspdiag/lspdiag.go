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

// Package lspdiag adapts the core compiler's diag.List to the Language
// Server Protocol's PublishDiagnosticsParams, so an editor integration can
// be layered on top of this compiler without the core pipeline ever
// depending on go.lsp.dev itself (spec.md section 6, "Outputs ... for
// downstream tooling"). Only this package imports go.lsp.dev/protocol,
// go.lsp.dev/uri and go.lsp.dev/jsonrpc2.
package lspdiag

import (
	"context"
	"sort"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/sixc-lang/sixc/pkg/diag"
	"github.com/sixc-lang/sixc/pkg/source"
)

// methodPublishDiagnostics is the LSP notification method name; the
// go.lsp.dev/protocol package models methods as untyped strings rather
// than exported constants, so this is spelled out once here.
const methodPublishDiagnostics = "textDocument/publishDiagnostics"

// severity maps spec.md section 7's three-level Severity onto the LSP's
// four-level DiagnosticSeverity; Info has no LSP-native equivalent closer
// than Information.
func severity(s diag.Severity) protocol.DiagnosticSeverity {
	switch s {
	case diag.Error:
		return protocol.DiagnosticSeverityError
	case diag.Warning:
		return protocol.DiagnosticSeverityWarning
	default:
		return protocol.DiagnosticSeverityInformation
	}
}

// position converts a 1-indexed source.Position to the LSP's 0-indexed
// Position, clamping rather than panicking on a zero-value Position (a
// Diagnostic built without a known span still needs to serialize).
func position(p source.Position) protocol.Position {
	line := p.Line - 1
	if line < 0 {
		line = 0
	}

	col := p.Col - 1
	if col < 0 {
		col = 0
	}

	return protocol.Position{Line: uint32(line), Character: uint32(col)}
}

func toRange(s source.Span) protocol.Range {
	return protocol.Range{Start: position(s.Start), End: position(s.End)}
}

// Convert groups diags by source file and translates each into an LSP
// Diagnostic, keyed by the file's URI.
func Convert(diags diag.List) map[uri.URI][]protocol.Diagnostic {
	out := make(map[uri.URI][]protocol.Diagnostic)

	for _, d := range diags {
		u := uri.File(d.Span.File)
		out[u] = append(out[u], protocol.Diagnostic{
			Range:    toRange(d.Span),
			Severity: severity(d.Severity),
			Code:     d.Code,
			Source:   "sixc",
			Message:  d.Message,
		})
	}

	return out
}

// Params converts diags into one PublishDiagnosticsParams per source file,
// sorted by URI so the result is deterministic for tests and for replaying
// a session's diagnostics in a fixed order.
func Params(diags diag.List) []protocol.PublishDiagnosticsParams {
	grouped := Convert(diags)

	uris := make([]string, 0, len(grouped))
	for u := range grouped {
		uris = append(uris, string(u))
	}

	sort.Strings(uris)

	out := make([]protocol.PublishDiagnosticsParams, 0, len(uris))

	for _, u := range uris {
		out = append(out, protocol.PublishDiagnosticsParams{
			URI:         protocol.DocumentURI(u),
			Diagnostics: grouped[uri.URI(u)],
		})
	}

	return out
}

// Publish sends one textDocument/publishDiagnostics notification per
// affected file over conn, stopping at the first transport error.
func Publish(ctx context.Context, conn jsonrpc2.Conn, diags diag.List) error {
	for _, p := range Params(diags) {
		if err := conn.Notify(ctx, methodPublishDiagnostics, p); err != nil {
			return err
		}
	}

	return nil
}
