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

// Package diag implements the diagnostic taxonomy of spec.md section 7:
// every compiler phase accumulates a list of Diagnostics rather than
// aborting on the first problem, and the pipeline decides per-phase whether
// downstream stages can still run.
package diag

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/sixc-lang/sixc/pkg/source"
)

// Severity classifies a Diagnostic.  Warnings never fail the build; Errors
// do (spec.md section 7, "User-visible failure behavior").
type Severity int

const (
	// Info is a purely informational diagnostic (e.g. a stat the user asked
	// to see).
	Info Severity = iota
	// Warning never causes a non-zero exit on its own.
	Warning
	// Error causes a non-zero exit and, depending on the phase, prevents
	// later phases from running.
	Error
)

// String renders the severity the way it appears in rendered diagnostics.
func (s Severity) String() string {
	switch s {
	case Info:
		return "INFO"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Internal error codes (spec.md section 7): these indicate a compiler bug,
// not a problem with the user's program.
const (
	CodeInternalSSAVerification = "INTERNAL-SSA-VERIFY"
	CodeInternalUnhandledOpcode = "INTERNAL-UNHANDLED-OPCODE"
)

// Diagnostic is the uniform shape every phase reports through: a severity,
// a machine-parseable upper-case code, an English message and the source
// span it concerns.
type Diagnostic struct {
	Severity Severity
	Code     string
	Message  string
	Span     source.Span
}

// New constructs a Diagnostic.
func New(severity Severity, code, message string, span source.Span) Diagnostic {
	return Diagnostic{severity, code, message, span}
}

// Errorf is a convenience constructor for Error-severity diagnostics.
func Errorf(code string, span source.Span, format string, args ...any) Diagnostic {
	return New(Error, code, fmt.Sprintf(format, args...), span)
}

// Warnf is a convenience constructor for Warning-severity diagnostics.
func Warnf(code string, span source.Span, format string, args ...any) Diagnostic {
	return New(Warning, code, fmt.Sprintf(format, args...), span)
}

// Error implements the error interface so a Diagnostic can be returned,
// wrapped, or combined with multierr directly.
func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s %s: %s (%s)", d.Severity, d.Code, d.Message, d.Span)
}

// List is an accumulated, per-phase diagnostic list (spec.md section 7:
// "Diagnostics are accumulated on a per-phase list, then returned alongside
// the result of that phase").
type List []Diagnostic

// Add appends one diagnostic.
func (l *List) Add(d Diagnostic) {
	*l = append(*l, d)
}

// AddAll appends every diagnostic from another list.
func (l *List) AddAll(other List) {
	*l = append(*l, other...)
}

// HasErrors reports whether the list contains any Error-severity entry;
// this is exactly the condition spec.md section 7 uses to decide whether
// the command should exit non-zero and whether later phases should run.
func (l List) HasErrors() bool {
	for _, d := range l {
		if d.Severity == Error {
			return true
		}
	}

	return false
}

// Errors filters to just the Error-severity diagnostics.
func (l List) Errors() List {
	return l.filter(Error)
}

// Warnings filters to just the Warning-severity diagnostics.
func (l List) Warnings() List {
	return l.filter(Warning)
}

func (l List) filter(severity Severity) List {
	var out List

	for _, d := range l {
		if d.Severity == severity {
			out = append(out, d)
		}
	}

	return out
}

// Join combines a diagnostic list into a single error value using
// go.uber.org/multierr, preserving every diagnostic rather than losing all
// but the first; used at the CLI boundary to produce the process's final
// error (spec.md section 7: "All diagnostics are printed before the program
// exits").
func (l List) Join() error {
	var err error

	for _, d := range l {
		err = multierr.Append(err, d)
	}

	return err
}
