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

// Package config holds the plain configuration structs threaded down the
// compilation pipeline (spec.md section 6), following the shape of the
// teacher's CompilationConfig: a struct of bools/enums passed explicitly
// from the CLI layer into the library, never a package-level global.
package config

import "github.com/sixc-lang/sixc/pkg/frame"

// DebugLevel controls comment density and source-location annotation in
// emitted assembly (spec.md section 6's `debug` option).
type DebugLevel uint8

// The debug levels spec.md section 6 enumerates.
const (
	DebugNone DebugLevel = iota
	DebugLine
	DebugFull
)

// OutputFormat selects whether the emitter wraps output for a BASIC
// loader stub (spec.md section 6's `format` option).
type OutputFormat uint8

// The output formats spec.md section 6 enumerates.
const (
	FormatAsm OutputFormat = iota
	FormatPRG
)

// TargetConfig is spec.md section 6's `{architecture, memoryMap}` target
// description: which code-generation table to use and where the target's
// address space is laid out.
type TargetConfig struct {
	Architecture string
	MemoryMap    frame.MemoryMap
}

// DefaultTargetConfig targets the c64, the architecture spec.md section 6
// uses in its own examples (`target.architecture: c64`).
var DefaultTargetConfig = TargetConfig{
	Architecture: "c64",
	MemoryMap:    frame.DefaultMemoryMap,
}

// CompilationConfig is the full set of recognized compiler configuration
// options from spec.md section 6, passed by value down the pipeline.
type CompilationConfig struct {
	Target TargetConfig

	Format OutputFormat
	// LoadAddress is the initial origin; zero means "use Target.MemoryMap.CodeStart".
	LoadAddress uint16
	BasicStub   bool
	SourceMap   bool
	Debug       DebugLevel
	// Optimize runs the peephole optimizer pass -- currently a
	// pass-through shell; the pipeline contract (a stage that runs and
	// may report zero changes) is preserved regardless (spec.md section 6).
	Optimize bool

	// StackDepthWarnThreshold overrides dataflow.DefaultStackDepthWarningThreshold
	// when non-zero (spec.md section 4.5: "a configurable threshold").
	StackDepthWarnThreshold int
}

// DefaultCompilationConfig matches spec.md section 6's stated defaults:
// assembly output, no BASIC stub, no source map, no debug annotations, the
// optimizer shell enabled (it changes nothing yet, but runs).
var DefaultCompilationConfig = CompilationConfig{
	Target:    DefaultTargetConfig,
	Format:    FormatAsm,
	BasicStub: false,
	SourceMap: false,
	Debug:     DebugNone,
	Optimize:  true,
}

// EffectiveLoadAddress resolves c.LoadAddress against the target's
// configured code start when the caller left it unset.
func (c CompilationConfig) EffectiveLoadAddress() uint16 {
	if c.LoadAddress != 0 {
		return c.LoadAddress
	}

	return c.Target.MemoryMap.CodeStart
}

// EmitOptions is spec.md section 4.8's assembly-dialect option set.
type EmitOptions struct {
	UppercaseMnemonics bool
	HexPrefix          string
	IncludeComments    bool
	IncludeCycleCounts bool
}

// DefaultEmitOptions matches spec.md section 4.8's stated defaults.
var DefaultEmitOptions = EmitOptions{
	UppercaseMnemonics: true,
	HexPrefix:          "$",
	IncludeComments:    true,
	IncludeCycleCounts: false,
}
