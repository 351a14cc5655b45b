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
package cmd

import (
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sixc-lang/sixc/pkg/asmil"
	"github.com/sixc-lang/sixc/pkg/cmd/util"
	"github.com/sixc-lang/sixc/pkg/codegen"
	"github.com/sixc-lang/sixc/pkg/config"
	"github.com/sixc-lang/sixc/pkg/diag"
	"github.com/sixc-lang/sixc/pkg/emit"
	"github.com/sixc-lang/sixc/pkg/frame"
	"github.com/sixc-lang/sixc/pkg/il"
	"github.com/sixc-lang/sixc/pkg/source"
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Run the full pipeline (frame allocation, code generation, emission) over the built-in demo program",
	RunE: func(cmd *cobra.Command, args []string) error {
		asmText, _, diags, err := runPipeline()
		if err != nil {
			return err
		}

		util.RenderDiagnostics(cmd.OutOrStdout(), diags, util.TerminalWidth())
		fmt.Fprint(cmd.OutOrStdout(), asmText)

		if diags.HasErrors() {
			return diags.Errors().Join()
		}

		return nil
	},
}

// runPipeline drives frame allocation, code generation and emission over
// the built-in demo module, returning the rendered assembly text, the
// compiled module's statistics, and every diagnostic accumulated along the
// way (spec.md section 7: diagnostics accumulate per-phase rather than
// aborting on the first problem).
func runPipeline() (string, codegen.Statistics, diag.List, error) {
	var diags diag.List

	debugLevel, err := flags.DebugLevel()
	if err != nil {
		return "", codegen.Statistics{}, nil, err
	}

	format, err := flags.OutputFormat()
	if err != nil {
		return "", codegen.Statistics{}, nil, err
	}

	if format == config.FormatPRG {
		diags.Add(diag.New(diag.Warning, "CLI-PRG-UNSUPPORTED",
			"this demo CLI only emits assembly text; PRG packaging is left to an external assembler", source.Span{}))
	}

	log.Debugf("compiling with debug level %v, format %v", debugLevel, format)

	mod, graph := demoModule()

	names := mod.FunctionNames()
	sort.Strings(names)

	functions := make([]*il.Function, 0, len(names))
	for _, name := range names {
		functions = append(functions, mod.Functions[name])
	}

	mm := config.DefaultTargetConfig.MemoryMap

	allocs, allocDiags := frame.Allocate(functions, graph, mm)
	diags.AddAll(allocDiags)

	if diags.HasErrors() {
		return "", codegen.Statistics{}, diags, nil
	}

	target := asmil.Target{Architecture: config.DefaultTargetConfig.Architecture}
	cg := codegen.NewCodeGenerator(target)

	asmMod, stats, cgDiags := cg.Generate(mod, allocs)
	diags.AddAll(cgDiags)

	opts := config.DefaultEmitOptions
	opts.IncludeCycleCounts = debugLevel == config.DebugFull

	text, _ := emit.Emit(asmMod, opts)

	return text, stats, diags, nil
}
