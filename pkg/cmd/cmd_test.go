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
	"strings"
	"testing"
)

func resetFlags(t *testing.T) {
	t.Helper()

	prev := *flags
	flags.Debug, flags.Format, flags.Verbose = "none", "asm", false

	t.Cleanup(func() { *flags = prev })
}

func TestRunPipelineProducesAssemblyForTheDemoProgram(t *testing.T) {
	resetFlags(t)

	text, stats, diags, err := runPipeline()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diags.HasErrors() {
		t.Fatalf("expected no error diagnostics, got %v", diags)
	}

	if !strings.Contains(text, "+clamp:") || !strings.Contains(text, "+main:") {
		t.Fatalf("expected both demo functions to appear as exported labels, got:\n%s", text)
	}

	if stats.FunctionCount != 2 {
		t.Fatalf("expected FunctionCount 2, got %d", stats.FunctionCount)
	}
}

func TestRunPipelineWarnsOnPRGFormat(t *testing.T) {
	resetFlags(t)

	flags.Format = "prg"

	_, _, diags, err := runPipeline()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found := false

	for _, d := range diags {
		if d.Code == "CLI-PRG-UNSUPPORTED" {
			found = true
		}
	}

	if !found {
		t.Fatalf("expected a CLI-PRG-UNSUPPORTED warning, got %v", diags)
	}
}

func TestRunPipelineRejectsUnknownDebugLevel(t *testing.T) {
	resetFlags(t)

	flags.Debug = "extreme"

	if _, _, _, err := runPipeline(); err == nil {
		t.Fatalf("expected an error for an unrecognized --debug level")
	}
}

func TestDemoModuleGraphDetectsIntroducedCycle(t *testing.T) {
	g := demoModuleGraph(true)

	if cycles := g.DetectCycles(); len(cycles) == 0 {
		t.Fatalf("expected --with-cycle to introduce a detectable cycle")
	}

	if cycles := demoModuleGraph(false).DetectCycles(); len(cycles) != 0 {
		t.Fatalf("expected the default demo graph to be acyclic, got %v", cycles)
	}
}