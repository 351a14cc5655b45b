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

	"github.com/spf13/cobra"

	"github.com/sixc-lang/sixc/pkg/source"
)

var withCycle bool

var modgraphCmd = &cobra.Command{
	Use:   "modgraph",
	Short: "Print the built-in demo module's dependency graph and any detected cycles",
	RunE: func(cmd *cobra.Command, args []string) error {
		g := demoModuleGraph(withCycle)

		fmt.Fprint(cmd.OutOrStdout(), g.Render())

		cycles := g.DetectCycles()
		if len(cycles) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no cycles detected")
			return nil
		}

		for _, c := range cycles {
			fmt.Fprintf(cmd.OutOrStdout(), "cycle: %v (at %s)\n", c.Cycle, renderLocation(c.Location))
		}

		return fmt.Errorf("module graph has %d cycle(s)", len(cycles))
	},
}

func init() {
	modgraphCmd.Flags().BoolVar(&withCycle, "with-cycle", false, "introduce a cyclic edge into the demo graph to demonstrate cycle detection")
}

func renderLocation(s source.Span) string {
	if s.File == "" {
		return "<no location>"
	}

	return s.String()
}
