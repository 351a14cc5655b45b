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

// Package cmd wires the cobra commands that exercise this compiler's
// mid-end pipeline by hand -- compile, modgraph and stats -- mirroring the
// teacher's own rootCmd + subcommand registration pattern. The CLI carries
// no correctness requirements of its own (spec.md section 1); it exists so
// every library package has a caller.
package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sixc-lang/sixc/pkg/cmd/util"
)

var flags = &util.SharedFlags{}

var rootCmd = &cobra.Command{
	Use:   "sixc",
	Short: "A whole-program compiler mid-end targeting the 6502",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flags.Verbose {
			log.SetLevel(log.DebugLevel)
		}
	},
}

func init() {
	flags.Register(rootCmd.PersistentFlags())
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(modgraphCmd)
	rootCmd.AddCommand(statsCmd)
}

// Execute runs the root command, returning any error cobra surfaces (a bad
// flag, a failing subcommand).
func Execute() error {
	return rootCmd.Execute()
}
