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

	"github.com/segmentio/encoding/json"
	"github.com/spf13/cobra"

	"github.com/sixc-lang/sixc/pkg/cmd/util"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Run the pipeline over the built-in demo program and print its compilation statistics as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, stats, diags, err := runPipeline()
		if err != nil {
			return err
		}

		util.RenderDiagnostics(cmd.ErrOrStderr(), diags, util.TerminalWidth())

		out, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(out))

		if diags.HasErrors() {
			return diags.Errors().Join()
		}

		return nil
	},
}
