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

// Package util holds what every pkg/cmd subcommand shares: the common flag
// set and terminal-aware diagnostic rendering, mirroring the teacher's own
// separation of "cobra command wiring" from "shared CLI plumbing".
package util

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/sixc-lang/sixc/pkg/config"
)

// SharedFlags is the `--debug`/`--verbose`/`--format` flag set every
// subcommand registers (SPEC_FULL.md section 0).
type SharedFlags struct {
	Verbose bool
	Debug   string
	Format  string
}

// Register binds f's fields onto fs.
func (f *SharedFlags) Register(fs *pflag.FlagSet) {
	fs.BoolVarP(&f.Verbose, "verbose", "v", false, "enable debug-level logging")
	fs.StringVar(&f.Debug, "debug", "none", "assembly debug annotation level: none, line, full")
	fs.StringVar(&f.Format, "format", "asm", "output format: asm or prg")
}

// DebugLevel parses the --debug flag into a config.DebugLevel.
func (f *SharedFlags) DebugLevel() (config.DebugLevel, error) {
	switch f.Debug {
	case "none", "":
		return config.DebugNone, nil
	case "line":
		return config.DebugLine, nil
	case "full":
		return config.DebugFull, nil
	default:
		return config.DebugNone, fmt.Errorf("unrecognized --debug level %q (want none, line, or full)", f.Debug)
	}
}

// OutputFormat parses the --format flag into a config.OutputFormat.
func (f *SharedFlags) OutputFormat() (config.OutputFormat, error) {
	switch f.Format {
	case "asm", "":
		return config.FormatAsm, nil
	case "prg":
		return config.FormatPRG, nil
	default:
		return config.FormatAsm, fmt.Errorf("unrecognized --format %q (want asm or prg)", f.Format)
	}
}
