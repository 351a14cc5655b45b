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
package util

import (
	"testing"

	"github.com/spf13/pflag"

	"github.com/sixc-lang/sixc/pkg/config"
)

func TestSharedFlagsDefaultsParseCleanly(t *testing.T) {
	f := &SharedFlags{}
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.Register(fs)

	if err := fs.Parse(nil); err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	level, err := f.DebugLevel()
	if err != nil || level != config.DebugNone {
		t.Fatalf("expected DebugNone by default, got %v, %v", level, err)
	}

	format, err := f.OutputFormat()
	if err != nil || format != config.FormatAsm {
		t.Fatalf("expected FormatAsm by default, got %v, %v", format, err)
	}
}

func TestSharedFlagsRejectsUnknownDebugLevel(t *testing.T) {
	f := &SharedFlags{Debug: "extreme"}

	if _, err := f.DebugLevel(); err == nil {
		t.Fatalf("expected an error for an unrecognized --debug level")
	}
}

func TestSharedFlagsAcceptsPRGFormat(t *testing.T) {
	f := &SharedFlags{Format: "prg"}

	format, err := f.OutputFormat()
	if err != nil || format != config.FormatPRG {
		t.Fatalf("expected FormatPRG, got %v, %v", format, err)
	}
}
