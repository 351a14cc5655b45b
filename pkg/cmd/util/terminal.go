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
	"os"

	"golang.org/x/term"
)

// fallbackWidth is used whenever stdout isn't a real terminal (piped output,
// CI logs) -- the width diagnostic wrapping falls back to when
// term.GetSize can't answer.
const fallbackWidth = 80

// TerminalWidth reports the current terminal's column width, the way
// pkg/util/termio.Terminal.GetSize does for the teacher's interactive
// debugger -- this package only needs the width half of that call, to wrap
// diagnostic text rather than lay out widgets.
func TerminalWidth() int {
	fd := int(os.Stdout.Fd())

	if !term.IsTerminal(fd) {
		return fallbackWidth
	}

	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return fallbackWidth
	}

	return w
}
