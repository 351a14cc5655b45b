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
package il

// Global is a module-level variable, always considered to escape (spec.md
// section 4.5: "Globals always escape").
type Global struct {
	Name string
	Type Type
}

// Module owns every Function it contains (spec.md section 5).
type Module struct {
	Name       string
	Functions  map[string]*Function
	EntryPoint string // "" if this module declares no entry point
	Globals    []Global
}

// NewModule constructs an empty IL module.
func NewModule(name string) *Module {
	return &Module{Name: name, Functions: make(map[string]*Function)}
}

// AddFunction registers a function under its name.
func (m *Module) AddFunction(f *Function) {
	m.Functions[f.Name] = f
}

// FunctionNames returns every function name, in no particular order;
// callers needing determinism should sort.
func (m *Module) FunctionNames() []string {
	names := make([]string, 0, len(m.Functions))
	for name := range m.Functions {
		names = append(names, name)
	}

	return names
}
