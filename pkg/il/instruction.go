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

import (
	"github.com/sixc-lang/sixc/pkg/source"
)

// InstructionID identifies an instruction within its owning function, used
// by diagnostics (INTERNAL-* codes name the instruction id) and by the
// renaming pass to track definitions.
type InstructionID uint32

// PhiEdge is one incoming value of a Phi instruction: the value that
// reaches the phi's block from a specific predecessor.
type PhiEdge struct {
	Block BlockID
	Reg   RegisterID
}

// Instruction is spec.md section 3's single tagged-variant shape: every
// instruction, whatever its Opcode, carries {id, opcode, result?, operands}.
// There is no per-instruction metadata field: every analysis that would
// populate one runs over the AST before lowering and annotates
// ast.Metadata instead (see DESIGN.md's pkg/il entry), so an IL-level side
// table would have no writer. A handful of opcodes need payload beyond a
// plain operand list (a variable name, a hardware address, jump targets, a
// callee name, phi edges); those live in the clearly-optional fields below,
// each documented against the opcodes that populate it.
type Instruction struct {
	ID     InstructionID
	Op     Opcode
	Result *RegisterID // nil when the opcode produces no value (stores, control flow)
	Operands []RegisterID
	Span   source.Span

	// Imm holds OpConst's immediate value.
	Imm *int64
	// Var holds the variable name for OpLoadVar/OpStoreVar/OpLoadArray/OpStoreArray,
	// and the promoted variable's name for OpPhi.
	Var string
	// Addr holds the hardware address for OpHardwareRead/OpHardwareWrite.
	Addr *uint16
	// Then/Else hold jump targets: OpJump uses Then only, OpBranch uses both.
	Then BlockID
	Else BlockID
	// HasThen/HasElse distinguish "block id zero" from "no target", since
	// BlockID's zero value is also the entry block's usual id.
	HasThen bool
	HasElse bool
	// Callee holds OpCall's target function name.
	Callee string
	// Incoming holds OpPhi's per-predecessor operands, in predecessor order.
	Incoming []PhiEdge
}

// IsTerminator reports whether this instruction ends its block.
func (in Instruction) IsTerminator() bool {
	return in.Op.IsTerminator()
}
