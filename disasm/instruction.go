package disasm

import "github.com/gographer/gographer/address_space"

// Instruction is one decoded machine instruction with the metadata the
// CFG builder needs: enough to classify block terminators and resolve
// intra-function branch targets without keeping the raw bytes around.
type Instruction struct {
	Address address_space.VA
	Length  int
	Class   Class
	Branch  BranchKind
	// Target is the resolved absolute address of a direct branch/call.
	// It is zero and ignored when Branch is one of the indirect kinds
	// or BranchNone/BranchFallThrough.
	Target address_space.VA
	// Invalid marks an instruction the decoder could not parse. Length
	// bytes at Address are skipped (one byte on x86, one 4-byte word on
	// ARM64) and the current block is terminated;
	// the function is still emitted per §4.2's best-effort contract.
	Invalid bool
}

// IsTerminator reports whether this instruction ends a basic block.
func (i Instruction) IsTerminator() bool {
	switch i.Branch {
	case BranchUnconditionalJump, BranchConditionalJump, BranchCall,
		BranchReturn, BranchIndirectJump, BranchIndirectCall:
		return true
	default:
		return i.Invalid
	}
}

// FallsThrough reports whether execution may continue at Address+Length.
func (i Instruction) FallsThrough() bool {
	if i.Invalid {
		return false
	}
	switch i.Branch {
	case BranchUnconditionalJump, BranchReturn, BranchIndirectJump:
		return false
	default:
		return true
	}
}
