package disasm

import (
	"strings"

	"golang.org/x/arch/arm64/arm64asm"

	"github.com/gographer/gographer/address_space"
)

const arm64InstructionLength = 4

func decodeARM64(code []byte, addr address_space.VA) Instruction {
	if len(code) < arm64InstructionLength {
		return Instruction{Address: addr, Length: 1, Class: ClassOther, Invalid: true}
	}
	inst, err := arm64asm.Decode(code)
	if err != nil {
		return Instruction{Address: addr, Length: arm64InstructionLength, Class: ClassOther, Invalid: true}
	}

	class, branch := classifyARM64(inst)
	i := Instruction{
		Address: addr,
		Length:  arm64InstructionLength,
		Class:   class,
		Branch:  branch,
	}
	if branch == BranchUnconditionalJump || branch == BranchConditionalJump || branch == BranchCall {
		if rel, ok := directTargetARM64(inst); ok {
			i.Target = address_space.VA(int64(addr) + rel)
		} else if branch == BranchCall {
			i.Branch = BranchIndirectCall
		} else {
			i.Branch = BranchIndirectJump
		}
	}
	return i
}

func directTargetARM64(inst arm64asm.Inst) (int64, bool) {
	for _, arg := range inst.Args {
		if arg == nil {
			continue
		}
		if rel, ok := arg.(arm64asm.PCRel); ok {
			return int64(rel), true
		}
	}
	return 0, false
}

// classifyARM64 matches on the mnemonic's string form rather than
// individual Op constants, so that instruction families (CBZ/CBNZ,
// TBZ/TBNZ, the LDR*/STR* variants, ...) are covered by prefix. A
// conditional branch B.<cond> decodes as Op B with a Cond first
// argument, so the B case inspects that argument.
func classifyARM64(inst arm64asm.Inst) (Class, BranchKind) {
	mnemonic := strings.ToUpper(inst.Op.String())
	switch {
	case mnemonic == "RET":
		return ClassRet, BranchReturn
	case mnemonic == "BR":
		return ClassBranch, BranchIndirectJump
	case mnemonic == "BLR":
		return ClassCall, BranchIndirectCall
	case mnemonic == "BL":
		return ClassCall, BranchCall
	case mnemonic == "B":
		if _, ok := inst.Args[0].(arm64asm.Cond); ok {
			return ClassBranch, BranchConditionalJump
		}
		return ClassBranch, BranchUnconditionalJump
	case strings.HasPrefix(mnemonic, "CBZ") ||
		strings.HasPrefix(mnemonic, "CBNZ") || strings.HasPrefix(mnemonic, "TBZ") ||
		strings.HasPrefix(mnemonic, "TBNZ"):
		return ClassBranch, BranchConditionalJump
	case mnemonic == "NOP":
		return ClassNop, BranchNone
	case strings.HasPrefix(mnemonic, "MOV"):
		return ClassMov, BranchNone
	case strings.HasPrefix(mnemonic, "ADD") || strings.HasPrefix(mnemonic, "SUB") ||
		strings.HasPrefix(mnemonic, "MUL") || strings.HasPrefix(mnemonic, "DIV") ||
		strings.HasPrefix(mnemonic, "NEG"):
		return ClassArith, BranchNone
	case strings.HasPrefix(mnemonic, "AND") || strings.HasPrefix(mnemonic, "ORR") ||
		strings.HasPrefix(mnemonic, "EOR") || strings.HasPrefix(mnemonic, "MVN"):
		return ClassLogic, BranchNone
	case strings.HasPrefix(mnemonic, "LSL") || strings.HasPrefix(mnemonic, "LSR") ||
		strings.HasPrefix(mnemonic, "ASR") || strings.HasPrefix(mnemonic, "ROR"):
		return ClassShift, BranchNone
	case strings.HasPrefix(mnemonic, "CMP") || strings.HasPrefix(mnemonic, "CMN"):
		return ClassCmp, BranchNone
	case strings.HasPrefix(mnemonic, "TST"):
		return ClassTest, BranchNone
	case strings.HasPrefix(mnemonic, "LDR") || strings.HasPrefix(mnemonic, "LDP"):
		return ClassMemRead, BranchNone
	case strings.HasPrefix(mnemonic, "STR") || strings.HasPrefix(mnemonic, "STP"):
		return ClassMemWrite, BranchNone
	default:
		return ClassOther, BranchNone
	}
}
