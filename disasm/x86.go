package disasm

import (
	"golang.org/x/arch/x86/x86asm"

	"github.com/gographer/gographer/address_space"
)

func decodeX86(code []byte, addr address_space.VA, mode int) Instruction {
	inst, err := x86asm.Decode(code, mode)
	if err != nil || inst.Len == 0 {
		return Instruction{Address: addr, Length: 1, Class: ClassOther, Invalid: true}
	}

	class, branch := classifyX86(inst)
	i := Instruction{
		Address: addr,
		Length:  inst.Len,
		Class:   class,
		Branch:  branch,
	}
	if branch == BranchUnconditionalJump || branch == BranchConditionalJump || branch == BranchCall {
		if rel, ok := directTargetX86(inst); ok {
			i.Target = address_space.VA(int64(addr) + int64(inst.Len) + rel)
		} else {
			// A register/memory operand: no resolvable target, but the
			// instruction still terminates the block.
			if branch == BranchCall {
				i.Branch = BranchIndirectCall
			} else {
				i.Branch = BranchIndirectJump
			}
		}
	}
	return i
}

func directTargetX86(inst x86asm.Inst) (int64, bool) {
	if len(inst.Args) == 0 {
		return 0, false
	}
	switch arg := inst.Args[0].(type) {
	case x86asm.Rel:
		return int64(arg), true
	default:
		return 0, false
	}
}

var x86ConditionalJumps = map[x86asm.Op]bool{
	x86asm.JA: true, x86asm.JAE: true, x86asm.JB: true, x86asm.JBE: true,
	x86asm.JCXZ: true, x86asm.JECXZ: true, x86asm.JRCXZ: true,
	x86asm.JE: true, x86asm.JG: true, x86asm.JGE: true, x86asm.JL: true,
	x86asm.JLE: true, x86asm.JNE: true, x86asm.JNO: true, x86asm.JNP: true,
	x86asm.JNS: true, x86asm.JO: true, x86asm.JP: true, x86asm.JS: true,
}

func classifyX86(inst x86asm.Inst) (Class, BranchKind) {
	op := inst.Op
	switch {
	case op == x86asm.JMP:
		return ClassBranch, BranchUnconditionalJump
	case x86ConditionalJumps[op]:
		return ClassBranch, BranchConditionalJump
	case op == x86asm.CALL:
		return ClassCall, BranchCall
	case op == x86asm.RET:
		return ClassRet, BranchReturn
	case op == x86asm.NOP:
		return ClassNop, BranchNone
	case op == x86asm.MOV || op == x86asm.MOVZX || op == x86asm.MOVSX:
		return classifyMemAccess(inst, ClassMov), BranchNone
	case op == x86asm.ADD || op == x86asm.SUB || op == x86asm.INC || op == x86asm.DEC ||
		op == x86asm.MUL || op == x86asm.IMUL || op == x86asm.DIV || op == x86asm.IDIV ||
		op == x86asm.NEG:
		return ClassArith, BranchNone
	case op == x86asm.AND || op == x86asm.OR || op == x86asm.XOR || op == x86asm.NOT:
		return ClassLogic, BranchNone
	case op == x86asm.SHL || op == x86asm.SHR || op == x86asm.SAR || op == x86asm.ROL || op == x86asm.ROR:
		return ClassShift, BranchNone
	case op == x86asm.CMP:
		return ClassCmp, BranchNone
	case op == x86asm.TEST:
		return ClassTest, BranchNone
	case op == x86asm.PUSH || op == x86asm.POP || op == x86asm.LEAVE || op == x86asm.ENTER:
		return ClassStack, BranchNone
	default:
		return classifyMemAccess(inst, ClassOther), BranchNone
	}
}

// classifyMemAccess reclassifies a benign instruction as MEM_R/MEM_W
// when one of its operands touches memory, falling back to fallback
// when no operand does.
func classifyMemAccess(inst x86asm.Inst, fallback Class) Class {
	for i, arg := range inst.Args {
		if arg == nil {
			continue
		}
		if _, ok := arg.(x86asm.Mem); ok {
			if i == 0 {
				return ClassMemWrite
			}
			return ClassMemRead
		}
	}
	return fallback
}
