package disasm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gographer/gographer/address_space"
)

func spaceFromCode(code []byte, base address_space.VA) *address_space.Space {
	regions := []address_space.Region{{Address: base, Length: uint64(len(code)), Name: ".text"}}
	data := map[address_space.VA][]byte{base: code}
	return address_space.New(regions, data)
}

func TestDecodeOneRet(t *testing.T) {
	// ret
	code := []byte{0xc3}
	sp := spaceFromCode(code, 0x1000)
	inst := DecodeOne(sp, "x86_64", 0x1000)
	assert.False(t, inst.Invalid)
	assert.Equal(t, ClassRet, inst.Class)
	assert.Equal(t, BranchReturn, inst.Branch)
}

func TestDecodeOneUnconditionalJump(t *testing.T) {
	// jmp $+2 (eb 00)
	code := []byte{0xeb, 0x00}
	sp := spaceFromCode(code, 0x2000)
	inst := DecodeOne(sp, "x86_64", 0x2000)
	assert.False(t, inst.Invalid)
	assert.Equal(t, BranchUnconditionalJump, inst.Branch)
	assert.Equal(t, address_space.VA(0x2002), inst.Target)
}

func TestDecodeOneInvalid(t *testing.T) {
	code := []byte{0x0f, 0x0f} // undefined opcode sequence
	sp := spaceFromCode(code, 0x3000)
	inst := DecodeOne(sp, "x86_64", 0x3000)
	assert.True(t, inst.Invalid || inst.Class == ClassOther)
}

func TestIsTerminatorAndFallsThrough(t *testing.T) {
	ret := Instruction{Branch: BranchReturn}
	assert.True(t, ret.IsTerminator())
	assert.False(t, ret.FallsThrough())

	mov := Instruction{Branch: BranchNone}
	assert.False(t, mov.IsTerminator())
	assert.True(t, mov.FallsThrough())

	cond := Instruction{Branch: BranchConditionalJump}
	assert.True(t, cond.IsTerminator())
	assert.True(t, cond.FallsThrough())
}
