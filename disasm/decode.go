package disasm

import (
	"github.com/gographer/gographer/address_space"
	"github.com/gographer/gographer/loader"
)

// x86Mode maps loader architectures onto x86asm's bit-width parameter.
func x86Mode(arch loader.Arch) int {
	if arch == loader.ArchX8664 {
		return 64
	}
	return 32
}

// DecodeOne decodes a single instruction at addr, reading its bytes
// from space. Decode failures never return an error: per §4.2,
// undecodable bytes are represented as an Instruction with Invalid set
// so the caller can terminate the current block and keep going.
func DecodeOne(space *address_space.Space, arch loader.Arch, addr address_space.VA) Instruction {
	// x86 instructions run up to 15 bytes; ARM64 instructions are a
	// fixed 4 bytes. Read the largest window either decoder might need
	// and let the decoder itself bound how much it consumes.
	window := uint64(15)
	code, err := space.MemRead(addr, window)
	if err != nil {
		// Fall back to whatever is left in the containing region so
		// that instructions near the end of a section still decode.
		code = tailRead(space, addr)
		if len(code) == 0 {
			return Instruction{Address: addr, Length: 1, Class: ClassOther, Invalid: true}
		}
	}

	switch arch {
	case loader.ArchX86, loader.ArchX8664:
		return decodeX86(code, addr, x86Mode(arch))
	case loader.ArchARM64:
		return decodeARM64(code, addr)
	default:
		return Instruction{Address: addr, Length: 1, Class: ClassOther, Invalid: true}
	}
}

func tailRead(space *address_space.Space, addr address_space.VA) []byte {
	for _, r := range space.Regions() {
		if addr >= r.Address && addr < address_space.VA(uint64(r.Address)+r.Length) {
			remaining := uint64(r.Address) + r.Length - uint64(addr)
			b, err := space.MemRead(addr, remaining)
			if err != nil {
				return nil
			}
			return b
		}
	}
	return nil
}
