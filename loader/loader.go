// Package loader detects a binary's container format, maps its code
// sections into virtual-address ranges, and recovers a symbol table —
// preferring Go's own pclntab when present, falling back to the
// format-native symbol table otherwise.
package loader

import (
	"bytes"
	"os"

	"github.com/gographer/gographer/address_space"
	"github.com/gographer/gographer/engineerr"
)

// Arch identifies an instruction set the disassembler package knows
// how to decode. Unlike the teacher's workspace.Arch, this enum is
// sized to only the architectures disasm actually supports.
type Arch string

const (
	ArchX86   Arch = "x86"
	ArchX8664 Arch = "x86_64"
	ArchARM64 Arch = "arm64"
)

// Symbol is one recovered function or method entry point.
type Symbol struct {
	Name    string
	Offset  address_space.VA
	End     address_space.VA
	Package string
}

// Section is one mapped, readable code or data range.
type Section struct {
	Name    string
	Address address_space.VA
	Data    []byte
}

// Binary is the Loader's output: everything the Disassembler and CFG
// Builder need to walk one binary's functions.
type Binary struct {
	Path        string
	Arch        Arch
	LittleEndian bool
	EntryOffset address_space.VA
	Sections    []Section
	Symbols     []Symbol
	Space       *address_space.Space
}

var (
	elfMagic      = []byte{0x7f, 'E', 'L', 'F'}
	peMagic       = []byte{'M', 'Z'}
	machoMagic32  = []byte{0xfe, 0xed, 0xfa, 0xce}
	machoMagic64  = []byte{0xfe, 0xed, 0xfa, 0xcf}
	machoMagicCig = []byte{0xca, 0xfe, 0xba, 0xbe} // fat/universal binary
)

func detectFormat(header []byte) string {
	switch {
	case bytes.HasPrefix(header, elfMagic):
		return "elf"
	case bytes.HasPrefix(header, peMagic):
		return "pe"
	case bytes.HasPrefix(header, machoMagic32), bytes.HasPrefix(header, machoMagic64),
		bytes.HasPrefix(header, machoMagicCig):
		return "macho"
	default:
		// The magics above are the big-endian byte order; little-endian
		// Mach-O files (x86, x86-64, arm64) store them byte-reversed.
		if len(header) >= 4 {
			rev := []byte{header[3], header[2], header[1], header[0]}
			if bytes.Equal(rev, machoMagic32) || bytes.Equal(rev, machoMagic64) || bytes.Equal(rev, machoMagicCig) {
				return "macho"
			}
		}
		return ""
	}
}

// Load detects path's container format and produces a Binary. It fails
// with *engineerr.UnsupportedBinaryFormat when the magic is unknown,
// the architecture has no disassembler, or no functions can be
// recovered, and with *engineerr.IoError on read failures.
func Load(path string) (*Binary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &engineerr.IoError{Path: path, Reason: "cannot open file", Err: err}
	}
	defer f.Close()

	header := make([]byte, 4)
	if _, err := f.Read(header); err != nil {
		return nil, &engineerr.IoError{Path: path, Reason: "cannot read header", Err: err}
	}

	switch detectFormat(header) {
	case "elf":
		return loadELF(path)
	case "pe":
		return loadPE(path)
	case "macho":
		return loadMachO(path)
	default:
		return nil, &engineerr.UnsupportedBinaryFormat{Path: path, Reason: "unrecognized magic bytes"}
	}
}
