package loader

import (
	"errors"

	macho "github.com/blacktop/go-macho"
	"github.com/blacktop/go-macho/types"

	"github.com/gographer/gographer/address_space"
	"github.com/gographer/gographer/engineerr"
)

func machoArch(cpu types.CPU) (Arch, bool) {
	switch cpu {
	case types.CPUI386:
		return ArchX86, true
	case types.CPUAmd64:
		return ArchX8664, true
	case types.CPUArm64:
		return ArchARM64, true
	default:
		return "", false
	}
}

func loadMachO(path string) (*Binary, error) {
	f, err := macho.Open(path)
	if err != nil {
		return nil, &engineerr.IoError{Path: path, Reason: "cannot parse Mach-O", Err: err}
	}
	defer f.Close()

	arch, ok := machoArch(f.CPU)
	if !ok {
		return nil, &engineerr.UnsupportedBinaryFormat{Path: path, Reason: "unsupported Mach-O CPU type"}
	}

	var sections []Section
	regions := make([]address_space.Region, 0)
	data := make(map[address_space.VA][]byte)
	for _, sec := range f.Sections {
		if sec.Size == 0 {
			continue
		}
		bytes, err := sec.Data()
		if err != nil {
			continue
		}
		addr := address_space.VA(sec.Addr)
		name := sec.Name
		sections = append(sections, Section{Name: name, Address: addr, Data: bytes})
		regions = append(regions, address_space.Region{Address: addr, Length: uint64(len(bytes)), Name: name})
		data[addr] = bytes
	}
	if len(sections) == 0 {
		return nil, &engineerr.UnsupportedBinaryFormat{Path: path, Reason: "no sections found"}
	}

	symbols := recoverGoSymbols(path)
	if len(symbols) == 0 {
		symbols = machoNativeSymbols(f)
	}
	if len(symbols) == 0 {
		return nil, &engineerr.UnsupportedBinaryFormat{Path: path, Reason: "no functions could be recovered"}
	}

	entry, err := machoGetEntryPoint(f)
	if err != nil {
		// Fall back to the first mapped section: some Mach-O binaries
		// (notably shared libraries) carry no LC_MAIN entry point.
		entry = uint64(sections[0].Address)
	}

	return &Binary{
		Path:         path,
		Arch:         arch,
		LittleEndian: true,
		EntryOffset:  address_space.VA(entry),
		Sections:     sections,
		Symbols:      symbols,
		Space:        address_space.New(regions, data),
	}, nil
}

func machoGetEntryPoint(f *macho.File) (uint64, error) {
	for _, l := range f.Loads {
		ep, ok := l.(*macho.EntryPoint)
		if !ok {
			continue
		}
		text := f.Segment("__TEXT")
		if text == nil {
			return 0, errors.New("no __TEXT segment")
		}
		return text.Addr + (ep.EntryOffset - text.Offset), nil
	}
	return 0, errors.New("no LC_MAIN load command")
}

func machoNativeSymbols(f *macho.File) []Symbol {
	if f.Symtab == nil {
		return nil
	}
	out := make([]Symbol, 0, len(f.Symtab.Syms))
	for _, s := range f.Symtab.Syms {
		if s.Value == 0 {
			continue
		}
		out = append(out, Symbol{
			Name:   s.Name,
			Offset: address_space.VA(s.Value),
		})
	}
	return out
}
