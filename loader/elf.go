package loader

import (
	"debug/elf"

	"github.com/gographer/gographer/address_space"
	"github.com/gographer/gographer/engineerr"
)

func elfArch(m elf.Machine) (Arch, bool) {
	switch m {
	case elf.EM_386:
		return ArchX86, true
	case elf.EM_X86_64:
		return ArchX8664, true
	case elf.EM_AARCH64:
		return ArchARM64, true
	default:
		return "", false
	}
}

func loadELF(path string) (*Binary, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, &engineerr.IoError{Path: path, Reason: "cannot parse ELF", Err: err}
	}
	defer f.Close()

	arch, ok := elfArch(f.Machine)
	if !ok {
		return nil, &engineerr.UnsupportedBinaryFormat{Path: path, Reason: "unsupported ELF machine type"}
	}

	var sections []Section
	regions := make([]address_space.Region, 0)
	data := make(map[address_space.VA][]byte)
	for _, sec := range f.Sections {
		if sec.Flags&elf.SHF_EXECINSTR == 0 || sec.Size == 0 {
			continue
		}
		bytes, err := sec.Data()
		if err != nil {
			continue
		}
		addr := address_space.VA(sec.Addr)
		sections = append(sections, Section{Name: sec.Name, Address: addr, Data: bytes})
		regions = append(regions, address_space.Region{Address: addr, Length: uint64(len(bytes)), Name: sec.Name})
		data[addr] = bytes
	}
	if len(sections) == 0 {
		return nil, &engineerr.UnsupportedBinaryFormat{Path: path, Reason: "no executable sections found"}
	}

	symbols := recoverGoSymbols(path)
	if len(symbols) == 0 {
		symbols = elfNativeSymbols(f)
	}
	if len(symbols) == 0 {
		return nil, &engineerr.UnsupportedBinaryFormat{Path: path, Reason: "no functions could be recovered"}
	}

	return &Binary{
		Path:         path,
		Arch:         arch,
		LittleEndian: f.ByteOrder.String() == "LittleEndian",
		EntryOffset:  address_space.VA(f.Entry),
		Sections:     sections,
		Symbols:      symbols,
		Space:        address_space.New(regions, data),
	}, nil
}

func elfNativeSymbols(f *elf.File) []Symbol {
	syms, err := f.Symbols()
	if err != nil {
		return nil
	}
	out := make([]Symbol, 0, len(syms))
	for _, s := range syms {
		if elf.ST_TYPE(s.Info) != elf.STT_FUNC || s.Value == 0 {
			continue
		}
		out = append(out, Symbol{
			Name:   s.Name,
			Offset: address_space.VA(s.Value),
			End:    address_space.VA(s.Value + s.Size),
		})
	}
	return out
}
