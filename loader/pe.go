package loader

import (
	"debug/pe"

	"github.com/gographer/gographer/address_space"
	"github.com/gographer/gographer/engineerr"
)

func peArch(m uint16) (Arch, bool) {
	switch m {
	case pe.IMAGE_FILE_MACHINE_I386:
		return ArchX86, true
	case pe.IMAGE_FILE_MACHINE_AMD64:
		return ArchX8664, true
	case pe.IMAGE_FILE_MACHINE_ARM64:
		return ArchARM64, true
	default:
		return "", false
	}
}

// imageBaseAndEntry mirrors the teacher's loader/pe.go, which reads
// imageBase and the entry-point RVA out of whichever OptionalHeader
// variant the file carries, then resolves the entry to an absolute VA.
func imageBaseAndEntry(f *pe.File) (uint64, uint32, bool) {
	switch oh := f.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		return uint64(oh.ImageBase), oh.AddressOfEntryPoint, true
	case *pe.OptionalHeader64:
		return oh.ImageBase, oh.AddressOfEntryPoint, true
	default:
		return 0, 0, false
	}
}

func loadPE(path string) (*Binary, error) {
	f, err := pe.Open(path)
	if err != nil {
		return nil, &engineerr.IoError{Path: path, Reason: "cannot parse PE", Err: err}
	}
	defer f.Close()

	arch, ok := peArch(f.Machine)
	if !ok {
		return nil, &engineerr.UnsupportedBinaryFormat{Path: path, Reason: "unsupported PE machine type"}
	}

	imageBase, entryRVA, ok := imageBaseAndEntry(f)
	if !ok {
		return nil, &engineerr.UnsupportedBinaryFormat{Path: path, Reason: "missing optional header"}
	}

	var sections []Section
	regions := make([]address_space.Region, 0)
	data := make(map[address_space.VA][]byte)
	for _, sec := range f.Sections {
		if sec.Characteristics&pe.IMAGE_SCN_CNT_CODE == 0 || sec.Size == 0 {
			continue
		}
		bytes, err := sec.Data()
		if err != nil {
			continue
		}
		addr := address_space.VA(imageBase + uint64(sec.VirtualAddress))
		sections = append(sections, Section{Name: sec.Name, Address: addr, Data: bytes})
		regions = append(regions, address_space.Region{Address: addr, Length: uint64(len(bytes)), Name: sec.Name})
		data[addr] = bytes
	}
	if len(sections) == 0 {
		return nil, &engineerr.UnsupportedBinaryFormat{Path: path, Reason: "no code sections found"}
	}

	symbols := recoverGoSymbols(path)
	if len(symbols) == 0 {
		symbols = peNativeSymbols(f, imageBase)
	}
	if len(symbols) == 0 {
		return nil, &engineerr.UnsupportedBinaryFormat{Path: path, Reason: "no functions could be recovered"}
	}

	return &Binary{
		Path:         path,
		Arch:         arch,
		LittleEndian: true,
		EntryOffset:  address_space.VA(imageBase + uint64(entryRVA)),
		Sections:     sections,
		Symbols:      symbols,
		Space:        address_space.New(regions, data),
	}, nil
}

func peNativeSymbols(f *pe.File, imageBase uint64) []Symbol {
	out := make([]Symbol, 0, len(f.Symbols))
	for _, s := range f.Symbols {
		if s.SectionNumber <= 0 {
			continue
		}
		out = append(out, Symbol{
			Name:   s.Name,
			Offset: address_space.VA(imageBase + uint64(s.Value)),
		})
	}
	return out
}
