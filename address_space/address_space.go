// Package address_space defines the virtual-address types and the
// read-only, section-backed memory view that the disassembler and CFG
// builder read code bytes from.
package address_space

import "errors"

// VA is an absolute virtual address as it would appear in the loaded image.
type VA uint64

// RVA is a virtual address relative to a module's base address.
type RVA uint64

// VA resolves an RVA against a base address.
func (rva RVA) VA(base VA) VA {
	return VA(uint64(rva) + uint64(base))
}

// Region describes one mapped, contiguous range of code or data.
type Region struct {
	Address VA
	Length  uint64
	Name    string
}

var (
	ErrInvalidMemoryRead = errors.New("address_space: invalid memory read")
	ErrUnmappedMemory    = errors.New("address_space: unmapped memory")
	ErrOverrunsRegion    = errors.New("address_space: read overruns mapped region")
)

// Space is an immutable, read-only view over one or more mapped byte
// ranges. Unlike the teacher's SimpleAddressSpace, it is built once from
// a fixed set of regions and never mutated afterwards: the engine loads
// a binary's code sections a single time and then only ever reads from
// them concurrently, so there's no reason to support MemMap/MemWrite here.
type Space struct {
	regions []Region
	data    map[VA][]byte
}

// New builds a Space from a set of (region, bytes) pairs. The regions
// slice is copied; the data map and its backing slices are kept by
// reference for the lifetime of the Space, so callers must treat them
// as immutable.
func New(regions []Region, data map[VA][]byte) *Space {
	regionsCopy := make([]Region, len(regions))
	copy(regionsCopy, regions)
	return &Space{regions: regionsCopy, data: data}
}

func (s *Space) findRegion(va VA, length uint64) (Region, []byte, error) {
	for _, r := range s.regions {
		if va >= r.Address && va < VA(uint64(r.Address)+r.Length) {
			if VA(uint64(va)+length) > VA(uint64(r.Address)+r.Length) {
				return Region{}, nil, ErrOverrunsRegion
			}
			return r, s.data[r.Address], nil
		}
	}
	return Region{}, nil, ErrUnmappedMemory
}

// MemRead returns exactly length bytes starting at va, or
// ErrOverrunsRegion when the read would run past the end of the
// containing region (ErrUnmappedMemory when va is not mapped). Callers
// that want a "best effort" read for the tail of a section should
// retry with exactly the number of bytes remaining.
func (s *Space) MemRead(va VA, length uint64) ([]byte, error) {
	region, data, err := s.findRegion(va, length)
	if err != nil {
		return nil, err
	}
	offset := uint64(va) - uint64(region.Address)
	out := make([]byte, length)
	copy(out, data[offset:offset+length])
	return out, nil
}

// Contains reports whether va falls within any mapped region.
func (s *Space) Contains(va VA) bool {
	for _, r := range s.regions {
		if va >= r.Address && va < VA(uint64(r.Address)+r.Length) {
			return true
		}
	}
	return false
}

// Regions returns the mapped regions in the order they were supplied to New.
func (s *Space) Regions() []Region {
	out := make([]Region, len(s.regions))
	copy(out, s.regions)
	return out
}
