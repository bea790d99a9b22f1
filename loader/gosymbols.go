package loader

import (
	"github.com/goretk/gore"

	"github.com/gographer/gographer/address_space"
)

// recoverGoSymbols attempts Go-aware pclntab symbol recovery via
// goretk/gore, per §4.1's requirement that Go-style names be preferred
// over the format-native symbol table when present. It returns nil
// (never an error) so callers fall through to the native symbol table
// on any failure — stripped binaries and non-Go binaries both hit this
// path routinely and are not loader errors by themselves.
func recoverGoSymbols(path string) []Symbol {
	gf, err := gore.Open(path)
	if err != nil {
		return nil
	}
	defer gf.Close()

	packages, err := gf.GetPackages()
	if err != nil {
		return nil
	}

	var out []Symbol
	for _, pkg := range packages {
		for _, fn := range pkg.Functions {
			out = append(out, Symbol{
				Name:    fn.Name,
				Offset:  address_space.VA(fn.Offset),
				End:     address_space.VA(fn.End),
				Package: pkg.Filepath,
			})
		}
		for _, m := range pkg.Methods {
			out = append(out, Symbol{
				Name:    m.Receiver + "." + m.Name,
				Offset:  address_space.VA(m.Offset),
				End:     address_space.VA(m.End),
				Package: pkg.Filepath,
			})
		}
	}
	return out
}
