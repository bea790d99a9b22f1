// Package disassembly assembles a Loader, a Disassembler, and the CFG
// Builder into the Disassembly aggregate of §3: the ordered set of a
// binary's per-function control flow graphs.
package disassembly

import (
	"regexp"

	"github.com/gographer/gographer/cfg"
	"github.com/gographer/gographer/engineerr"
	"github.com/gographer/gographer/loader"
)

// Disassembly is the result of processing one binary. Immutable after
// New returns: FilterSymbol and GetSubset return new Disassemblies
// sharing nothing mutable with the receiver.
type Disassembly struct {
	Name  string
	Path  string
	Graphs []*cfg.ControlFlowGraph
	// Diagnostics records functions skipped because per-function
	// disassembly failed outright (never populated by the current CFG
	// builder, which always emits a graph per §4.2's best-effort
	// contract, but kept for loader-level symbol recovery gaps).
	Diagnostics []string
}

// New drives Loader -> Disassembler -> CFG Builder over every function
// symbol recovered from path, producing one CFG per function.
func New(path string) (*Disassembly, error) {
	bin, err := loader.Load(path)
	if err != nil {
		return nil, err
	}

	d := &Disassembly{Name: path, Path: path}
	for _, sym := range bin.Symbols {
		if sym.Name == "" {
			continue
		}
		end := sym.End
		if end <= sym.Offset {
			end = sym.Offset + 1
		}
		if !bin.Space.Contains(sym.Offset) {
			d.Diagnostics = append(d.Diagnostics, sym.Name+": entry offset not mapped")
			continue
		}
		graph := cfg.Build(bin.Space, bin.Arch, sym.Name, sym.Offset, end)
		d.Graphs = append(d.Graphs, graph)
	}

	if len(d.Graphs) == 0 {
		return nil, &engineerr.UnsupportedBinaryFormat{Path: path, Reason: "no functions could be disassembled"}
	}

	sortGraphsByEntryOffset(d.Graphs)
	return d, nil
}

// FilterSymbol returns a new Disassembly containing only CFGs whose
// function name matches re.
func (d *Disassembly) FilterSymbol(re *regexp.Regexp) *Disassembly {
	out := &Disassembly{Name: d.Name, Path: d.Path}
	for _, g := range d.Graphs {
		if re.MatchString(g.Name) {
			out.Graphs = append(out.Graphs, g)
		}
	}
	return out
}

// GetSubset returns a new Disassembly containing the first
// ceil(ratio*N) CFGs in entry-offset order — deterministic, per §3/§6,
// not the random sampling of the source this specification was
// distilled from.
func (d *Disassembly) GetSubset(ratio float64) (*Disassembly, error) {
	if ratio <= 0 || ratio > 1 {
		return nil, &engineerr.InvalidArgument{Field: "ratio", Reason: "must be in (0,1]"}
	}
	n := ceilRatio(ratio, len(d.Graphs))
	out := &Disassembly{Name: d.Name, Path: d.Path}
	out.Graphs = append(out.Graphs, d.Graphs[:n]...)
	return out, nil
}

func ceilRatio(ratio float64, n int) int {
	count := int(ratio*float64(n) + 0.999999999)
	if count > n {
		count = n
	}
	if count < 0 {
		count = 0
	}
	return count
}

func sortGraphsByEntryOffset(graphs []*cfg.ControlFlowGraph) {
	for i := 1; i < len(graphs); i++ {
		for j := i; j > 0 && graphs[j].EntryOffset < graphs[j-1].EntryOffset; j-- {
			graphs[j], graphs[j-1] = graphs[j-1], graphs[j]
		}
	}
}
