package matcher

import (
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/gographer/gographer/cfg"
	"github.com/gographer/gographer/disassembly"
	"github.com/gographer/gographer/similarity"
)

// Match implements §4.5: for each reference, find each sample
// function's best-scoring reference function, emit a MethodMatch when
// that best score clears threshold, aggregate per reference, and sort
// per §4.5 steps 3-4. Scoring is parallelized over sample functions
// within each reference using a bounded errgroup, then reduced on the
// calling goroutine — matching §5's "no locks on the hot path"
// requirement, since each goroutine only ever writes its own slot in a
// preallocated slice.
func Match(sample *disassembly.Disassembly, references []*disassembly.Disassembly, threshold float64, simCfg similarity.Config, workers int) (*CompareReport, error) {
	report := &CompareReport{SampleName: sample.Name}

	binaryMatches := make([]BinaryMatch, len(references))
	for refIdx, ref := range references {
		bm, err := matchOneReference(sample, ref, threshold, simCfg, workers)
		if err != nil {
			return nil, err
		}
		binaryMatches[refIdx] = bm
	}

	sort.SliceStable(binaryMatches, func(i, j int) bool {
		if binaryMatches[i].Similarity != binaryMatches[j].Similarity {
			return binaryMatches[i].Similarity > binaryMatches[j].Similarity
		}
		return binaryMatches[i].Dest < binaryMatches[j].Dest
	})
	report.Matches = binaryMatches
	return report, nil
}

type bestMatch struct {
	sim   float64
	ref   *cfg.ControlFlowGraph
	approx bool
}

func matchOneReference(sample, ref *disassembly.Disassembly, threshold float64, simCfg similarity.Config, workers int) (BinaryMatch, error) {
	best := make([]bestMatch, len(sample.Graphs))

	g := new(errgroup.Group)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, f := range sample.Graphs {
		i, f := i, f
		g.Go(func() error {
			best[i] = bestAgainst(f, ref.Graphs, simCfg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BinaryMatch{}, err
	}

	var sum float64
	var methodMatches []MethodMatch
	for i, f := range sample.Graphs {
		b := best[i]
		if b.ref != nil && b.approx {
			b.ref.Approximate = true
		}
		if b.sim < threshold || b.ref == nil {
			// No qualifying match: contributes 0 to the aggregate per
			// §4.5, not the (possibly nonzero) sub-threshold score.
			continue
		}
		sum += b.sim
		methodMatches = append(methodMatches, MethodMatch{
			OldName:       f.Name,
			ResolvedName:  b.ref.Name,
			MalwareOffset: uint64(f.EntryOffset),
			CleanOffset:   uint64(b.ref.EntryOffset),
			Similarity:    b.sim,
		})
	}

	sort.SliceStable(methodMatches, func(i, j int) bool {
		if methodMatches[i].Similarity != methodMatches[j].Similarity {
			return methodMatches[i].Similarity > methodMatches[j].Similarity
		}
		return methodMatches[i].MalwareOffset < methodMatches[j].MalwareOffset
	})

	aggregate := 0.0
	if len(sample.Graphs) > 0 {
		aggregate = sum / float64(len(sample.Graphs))
	}

	return BinaryMatch{
		Source:     sample.Name,
		Dest:       ref.Name,
		Similarity: aggregate,
		Matches:    methodMatches,
	}, nil
}

func bestAgainst(f *cfg.ControlFlowGraph, candidates []*cfg.ControlFlowGraph, simCfg similarity.Config) bestMatch {
	var best bestMatch
	for _, g := range candidates {
		score, approx := similarity.Score(f, g, simCfg)
		if score > best.sim {
			best = bestMatch{sim: score, ref: g, approx: approx}
		}
	}
	return best
}
