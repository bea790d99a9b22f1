// Package similarity scores a pair of control flow graphs in [0,1],
// combining a structural component (degree-sequence distance) and a
// content component (maximum-weight bipartite matching of block
// mnemonic histograms), per the CFG Similarity component.
package similarity

import (
	"math"
	"sort"

	"github.com/gographer/gographer/cfg"
)

// Config carries the engine constants §4.4/§9 asks to be fixed and
// documented rather than hardcoded inline.
type Config struct {
	// Alpha weights the structural component against the content
	// component: sim = Alpha*struct + (1-Alpha)*content.
	Alpha float64
	// FingerprintSlack bounds the prefilter of §4.3.
	FingerprintSlack int
	// ExactMatchBudget is the |A|*|B| ceiling above which the content
	// component falls back to greedy bipartite matching (§4.4).
	ExactMatchBudget int
}

// DefaultConfig matches the values documented in SPEC_FULL.md §4.4/§9.
func DefaultConfig() Config {
	return Config{
		Alpha:            0.4,
		FingerprintSlack: 1,
		ExactMatchBudget: 2500,
	}
}

// Score computes sim(A,B) per §4.4. It never fails: degenerate inputs
// (either graph empty) clamp to 0.0 rather than erroring, per §7.
// approximate reports whether the greedy fallback was used for the
// content component, for the caller to record on the graph.
func Score(a, b *cfg.ControlFlowGraph, cfgOpts Config) (score float64, approximate bool) {
	if a == nil || b == nil || len(a.Blocks) == 0 || len(b.Blocks) == 0 {
		return 0.0, false
	}
	if a == b {
		return 1.0, false
	}
	if !a.Fingerprint.WithinSlack(b.Fingerprint, cfgOpts.FingerprintSlack) {
		return 0.0, false
	}

	structScore := structuralScore(a, b)
	contentScore, approx := contentScore(a, b, cfgOpts.ExactMatchBudget)

	sim := cfgOpts.Alpha*structScore + (1-cfgOpts.Alpha)*contentScore
	return clamp01(sim), approx
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// structuralScore implements §4.4's degree-sequence L1 distance.
func structuralScore(a, b *cfg.ControlFlowGraph) float64 {
	da := degreeSequence(a)
	db := degreeSequence(b)
	n := len(da)
	if len(db) > n {
		n = len(db)
	}
	var num, denom float64
	for i := 0; i < n; i++ {
		var x, y float64
		if i < len(da) {
			x = float64(da[i])
		}
		if i < len(db) {
			y = float64(db[i])
		}
		num += math.Abs(x - y)
		denom += x + y
	}
	if denom == 0 {
		return 1.0
	}
	return 1.0 - num/denom
}

func degreeSequence(g *cfg.ControlFlowGraph) []int {
	seq := make([]int, len(g.Blocks))
	for i, b := range g.Blocks {
		seq[i] = b.InDegree + b.OutDegree
	}
	sort.Sort(sort.Reverse(sort.IntSlice(seq)))
	return seq
}

// contentScore implements §4.4's bipartite-matching content component.
func contentScore(a, b *cfg.ControlFlowGraph, budget int) (float64, bool) {
	weights := buildWeightMatrix(a.Blocks, b.Blocks)

	n, m := len(a.Blocks), len(b.Blocks)
	maxDim := n
	if m > maxDim {
		maxDim = m
	}
	if maxDim == 0 {
		return 0.0, false
	}

	var total float64
	approximate := n*m > budget
	if approximate {
		total = greedyMatch(weights, a.Blocks, b.Blocks)
	} else {
		total = hungarianMatch(weights)
	}
	return total / float64(maxDim), approximate
}

func buildWeightMatrix(a, b []cfg.BasicBlock) [][]float64 {
	w := make([][]float64, len(a))
	for i := range a {
		w[i] = make([]float64, len(b))
		for j := range b {
			w[i][j] = blockWeight(a[i], b[j])
		}
	}
	return w
}

// blockWeight is the cosine similarity of two block mnemonic
// histograms, scaled by the ratio of their instruction counts.
func blockWeight(a, b cfg.BasicBlock) float64 {
	var dot, na, nb float64
	for i := range a.Signature {
		x := float64(a.Signature[i])
		y := float64(b.Signature[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	cosine := dot / (math.Sqrt(na) * math.Sqrt(nb))

	ca, cb := float64(a.InstructionCount()), float64(b.InstructionCount())
	if ca == 0 || cb == 0 {
		return 0
	}
	ratio := math.Min(ca, cb) / math.Max(ca, cb)
	return cosine * ratio
}
