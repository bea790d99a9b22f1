// Package cfg partitions a function's decoded instruction stream into
// basic blocks using standard leader rules and assembles the resulting
// directed graph, per the CFG Builder component.
package cfg

import (
	"sort"

	"github.com/gographer/gographer/address_space"
	"github.com/gographer/gographer/disasm"
)

// BasicBlock is a maximal straight-line instruction range ending in a
// terminator. It is immutable once returned by Build.
type BasicBlock struct {
	Start       address_space.VA
	End         address_space.VA
	Signature   [disasm.NumClasses]int
	Successors  []int // indices into ControlFlowGraph.Blocks
	InDegree    int
	OutDegree   int
	Invalid     bool
}

// InstructionCount returns the total number of instructions this
// block's signature accounts for.
func (b BasicBlock) InstructionCount() int {
	n := 0
	for _, c := range b.Signature {
		n += c
	}
	return n
}

// Edge connects two blocks within one ControlFlowGraph, identified by
// index into its Blocks slice.
type Edge struct {
	From int
	To   int
}

// Fingerprint is a small, cheap-to-compare summary of a CFG used to
// reject dissimilar pairs before the expensive similarity scoring in
// package similarity.
type Fingerprint struct {
	BlockCountBucket int
	EdgeCountBucket  int
	// ClassTotals is a sorted (descending) multiset of the CFG's
	// mnemonic-class totals, one entry per class in disasm's alphabet.
	ClassTotals [disasm.NumClasses]int
}

// ControlFlowGraph is one function's directed graph of basic blocks.
// Immutable after Build returns, except for Approximate, which
// matcher.Match sets afterwards.
type ControlFlowGraph struct {
	Name        string
	EntryOffset address_space.VA
	Blocks      []BasicBlock
	Edges       []Edge
	Fingerprint Fingerprint
	// Approximate is set by matcher.Match on a reference graph that was
	// chosen as some sample function's best match when that winning
	// score used the greedy bipartite-matching approximation of §4.4.
	// It is not set on sample graphs, nor for greedy scores that did not
	// win.
	Approximate bool
}

// bucket maps a count onto a small number of buckets so that
// fingerprints tolerate minor compiler variation without becoming
// useless (an unbucketed count would almost never collide).
func bucket(n int) int {
	switch {
	case n <= 1:
		return 0
	case n <= 4:
		return 1
	case n <= 16:
		return 2
	case n <= 64:
		return 3
	default:
		return 4
	}
}

func computeFingerprint(blocks []BasicBlock, edgeCount int) Fingerprint {
	fp := Fingerprint{
		BlockCountBucket: bucket(len(blocks)),
		EdgeCountBucket:  bucket(edgeCount),
	}
	for _, b := range blocks {
		for c, n := range b.Signature {
			fp.ClassTotals[c] += n
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(fp.ClassTotals[:])))
	return fp
}

// WithinSlack reports whether two fingerprints are close enough to be
// worth full scoring, per §4.3's configured-slack prefilter.
func (fp Fingerprint) WithinSlack(other Fingerprint, slack int) bool {
	if abs(fp.BlockCountBucket-other.BlockCountBucket) > slack {
		return false
	}
	if abs(fp.EdgeCountBucket-other.EdgeCountBucket) > slack {
		return false
	}
	total := 0
	for i := range fp.ClassTotals {
		total += abs(fp.ClassTotals[i] - other.ClassTotals[i])
	}
	// A generous multiplier on slack for the class-totals distance:
	// this is a coarse multiset comparison, not the fine-grained
	// scoring similarity itself does.
	return total <= slack*8+8
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
