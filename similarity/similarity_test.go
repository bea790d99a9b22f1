package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gographer/gographer/address_space"
	"github.com/gographer/gographer/cfg"
	"github.com/gographer/gographer/disasm"
	"github.com/gographer/gographer/loader"
)

func sampleGraph(name string, base address_space.VA) *cfg.ControlFlowGraph {
	// test eax,eax; je +2; xor eax,eax; ret
	code := []byte{0x85, 0xc0, 0x74, 0x02, 0x31, 0xc0, 0xc3}
	space := address_space.New(
		[]address_space.Region{{Address: base, Length: uint64(len(code))}},
		map[address_space.VA][]byte{base: code},
	)
	return cfg.Build(space, loader.ArchX8664, name, base, base+address_space.VA(len(code)))
}

func emptyGraph(name string) *cfg.ControlFlowGraph {
	return &cfg.ControlFlowGraph{Name: name}
}

func TestScoreSelfSimilarityIsOne(t *testing.T) {
	g := sampleGraph("f", 0x1000)
	score, _ := Score(g, g, DefaultConfig())
	assert.Equal(t, 1.0, score)
}

func TestScoreSymmetric(t *testing.T) {
	a := sampleGraph("f", 0x1000)
	b := sampleGraph("g", 0x2000)
	s1, _ := Score(a, b, DefaultConfig())
	s2, _ := Score(b, a, DefaultConfig())
	assert.InDelta(t, s1, s2, 1e-9)
}

func TestScoreBounds(t *testing.T) {
	a := sampleGraph("f", 0x1000)
	b := sampleGraph("g", 0x2000)
	s, _ := Score(a, b, DefaultConfig())
	assert.GreaterOrEqual(t, s, 0.0)
	assert.LessOrEqual(t, s, 1.0)
}

func TestScoreEmptyIsZero(t *testing.T) {
	a := sampleGraph("f", 0x1000)
	empty := emptyGraph("empty")

	s1, _ := Score(a, empty, DefaultConfig())
	assert.Equal(t, 0.0, s1)

	s2, _ := Score(empty, empty, DefaultConfig())
	assert.Equal(t, 0.0, s2)
}

func TestBlockWeightIgnoresEmptyBlocks(t *testing.T) {
	a := cfg.BasicBlock{Signature: [disasm.NumClasses]int{}}
	b := cfg.BasicBlock{Signature: [disasm.NumClasses]int{}}
	assert.Equal(t, 0.0, blockWeight(a, b))
}

func TestHungarianMatchesIdenticalMatrixToTrace(t *testing.T) {
	weights := [][]float64{
		{1.0, 0.1},
		{0.1, 1.0},
	}
	total := hungarianMatch(weights)
	assert.InDelta(t, 2.0, total, 1e-9)
}

func TestGreedyMatchNeverExceedsHungarian(t *testing.T) {
	weights := [][]float64{
		{0.9, 0.8, 0.1},
		{0.7, 0.95, 0.2},
	}
	a := make([]cfg.BasicBlock, 2)
	b := make([]cfg.BasicBlock, 3)
	greedy := greedyMatch(weights, a, b)
	exact := hungarianMatch(weights)
	assert.LessOrEqual(t, greedy, exact+1e-9)
}
