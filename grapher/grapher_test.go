package grapher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gographer/gographer/address_space"
	"github.com/gographer/gographer/cfg"
	"github.com/gographer/gographer/config"
	"github.com/gographer/gographer/disasm"
	"github.com/gographer/gographer/disassembly"
)

func sampleGraph(name string, entry address_space.VA) *cfg.ControlFlowGraph {
	return &cfg.ControlFlowGraph{
		Name:        name,
		EntryOffset: entry,
		Blocks: []cfg.BasicBlock{
			{Start: entry, End: entry + 1, Signature: [disasm.NumClasses]int{disasm.ClassRet: 1}},
		},
	}
}

func TestNewAppliesOptions(t *testing.T) {
	customCfg := config.Default()
	customCfg.Workers = 2
	g := New(0.5, false, WithConfig(customCfg))
	assert.Equal(t, 0.5, g.Threshold)
	assert.Equal(t, 2, g.config.Workers)
}

func TestCompareProducesReportWithTiming(t *testing.T) {
	g := New(0.0, false)

	sample := &disassembly.Disassembly{
		Name:   "sample.exe",
		Graphs: []*cfg.ControlFlowGraph{sampleGraph("main.f", 0x1000)},
	}
	ref := &disassembly.Disassembly{
		Name:   "clean.dll",
		Graphs: []*cfg.ControlFlowGraph{sampleGraph("clean.f", 0x2000)},
	}

	report, err := g.Compare(sample, []*disassembly.Disassembly{ref})
	require.NoError(t, err)
	require.Len(t, report.Matches, 1)
	assert.Equal(t, "sample.exe", report.SampleName)
	assert.GreaterOrEqual(t, report.ComputeTimeMS, int64(0))
}

func TestCompareEmptyReferences(t *testing.T) {
	g := New(0.0, false)
	sample := &disassembly.Disassembly{
		Name:   "sample.exe",
		Graphs: []*cfg.ControlFlowGraph{sampleGraph("main.f", 0x1000)},
	}

	report, err := g.Compare(sample, nil)
	require.NoError(t, err)
	assert.Empty(t, report.Matches)
}

func TestGenerateGraphsFailsAllOnAnyMissingFile(t *testing.T) {
	g := New(0.0, false)
	targets := []Target{
		{Name: "missing-one", Path: "/nonexistent/path/one"},
		{Name: "missing-two", Path: "/nonexistent/path/two"},
	}

	graphs, err := g.GenerateGraphs(context.Background(), targets)
	assert.Error(t, err)
	assert.Nil(t, graphs)
}

func TestGenerateGraphsRespectsCancelledContext(t *testing.T) {
	g := New(0.0, false)
	targets := []Target{
		{Name: "missing-one", Path: "/nonexistent/path/one"},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	graphs, err := g.GenerateGraphs(ctx, targets)
	assert.Error(t, err)
	assert.Nil(t, graphs)
}
