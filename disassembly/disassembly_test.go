package disassembly

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gographer/gographer/address_space"
	"github.com/gographer/gographer/cfg"
)

func fakeDisassembly(names ...string) *Disassembly {
	d := &Disassembly{Name: "sample", Path: "sample.bin"}
	for i, n := range names {
		d.Graphs = append(d.Graphs, &cfg.ControlFlowGraph{
			Name:        n,
			EntryOffset: address_space.VA(0x1000 + i*0x10),
			Blocks:      []cfg.BasicBlock{{Start: 0x1000, End: 0x1001}},
		})
	}
	return d
}

func TestGetSubsetHalf(t *testing.T) {
	d := fakeDisassembly("main.a", "main.b", "main.c", "main.d", "main.e",
		"main.f", "main.g", "main.h", "main.i", "main.j")

	sub, err := d.GetSubset(0.5)
	require.NoError(t, err)
	assert.Len(t, sub.Graphs, 5)
	for i := 0; i < 5; i++ {
		assert.Equal(t, d.Graphs[i], sub.Graphs[i])
	}
}

func TestGetSubsetFullRatioIsIdentity(t *testing.T) {
	d := fakeDisassembly("main.a", "main.b", "main.c")
	sub, err := d.GetSubset(1.0)
	require.NoError(t, err)
	assert.Equal(t, d.Graphs, sub.Graphs)
}

func TestGetSubsetInvalidRatio(t *testing.T) {
	d := fakeDisassembly("main.a")
	_, err := d.GetSubset(0)
	assert.Error(t, err)
	_, err = d.GetSubset(1.5)
	assert.Error(t, err)
}

func TestFilterSymbolMatchAll(t *testing.T) {
	d := fakeDisassembly("main.a", "runtime.b")
	filtered := d.FilterSymbol(regexp.MustCompile(".*"))
	assert.Equal(t, d.Graphs, filtered.Graphs)
}

func TestFilterSymbolMainPrefix(t *testing.T) {
	d := fakeDisassembly("main.a", "runtime.b", "main.c")
	filtered := d.FilterSymbol(regexp.MustCompile(`^main\.`))
	require.Len(t, filtered.Graphs, 2)
	assert.Equal(t, "main.a", filtered.Graphs[0].Name)
	assert.Equal(t, "main.c", filtered.Graphs[1].Name)
}
