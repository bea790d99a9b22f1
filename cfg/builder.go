package cfg

import (
	"sort"

	"github.com/gographer/gographer/address_space"
	"github.com/gographer/gographer/disasm"
	"github.com/gographer/gographer/loader"
)

// Build partitions the instruction range [entry, funcEnd) into basic
// blocks using leader rules (function entry, any in-range direct
// branch/call target, and the instruction immediately following a
// terminator that can fall through are leaders) and assembles the
// resulting directed graph. Instructions after a return, an
// unconditional or indirect jump, or an undecodable instruction start a
// block only when a branch targets them; otherwise they are left out of
// the graph.
//
// Unlike the teacher's ExploreFunction, which discovers leaders online
// via a worklist while walking a live, emulated address space, Build
// first decodes the whole function range once to learn every leader,
// then partitions — the function body here is a fixed, already-mapped
// byte range rather than something instructions can branch into
// mid-emulation, so there is no need to revisit and split
// already-built blocks as new leaders turn up.
func Build(space *address_space.Space, arch loader.Arch, name string, entry, funcEnd address_space.VA) *ControlFlowGraph {
	instrs := linearDecode(space, arch, entry, funcEnd)
	if len(instrs) == 0 {
		return &ControlFlowGraph{Name: name, EntryOffset: entry}
	}

	addrIndex := make(map[address_space.VA]int, len(instrs))
	for idx, in := range instrs {
		addrIndex[in.Address] = idx
	}

	leaders := map[address_space.VA]bool{entry: true}
	for _, in := range instrs {
		if !in.IsTerminator() {
			continue
		}
		if in.FallsThrough() {
			next := in.Address + address_space.VA(in.Length)
			if _, ok := addrIndex[next]; ok {
				leaders[next] = true
			}
		}
		if isDirectBranch(in.Branch) {
			if _, ok := addrIndex[in.Target]; ok {
				leaders[in.Target] = true
			}
		}
	}

	sortedLeaders := make([]address_space.VA, 0, len(leaders))
	for lv := range leaders {
		sortedLeaders = append(sortedLeaders, lv)
	}
	sort.Slice(sortedLeaders, func(i, j int) bool { return sortedLeaders[i] < sortedLeaders[j] })

	blocks := make([]BasicBlock, 0, len(sortedLeaders))
	lastInstr := make([]disasm.Instruction, 0, len(sortedLeaders))
	startIndexOf := make(map[address_space.VA]int, len(sortedLeaders))

	for i, lv := range sortedLeaders {
		startIdx := addrIndex[lv]
		endIdx := len(instrs)
		if i+1 < len(sortedLeaders) {
			if nextIdx, ok := addrIndex[sortedLeaders[i+1]]; ok {
				endIdx = nextIdx
			}
		}
		cut := endIdx
		for j := startIdx; j < endIdx; j++ {
			if instrs[j].IsTerminator() {
				cut = j + 1
				break
			}
		}
		body := instrs[startIdx:cut]
		var sig [disasm.NumClasses]int
		invalid := false
		for _, in := range body {
			sig[in.Class]++
			invalid = invalid || in.Invalid
		}
		last := body[len(body)-1]
		startIndexOf[lv] = len(blocks)
		blocks = append(blocks, BasicBlock{
			Start:     lv,
			End:       last.Address + address_space.VA(last.Length),
			Signature: sig,
			Invalid:   invalid,
		})
		lastInstr = append(lastInstr, last)
	}

	var edges []Edge
	for bi, last := range lastInstr {
		if last.FallsThrough() {
			next := last.Address + address_space.VA(last.Length)
			if toIdx, ok := startIndexOf[next]; ok {
				edges = addEdge(edges, blocks, bi, toIdx)
			}
		}
		if isDirectBranch(last.Branch) {
			if toIdx, ok := startIndexOf[last.Target]; ok {
				edges = addEdge(edges, blocks, bi, toIdx)
			}
		}
	}

	return &ControlFlowGraph{
		Name:        name,
		EntryOffset: entry,
		Blocks:      blocks,
		Edges:       edges,
		Fingerprint: computeFingerprint(blocks, len(edges)),
	}
}

func isDirectBranch(k disasm.BranchKind) bool {
	switch k {
	case disasm.BranchUnconditionalJump, disasm.BranchConditionalJump, disasm.BranchCall:
		return true
	default:
		return false
	}
}

func addEdge(edges []Edge, blocks []BasicBlock, from, to int) []Edge {
	blocks[from].Successors = append(blocks[from].Successors, to)
	blocks[from].OutDegree++
	blocks[to].InDegree++
	return append(edges, Edge{From: from, To: to})
}

func linearDecode(space *address_space.Space, arch loader.Arch, entry, funcEnd address_space.VA) []disasm.Instruction {
	var instrs []disasm.Instruction
	addr := entry
	for addr < funcEnd {
		inst := disasm.DecodeOne(space, arch, addr)
		instrs = append(instrs, inst)
		addr += address_space.VA(inst.Length)
	}
	return instrs
}
