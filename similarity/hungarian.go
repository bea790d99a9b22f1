package similarity

import "github.com/gographer/gographer/cfg"

const hungarianInf = 1e18

// hungarianMatch computes the maximum-weight perfect matching of the
// (possibly rectangular) weight matrix, padding to a square matrix
// with zero-weight dummy rows/columns so that blocks on the larger
// side simply go unmatched at weight 0 — exactly the "unmatched
// blocks penalize the score" behavior §4.4 asks for.
//
// This is a classic O(n^3) Kuhn-Munkres assignment solver run on the
// negated weights (turning maximization into the textbook minimization
// form). Ties are broken implicitly by iterating rows and columns in
// their given order, which callers must supply sorted by ascending
// block start offset, per §4.4's determinism requirement.
func hungarianMatch(weights [][]float64) float64 {
	n := len(weights)
	m := 0
	if n > 0 {
		m = len(weights[0])
	}
	dim := n
	if m > dim {
		dim = m
	}
	if dim == 0 {
		return 0
	}

	cost := make([][]float64, dim+1)
	for i := range cost {
		cost[i] = make([]float64, dim+1)
	}
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			var w float64
			if i < n && j < m {
				w = weights[i][j]
			}
			cost[i+1][j+1] = -w
		}
	}

	u := make([]float64, dim+1)
	v := make([]float64, dim+1)
	p := make([]int, dim+1)
	way := make([]int, dim+1)

	for i := 1; i <= dim; i++ {
		p[0] = i
		j0 := 0
		minv := make([]float64, dim+1)
		used := make([]bool, dim+1)
		for j := range minv {
			minv[j] = hungarianInf
		}

		for {
			used[j0] = true
			i0 := p[j0]
			delta := hungarianInf
			j1 := -1
			for j := 1; j <= dim; j++ {
				if used[j] {
					continue
				}
				cur := cost[i0][j] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			for j := 0; j <= dim; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}

		for j0 != 0 {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
		}
	}

	var total float64
	for j := 1; j <= dim; j++ {
		i := p[j] - 1
		col := j - 1
		if i >= 0 && i < n && col < m {
			total += weights[i][col]
		}
	}
	return total
}

// greedyMatch is the complexity fallback of §4.4: sort candidate pairs
// by weight descending and take them in order if both endpoints are
// unused. Ties fall back to the lower block start offset in each
// graph because a and b are supplied in ascending-start-offset order
// and the sort below is stable.
type weightedPair struct {
	i, j int
	w    float64
}

func greedyMatch(weights [][]float64, a, b []cfg.BasicBlock) float64 {
	pairs := make([]weightedPair, 0, len(a)*len(b))
	for i := range a {
		for j := range b {
			pairs = append(pairs, weightedPair{i, j, weights[i][j]})
		}
	}
	stableSortPairsDescending(pairs)

	usedA := make([]bool, len(a))
	usedB := make([]bool, len(b))
	var total float64
	for _, p := range pairs {
		if usedA[p.i] || usedB[p.j] {
			continue
		}
		usedA[p.i] = true
		usedB[p.j] = true
		total += p.w
	}
	return total
}

func stableSortPairsDescending(pairs []weightedPair) {
	// insertion sort keeps equal-weight pairs in their (i, j) order.
	// This fallback only runs when n*m exceeds the exact-match budget,
	// so pairs is at least that long and the sort is quadratic in it.
	for i := 1; i < len(pairs); i++ {
		for j := i; j > 0 && pairs[j].w > pairs[j-1].w; j-- {
			pairs[j], pairs[j-1] = pairs[j-1], pairs[j]
		}
	}
}
