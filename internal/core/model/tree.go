package model

import (
	"math"
	"sort"
)

// Node is one node of a regression tree, stored flat by index so the
// ensemble serializes to plain JSON.
type Node struct {
	Feature   int     `json:"f"` // -1 marks a leaf
	Threshold float64 `json:"t,omitempty"`
	Left      int     `json:"l,omitempty"`
	Right     int     `json:"r,omitempty"`
	Value     float64 `json:"v,omitempty"`
}

// Tree is a depth-limited regression tree fit to weighted residuals.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Predict walks the tree for one feature vector.
func (t *Tree) Predict(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Feature < 0 {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

type treeBuilder struct {
	x          [][]float64
	y          []float64
	w          []float64
	maxDepth   int
	minSamples int
	nodes      []Node
}

// fitTree grows a tree on the given sample indices by greedy weighted
// variance reduction with exact split search per feature.
func fitTree(x [][]float64, y, w []float64, indices []int, maxDepth, minSamples int) *Tree {
	b := &treeBuilder{x: x, y: y, w: w, maxDepth: maxDepth, minSamples: minSamples}
	b.grow(indices, 0)
	return &Tree{Nodes: b.nodes}
}

func (b *treeBuilder) grow(indices []int, depth int) int {
	id := len(b.nodes)
	b.nodes = append(b.nodes, Node{Feature: -1, Value: weightedMean(b.y, b.w, indices)})

	if depth >= b.maxDepth || len(indices) < 2*b.minSamples {
		return id
	}

	feat, thresh, ok := b.bestSplit(indices)
	if !ok {
		return id
	}

	var left, right []int
	for _, i := range indices {
		if b.x[i][feat] <= thresh {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < b.minSamples || len(right) < b.minSamples {
		return id
	}

	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.nodes[id] = Node{Feature: feat, Threshold: thresh, Left: l, Right: r}
	return id
}

// bestSplit scans every feature, sorting the node's samples by feature
// value and sweeping prefix weighted sums, and returns the split that
// minimizes total weighted squared error.
func (b *treeBuilder) bestSplit(indices []int) (int, float64, bool) {
	var (
		totW, totWY float64
	)
	for _, i := range indices {
		totW += b.w[i]
		totWY += b.w[i] * b.y[i]
	}
	if totW <= 0 {
		return 0, 0, false
	}

	// Parent SSE up to a constant: -Σ(wy)²/Σw per side, lower is better.
	bestScore := -(totWY * totWY) / totW
	bestFeat, bestThresh := -1, 0.0

	order := make([]int, len(indices))
	nFeatures := len(b.x[indices[0]])

	for f := 0; f < nFeatures; f++ {
		copy(order, indices)
		sort.Slice(order, func(a, c int) bool { return b.x[order[a]][f] < b.x[order[c]][f] })

		var leftW, leftWY float64
		for pos := 0; pos < len(order)-1; pos++ {
			i := order[pos]
			leftW += b.w[i]
			leftWY += b.w[i] * b.y[i]

			cur, next := b.x[i][f], b.x[order[pos+1]][f]
			if cur == next {
				continue
			}
			if pos+1 < b.minSamples || len(order)-pos-1 < b.minSamples {
				continue
			}

			rightW := totW - leftW
			rightWY := totWY - leftWY
			if leftW <= 0 || rightW <= 0 {
				continue
			}
			score := -(leftWY*leftWY)/leftW - (rightWY*rightWY)/rightW
			if score < bestScore-1e-12 {
				bestScore = score
				bestFeat = f
				bestThresh = (cur + next) / 2
			}
		}
	}

	if bestFeat < 0 || math.IsNaN(bestThresh) {
		return 0, 0, false
	}
	return bestFeat, bestThresh, true
}

func weightedMean(y, w []float64, indices []int) float64 {
	var sw, swy float64
	for _, i := range indices {
		sw += w[i]
		swy += w[i] * y[i]
	}
	if sw <= 0 {
		return 0
	}
	return swy / sw
}
