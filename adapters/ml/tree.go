package ml

import (
	"math"
	"math/rand"
	"sort"
)

// Node is one split or leaf of a flat binary tree. Samples with x[Feature] <= Threshold
// go left.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Leaf      bool    `json:"leaf"`
	Value     float64 `json:"value"`
	Samples   int     `json:"samples"`
	Impurity  float64 `json:"impurity"`
}

// Tree is a fitted CART tree stored as a flat node list rooted at index 0.
type Tree struct {
	Nodes       []Node    `json:"nodes"`
	FeatureSize int       `json:"feature_size"`
	Depth       int       `json:"depth"`
	Importances []float64 `json:"importances"` // unnormalised weighted impurity decrease
}

// Evaluate drops x down the tree and returns the leaf value.
func (t *Tree) Evaluate(x []float64) float64 {
	n := t.Nodes[0]
	for !n.Leaf {
		if x[n.Feature] <= n.Threshold {
			n = t.Nodes[n.Left]
		} else {
			n = t.Nodes[n.Right]
		}
	}
	return n.Value
}

// Leaves counts leaf nodes
func (t *Tree) Leaves() int {
	count := 0
	for _, n := range t.Nodes {
		if n.Leaf {
			count++
		}
	}
	return count
}

// treeParams bounds tree growth.
type treeParams struct {
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
	maxFeatures     int        // 0 means every feature
	rng             *rand.Rand // required when maxFeatures > 0
	impurityScale   float64    // 2 turns binary variance into gini
}

// leafFunc computes the output of a leaf from the samples that reach it.
type leafFunc func(idx []int) float64

// treeBuilder grows a tree on a variance criterion. For 0/1 targets the variance is half
// the gini impurity, so classification and regression trees share one split search.
type treeBuilder struct {
	cols    [][]float64
	targets []float64
	params  treeParams
	leaf    leafFunc
	tree    *Tree
}

func buildTree(cols [][]float64, targets []float64, idx []int, params treeParams, leaf leafFunc) *Tree {
	if params.impurityScale == 0 {
		params.impurityScale = 1
	}
	if leaf == nil {
		leaf = func(idx []int) float64 { return meanOf(targets, idx) }
	}
	b := &treeBuilder{
		cols:    cols,
		targets: targets,
		params:  params,
		leaf:    leaf,
		tree:    &Tree{FeatureSize: len(cols), Importances: make([]float64, len(cols))},
	}
	b.grow(idx, 0)
	return b.tree
}

type split struct {
	feature   int
	threshold float64
	gain      float64
	position  int // samples [0, position) of the sorted index go left
	sorted    []int
}

func (b *treeBuilder) grow(idx []int, depth int) int {
	nodeID := len(b.tree.Nodes)
	impurity := b.impurity(idx)
	b.tree.Nodes = append(b.tree.Nodes, Node{Samples: len(idx), Impurity: impurity * b.params.impurityScale})
	if depth > b.tree.Depth {
		b.tree.Depth = depth
	}

	if depth >= b.params.maxDepth || len(idx) < b.params.minSamplesSplit ||
		len(idx) < 2*b.params.minSamplesLeaf || impurity <= 1e-12 {
		b.makeLeaf(nodeID, idx)
		return nodeID
	}

	best, ok := b.findSplit(idx, impurity)
	if !ok {
		b.makeLeaf(nodeID, idx)
		return nodeID
	}

	left := append([]int(nil), best.sorted[:best.position]...)
	right := append([]int(nil), best.sorted[best.position:]...)
	b.tree.Importances[best.feature] += best.gain * b.params.impurityScale

	b.tree.Nodes[nodeID].Feature = best.feature
	b.tree.Nodes[nodeID].Threshold = best.threshold
	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.tree.Nodes[nodeID].Left = l
	b.tree.Nodes[nodeID].Right = r
	return nodeID
}

func (b *treeBuilder) makeLeaf(nodeID int, idx []int) {
	b.tree.Nodes[nodeID].Leaf = true
	b.tree.Nodes[nodeID].Value = b.leaf(idx)
}

// findSplit returns the split with the largest weighted impurity decrease. Features are
// scanned in order and only a strictly better gain replaces the current best. With a
// feature limit, constant features do not count and scanning continues past the limit
// until some split is found.
func (b *treeBuilder) findSplit(idx []int, impurity float64) (split, bool) {
	n := len(idx)
	minLeaf := b.params.minSamplesLeaf
	parent := impurity * float64(n)

	var total, totalSq float64
	for _, i := range idx {
		total += b.targets[i]
		totalSq += b.targets[i] * b.targets[i]
	}

	best := split{gain: 1e-12}
	found := false
	sorted := make([]int, n)
	features, limit := b.featureOrder()
	visited := 0

	for _, f := range features {
		if visited >= limit && found {
			break
		}
		col := b.cols[f]
		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, c int) bool { return col[sorted[a]] < col[sorted[c]] })
		if col[sorted[0]] == col[sorted[n-1]] {
			continue
		}
		visited++

		var leftSum, leftSq float64
		for pos := 1; pos < n; pos++ {
			t := b.targets[sorted[pos-1]]
			leftSum += t
			leftSq += t * t

			if pos < minLeaf || n-pos < minLeaf {
				continue
			}
			lo, hi := col[sorted[pos-1]], col[sorted[pos]]
			if lo == hi {
				continue
			}

			nl, nr := float64(pos), float64(n-pos)
			rightSum, rightSq := total-leftSum, totalSq-leftSq
			childImpurity := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)
			gain := parent - childImpurity
			if gain > best.gain {
				threshold := lo + (hi-lo)/2
				if threshold == hi {
					threshold = lo
				}
				best = split{feature: f, threshold: threshold, gain: gain, position: pos,
					sorted: append(best.sorted[:0], sorted...)}
				found = true
			}
		}
	}
	return best, found
}

// featureOrder returns the scan order and how many non-constant features to inspect.
func (b *treeBuilder) featureOrder() ([]int, int) {
	p := len(b.cols)
	if b.params.maxFeatures <= 0 || b.params.maxFeatures >= p {
		return identity(p), p
	}
	return b.params.rng.Perm(p), b.params.maxFeatures
}

// impurity is the population variance of the targets at idx.
func (b *treeBuilder) impurity(idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	var sum, sq float64
	for _, i := range idx {
		sum += b.targets[i]
		sq += b.targets[i] * b.targets[i]
	}
	n := float64(len(idx))
	v := sq/n - (sum/n)*(sum/n)
	return math.Max(v, 0)
}

func meanOf(v []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	var sum float64
	for _, i := range idx {
		sum += v[i]
	}
	return sum / float64(len(idx))
}
