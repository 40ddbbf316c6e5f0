package ml

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"surveyml/domain/model"
	"surveyml/ports"
)

// RandomForestClassifier averages bootstrap CART trees grown on random feature subsets.
type RandomForestClassifier struct {
	BaseEstimator
	config model.ModelConfig
	rng    ports.RNGPort
	trees  []*Tree
}

// NewRandomForest creates an unfitted forest drawing from the random_forest stream
func NewRandomForest(config model.ModelConfig, rng ports.RNGPort) ports.Classifier {
	return &RandomForestClassifier{config: config, rng: rng}
}

func (c *RandomForestClassifier) Name() model.ModelName { return model.RandomForest }

// Fit grows ForestTrees trees, each on a bootstrap sample with sqrt(p) features per split
func (c *RandomForestClassifier) Fit(X mat.Matrix, y []int) error {
	c.reset()
	cols, err := checkInput(X, y)
	if err != nil {
		return err
	}

	r := c.rng.Stream(string(model.RandomForest))
	n := len(y)
	targets := labelTargets(y)
	maxFeatures := int(math.Sqrt(float64(len(cols))))
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	c.trees = make([]*Tree, c.config.ForestTrees)
	for t := range c.trees {
		c.trees[t] = buildTree(cols, targets, bootstrap(r, n), treeParams{
			maxDepth:        c.config.ForestMaxDepth,
			minSamplesSplit: c.config.MinSamplesSplit,
			minSamplesLeaf:  c.config.MinSamplesLeaf,
			maxFeatures:     maxFeatures,
			rng:             r,
			impurityScale:   2,
		}, nil)
	}
	c.setFitted(len(cols))
	return nil
}

func bootstrap(r *rand.Rand, n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = r.Intn(n)
	}
	return idx
}

// PredictProba averages the per-tree leaf probabilities
func (c *RandomForestClassifier) PredictProba(x []float64) [2]float64 {
	if !c.IsFitted() || len(c.trees) == 0 {
		return [2]float64{0.5, 0.5}
	}
	var p float64
	for _, t := range c.trees {
		p += t.Evaluate(x)
	}
	return probaFromPositive(p / float64(len(c.trees)))
}

// FeatureImportances averages the normalised per-tree importances
func (c *RandomForestClassifier) FeatureImportances() []float64 {
	if !c.IsFitted() {
		return nil
	}
	out := make([]float64, c.NumFeatures)
	for _, t := range c.trees {
		imp := normalize(append([]float64(nil), t.Importances...))
		for j, v := range imp {
			out[j] += v
		}
	}
	return normalize(out)
}

// Trees returns the component trees
func (c *RandomForestClassifier) Trees() []*Tree { return c.trees }
