package ml

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"surveyml/domain/core"
	"surveyml/domain/model"
	"surveyml/ports"
)

// GradientBoostingClassifier fits regression trees to log-loss gradients.
type GradientBoostingClassifier struct {
	BaseEstimator
	config model.ModelConfig
	init   float64
	trees  []*Tree
}

// NewGradientBoosting creates an unfitted boosting classifier
func NewGradientBoosting(config model.ModelConfig, _ ports.RNGPort) ports.Classifier {
	return &GradientBoostingClassifier{config: config}
}

func (c *GradientBoostingClassifier) Name() model.ModelName { return model.GradientBoosting }

// Fit starts from the prior log-odds and adds BoostingStages trees with Newton-step leaves.
// Both classes must be present.
func (c *GradientBoostingClassifier) Fit(X mat.Matrix, y []int) error {
	c.reset()
	cols, err := checkInput(X, y)
	if err != nil {
		return err
	}
	neg, pos := classCounts(y)
	if neg == 0 || pos == 0 {
		return fmt.Errorf("%w: gradient boosting needs both classes, got %d/%d", core.ErrSingleClass, neg, pos)
	}

	n := len(y)
	prior := float64(pos) / float64(n)
	c.init = math.Log(prior / (1 - prior))

	raw := make([]float64, n)
	for i := range raw {
		raw[i] = c.init
	}
	prob := make([]float64, n)
	residual := make([]float64, n)
	all := identity(n)
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = mat.Row(nil, i, X)
	}

	newton := func(idx []int) float64 {
		var num, den float64
		for _, i := range idx {
			num += residual[i]
			den += prob[i] * (1 - prob[i])
		}
		if math.Abs(den) < 1e-150 {
			return 0
		}
		return num / den
	}

	c.trees = make([]*Tree, 0, c.config.BoostingStages)
	for stage := 0; stage < c.config.BoostingStages; stage++ {
		for i := range raw {
			prob[i] = sigmoid(raw[i])
			residual[i] = float64(y[i]) - prob[i]
		}
		tree := buildTree(cols, residual, all, treeParams{
			maxDepth:        c.config.BoostingMaxDepth,
			minSamplesSplit: c.config.MinSamplesSplit,
			minSamplesLeaf:  c.config.MinSamplesLeaf,
		}, newton)
		for j := range tree.Nodes {
			if tree.Nodes[j].Leaf {
				tree.Nodes[j].Value *= c.config.BoostingLearnRate
			}
		}
		for i := range raw {
			raw[i] += tree.Evaluate(rows[i])
		}
		c.trees = append(c.trees, tree)
	}
	c.setFitted(len(cols))
	return nil
}

// DecisionFunction returns the raw log-odds score for x
func (c *GradientBoostingClassifier) DecisionFunction(x []float64) float64 {
	f := c.init
	for _, t := range c.trees {
		f += t.Evaluate(x)
	}
	return f
}

// PredictProba returns the sigmoid of the boosted log-odds
func (c *GradientBoostingClassifier) PredictProba(x []float64) [2]float64 {
	if !c.IsFitted() {
		return [2]float64{0.5, 0.5}
	}
	return probaFromPositive(sigmoid(c.DecisionFunction(x)))
}

// FeatureImportances sums impurity decrease over every stage, then normalises
func (c *GradientBoostingClassifier) FeatureImportances() []float64 {
	if !c.IsFitted() {
		return nil
	}
	out := make([]float64, c.NumFeatures)
	for _, t := range c.trees {
		for j, v := range t.Importances {
			out[j] += v
		}
	}
	return normalize(out)
}

// Stages returns the number of fitted trees
func (c *GradientBoostingClassifier) Stages() int { return len(c.trees) }

func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}
