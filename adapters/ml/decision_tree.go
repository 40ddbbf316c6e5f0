package ml

import (
	"gonum.org/v1/gonum/mat"

	"surveyml/domain/model"
	"surveyml/ports"
)

// DecisionTreeClassifier is a single CART tree on gini impurity.
type DecisionTreeClassifier struct {
	BaseEstimator
	config model.ModelConfig
	tree   *Tree
}

// NewDecisionTree creates an unfitted decision tree
func NewDecisionTree(config model.ModelConfig, _ ports.RNGPort) ports.Classifier {
	return &DecisionTreeClassifier{config: config}
}

func (c *DecisionTreeClassifier) Name() model.ModelName { return model.DecisionTree }

// Fit grows the tree on X and binary labels y
func (c *DecisionTreeClassifier) Fit(X mat.Matrix, y []int) error {
	c.reset()
	cols, err := checkInput(X, y)
	if err != nil {
		return err
	}
	c.tree = buildTree(cols, labelTargets(y), identity(len(y)), treeParams{
		maxDepth:        c.config.TreeMaxDepth,
		minSamplesSplit: c.config.MinSamplesSplit,
		minSamplesLeaf:  c.config.MinSamplesLeaf,
		impurityScale:   2,
	}, nil)
	c.setFitted(len(cols))
	return nil
}

// PredictProba returns [P(label 0), P(label 1)] from the leaf class frequencies
func (c *DecisionTreeClassifier) PredictProba(x []float64) [2]float64 {
	if !c.IsFitted() {
		return [2]float64{0.5, 0.5}
	}
	return probaFromPositive(c.tree.Evaluate(x))
}

// FeatureImportances returns normalised impurity decrease per feature
func (c *DecisionTreeClassifier) FeatureImportances() []float64 {
	if !c.IsFitted() {
		return nil
	}
	return normalize(append([]float64(nil), c.tree.Importances...))
}

// Tree exposes the fitted tree
func (c *DecisionTreeClassifier) Tree() *Tree { return c.tree }

func labelTargets(y []int) []float64 {
	t := make([]float64, len(y))
	for i, label := range y {
		t[i] = float64(label)
	}
	return t
}
