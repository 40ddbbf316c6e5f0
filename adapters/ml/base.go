// Package ml implements the CART-based classifier families used by the ensemble trainer.
package ml

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"surveyml/domain/core"
)

// EstimatorState tracks whether a classifier has been fitted.
type EstimatorState int

const (
	NotFitted EstimatorState = iota
	Fitted
)

// BaseEstimator carries the fitted-state guard shared by all classifiers.
type BaseEstimator struct {
	State       EstimatorState
	NumFeatures int
}

// IsFitted reports whether Fit completed successfully
func (e *BaseEstimator) IsFitted() bool {
	return e.State == Fitted
}

func (e *BaseEstimator) setFitted(features int) {
	e.State = Fitted
	e.NumFeatures = features
}

func (e *BaseEstimator) reset() {
	e.State = NotFitted
	e.NumFeatures = 0
}

// checkInput validates a training set and returns its columns for fast access.
func checkInput(X mat.Matrix, y []int) ([][]float64, error) {
	if X == nil {
		return nil, core.NewInsufficientDataError("training matrix", 0, 1)
	}
	r, c := X.Dims()
	if r == 0 {
		return nil, core.NewInsufficientDataError("training rows", 0, 1)
	}
	if c == 0 {
		return nil, core.ErrNoFeatures
	}
	if len(y) != r {
		return nil, fmt.Errorf("%w: %d rows but %d labels", core.ErrRowMismatch, r, len(y))
	}
	for i, label := range y {
		if label != 0 && label != 1 {
			return nil, fmt.Errorf("%w: label %d at row %d is not binary", core.ErrDataQuality, label, i)
		}
	}
	cols := make([][]float64, c)
	for j := range cols {
		cols[j] = mat.Col(nil, j, X)
	}
	return cols, nil
}

func classCounts(y []int) (neg, pos int) {
	for _, label := range y {
		if label == 1 {
			pos++
		} else {
			neg++
		}
	}
	return neg, pos
}

func identity(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func normalize(v []float64) []float64 {
	var total float64
	for _, x := range v {
		total += x
	}
	if total <= 0 {
		return v
	}
	for i := range v {
		v[i] /= total
	}
	return v
}

func probaFromPositive(p float64) [2]float64 {
	return [2]float64{1 - p, p}
}
