package app

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveyml/domain/core"
)

func labelsWith(neg, pos int) []int {
	y := make([]int, 0, neg+pos)
	for i := 0; i < neg; i++ {
		y = append(y, 0)
	}
	for i := 0; i < pos; i++ {
		y = append(y, 1)
	}
	rand.New(rand.NewSource(9)).Shuffle(len(y), func(i, j int) { y[i], y[j] = y[j], y[i] })
	return y
}

func countLabel(y []int, rows []int, label int) int {
	n := 0
	for _, i := range rows {
		if y[i] == label {
			n++
		}
	}
	return n
}

func TestStratifiedSplit_ClassProportions(t *testing.T) {
	y := labelsWith(120, 30)
	s, warnings, err := StratifiedSplit(y, 0.3, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.True(t, s.Stratified)

	assert.Equal(t, 36, countLabel(y, s.Test, 0))
	assert.Equal(t, 9, countLabel(y, s.Test, 1))
	assert.Equal(t, 84, countLabel(y, s.Train, 0))
	assert.Equal(t, 21, countLabel(y, s.Train, 1))

	seen := make(map[int]bool)
	for _, i := range append(append([]int(nil), s.Train...), s.Test...) {
		assert.False(t, seen[i], "row %d appears twice", i)
		seen[i] = true
	}
	assert.Len(t, seen, len(y))
}

func TestStratifiedSplit_Deterministic(t *testing.T) {
	y := labelsWith(40, 10)
	a, _, err := StratifiedSplit(y, 0.3, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	b, _, err := StratifiedSplit(y, 0.3, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestStratifiedSplit_SmallClassKeepsBothSides(t *testing.T) {
	y := labelsWith(10, 2)
	s, _, err := StratifiedSplit(y, 0.3, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, 1, countLabel(y, s.Test, 1))
	assert.Equal(t, 1, countLabel(y, s.Train, 1))
}

func TestStratifiedSplit_FallbackWhenClassIsSingleton(t *testing.T) {
	y := labelsWith(9, 1)
	s, warnings, err := StratifiedSplit(y, 0.3, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.False(t, s.Stratified)
	assert.True(t, core.HasWarning(warnings, core.WarnStratificationSkipped))
	assert.Len(t, s.Test, 3)
	assert.Len(t, s.Train, 7)
}

func TestStratifiedSplit_Errors(t *testing.T) {
	_, _, err := StratifiedSplit([]int{0, 0, 0}, 0.3, rand.New(rand.NewSource(1)))
	assert.True(t, errors.Is(err, core.ErrSingleClass))

	_, _, err = StratifiedSplit([]int{1}, 0.3, rand.New(rand.NewSource(1)))
	assert.True(t, errors.Is(err, core.ErrInsufficientData))
}

func TestStratifiedKFold(t *testing.T) {
	y := labelsWith(30, 9)
	folds, warnings := StratifiedKFold(y, 3, rand.New(rand.NewSource(5)))
	assert.Empty(t, warnings)
	require.Len(t, folds, 3)

	total := 0
	for _, f := range folds {
		total += len(f)
		assert.Equal(t, 3, countLabel(y, f, 1))
		assert.Equal(t, 10, countLabel(y, f, 0))
	}
	assert.Equal(t, len(y), total)
}

func TestStratifiedKFold_ReducesFolds(t *testing.T) {
	y := labelsWith(20, 2)
	folds, warnings := StratifiedKFold(y, 3, rand.New(rand.NewSource(5)))
	assert.Len(t, folds, 2)
	require.True(t, core.HasWarning(warnings, core.WarnCVFoldsReduced))
	assert.Equal(t, 2, warnings[0].Details["used"])

	folds, warnings = StratifiedKFold(labelsWith(20, 1), 3, rand.New(rand.NewSource(5)))
	assert.Nil(t, folds)
	assert.True(t, core.HasWarning(warnings, core.WarnCVFoldsReduced))
}
