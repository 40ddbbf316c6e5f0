package app

import (
	"math"
	"math/rand"
	"sort"

	"surveyml/domain/core"
)

// Split holds row indices of a train/test partition, each in ascending order.
type Split struct {
	Train      []int `json:"train"`
	Test       []int `json:"test"`
	Stratified bool  `json:"stratified"`
}

// groupByClass returns the row indices of each label, classes in ascending order.
func groupByClass(y []int) ([]int, map[int][]int) {
	groups := make(map[int][]int)
	for i, label := range y {
		groups[label] = append(groups[label], i)
	}
	classes := make([]int, 0, len(groups))
	for c := range groups {
		classes = append(classes, c)
	}
	sort.Ints(classes)
	return classes, groups
}

// StratifiedSplit partitions rows into train and test sets. Each class contributes
// round(testFraction*count) rows to the test set, clamped so it keeps at least one row on
// each side. When some class has fewer than two rows the split falls back to a plain
// shuffle and a stratification_skipped warning is returned.
func StratifiedSplit(y []int, testFraction float64, r *rand.Rand) (Split, []core.Warning, error) {
	n := len(y)
	if n < 2 {
		return Split{}, nil, core.NewInsufficientDataError("rows to split", n, 2)
	}
	classes, groups := groupByClass(y)
	if len(classes) < 2 {
		return Split{}, nil, core.ErrSingleClass
	}

	minCount := n
	for _, c := range classes {
		if len(groups[c]) < minCount {
			minCount = len(groups[c])
		}
	}

	if minCount < 2 {
		perm := r.Perm(n)
		nTest := clampInt(int(math.Ceil(testFraction*float64(n))), 1, n-1)
		s := Split{Test: append([]int(nil), perm[:nTest]...), Train: append([]int(nil), perm[nTest:]...)}
		sort.Ints(s.Train)
		sort.Ints(s.Test)
		w := core.NewWarning(core.WarnStratificationSkipped, core.StageSplit,
			"smallest class has %d member, split is not stratified", minCount).With("min_class_count", minCount)
		return s, []core.Warning{w}, nil
	}

	s := Split{Stratified: true}
	for _, c := range classes {
		members := append([]int(nil), groups[c]...)
		r.Shuffle(len(members), func(i, j int) { members[i], members[j] = members[j], members[i] })
		nTest := clampInt(int(math.Round(testFraction*float64(len(members)))), 1, len(members)-1)
		s.Test = append(s.Test, members[:nTest]...)
		s.Train = append(s.Train, members[nTest:]...)
	}
	sort.Ints(s.Train)
	sort.Ints(s.Test)
	return s, nil, nil
}

// StratifiedKFold assigns rows to k folds class by class, round-robin after a shuffle, so
// every fold sees each class. k is lowered to the smallest class size when needed, with a
// cv_folds_reduced warning; fewer than two usable folds returns no folds.
func StratifiedKFold(y []int, k int, r *rand.Rand) ([][]int, []core.Warning) {
	classes, groups := groupByClass(y)
	if len(classes) == 0 {
		return nil, nil
	}
	minCount := len(y)
	for _, c := range classes {
		if len(groups[c]) < minCount {
			minCount = len(groups[c])
		}
	}

	var warnings []core.Warning
	if len(classes) < 2 {
		minCount = 0
	}
	if minCount < k {
		warnings = append(warnings, core.NewWarning(core.WarnCVFoldsReduced, core.StageTrain,
			"cross-validation folds reduced from %d to %d", k, minCount).
			With("requested", k).With("used", minCount))
		k = minCount
	}
	if k < 2 {
		return nil, warnings
	}

	folds := make([][]int, k)
	for _, c := range classes {
		members := append([]int(nil), groups[c]...)
		r.Shuffle(len(members), func(i, j int) { members[i], members[j] = members[j], members[i] })
		for i, row := range members {
			folds[i%k] = append(folds[i%k], row)
		}
	}
	for _, f := range folds {
		sort.Ints(f)
	}
	return folds, warnings
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
