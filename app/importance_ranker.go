package app

import (
	"fmt"
	"sort"

	"surveyml/adapters/textfeatures"
	"surveyml/domain/core"
	"surveyml/domain/model"
)

// ModelImportance is the ranked importance list of one model.
type ModelImportance struct {
	Model    model.ModelName           `json:"model"`
	Features []model.FeatureImportance `json:"features"`
}

// ImportanceRanker orders impurity importances and drops stop-listed vocabulary terms.
type ImportanceRanker struct {
	stopList model.StopList
}

// NewImportanceRanker creates a ranker filtering text features through stopList
func NewImportanceRanker(stopList model.StopList) *ImportanceRanker {
	return &ImportanceRanker{stopList: stopList}
}

// Rank returns at most topN features of m by descending importance, ties in column order.
// Numeric features are never filtered. topN <= 0 returns every surviving feature.
func (r *ImportanceRanker) Rank(m *TrainedModel, featureNames []string, topN int) ([]model.FeatureImportance, error) {
	if m == nil || m.Classifier == nil || !m.Classifier.IsFitted() {
		return nil, core.ErrNotTrained
	}
	importances := m.Classifier.FeatureImportances()
	if len(importances) != len(featureNames) {
		return nil, fmt.Errorf("%w: %d importances for %d features", core.ErrSchemaMismatch, len(importances), len(featureNames))
	}

	ranked := make([]model.FeatureImportance, 0, len(featureNames))
	for j, name := range featureNames {
		entry := model.FeatureImportance{Feature: name, Term: name, Kind: model.KindOf(name), Importance: importances[j]}
		if term, ok := textfeatures.TermFromColumn(name); ok {
			if r.stopList.IsNoise(term) {
				continue
			}
			entry.Term = term
		}
		ranked = append(ranked, entry)
	}

	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].Importance > ranked[b].Importance })
	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
		ranked[i].Impact = model.ImpactOf(ranked[i].Kind, ranked[i].Importance)
	}
	return ranked, nil
}

// RankAll ranks every trained model in family order.
func (r *ImportanceRanker) RankAll(a *Artifacts, topN int) ([]ModelImportance, error) {
	if a == nil || len(a.Models) == 0 {
		return nil, core.ErrNotTrained
	}
	out := make([]ModelImportance, 0, len(a.Models))
	for _, name := range model.FamilyOrder {
		m, ok := a.Model(name)
		if !ok {
			continue
		}
		features, err := r.Rank(m, a.FeatureNames, topN)
		if err != nil {
			return nil, fmt.Errorf("ranking %s: %w", name, err)
		}
		out = append(out, ModelImportance{Model: name, Features: features})
	}
	return out, nil
}
