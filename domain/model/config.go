package model

import (
	"surveyml/domain/core"
)

// FeatureConfig controls TF-IDF vocabulary construction.
type FeatureConfig struct {
	MaxFeatures int     `json:"max_features" yaml:"max_features"`
	NGramMin    int     `json:"ngram_min" yaml:"ngram_min"`
	NGramMax    int     `json:"ngram_max" yaml:"ngram_max"`
	MinDF       int     `json:"min_df" yaml:"min_df"`
	MaxDF       float64 `json:"max_df" yaml:"max_df"`
}

// DefaultFeatureConfig mirrors the dashboard's vectorizer settings.
func DefaultFeatureConfig() FeatureConfig {
	return FeatureConfig{
		MaxFeatures: 50,
		NGramMin:    1,
		NGramMax:    1,
		MinDF:       1,
		MaxDF:       0.95,
	}
}

// Validate checks the feature configuration.
func (c FeatureConfig) Validate() error {
	if c.MaxFeatures < 1 {
		return core.NewConfigError("max_features", "must be at least 1")
	}
	if c.NGramMin < 1 || c.NGramMax < c.NGramMin {
		return core.NewConfigError("ngram_range", "must satisfy 1 <= min <= max")
	}
	if c.MinDF < 1 {
		return core.NewConfigError("min_df", "must be at least 1")
	}
	if c.MaxDF <= 0 || c.MaxDF > 1 {
		return core.NewConfigError("max_df", "must be in (0, 1]")
	}
	return nil
}

// ModelConfig bounds the tree families.
type ModelConfig struct {
	TreeMaxDepth      int     `json:"tree_max_depth" yaml:"tree_max_depth"`
	ForestTrees       int     `json:"forest_trees" yaml:"forest_trees"`
	ForestMaxDepth    int     `json:"forest_max_depth" yaml:"forest_max_depth"`
	BoostingStages    int     `json:"boosting_stages" yaml:"boosting_stages"`
	BoostingMaxDepth  int     `json:"boosting_max_depth" yaml:"boosting_max_depth"`
	BoostingLearnRate float64 `json:"boosting_learning_rate" yaml:"boosting_learning_rate"`
	MinSamplesSplit   int     `json:"min_samples_split" yaml:"min_samples_split"`
	MinSamplesLeaf    int     `json:"min_samples_leaf" yaml:"min_samples_leaf"`
}

// DefaultModelConfig returns the depth and ensemble bounds used for survey-sized data.
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		TreeMaxDepth:      10,
		ForestTrees:       50,
		ForestMaxDepth:    10,
		BoostingStages:    50,
		BoostingMaxDepth:  6,
		BoostingLearnRate: 0.1,
		MinSamplesSplit:   2,
		MinSamplesLeaf:    1,
	}
}

// Validate checks the model configuration.
func (c ModelConfig) Validate() error {
	if c.TreeMaxDepth < 1 || c.ForestMaxDepth < 1 || c.BoostingMaxDepth < 1 {
		return core.NewConfigError("max_depth", "must be at least 1")
	}
	if c.ForestTrees < 1 {
		return core.NewConfigError("forest_trees", "must be at least 1")
	}
	if c.BoostingStages < 1 {
		return core.NewConfigError("boosting_stages", "must be at least 1")
	}
	if c.BoostingLearnRate <= 0 || c.BoostingLearnRate > 1 {
		return core.NewConfigError("boosting_learning_rate", "must be in (0, 1]")
	}
	if c.MinSamplesSplit < 2 {
		return core.NewConfigError("min_samples_split", "must be at least 2")
	}
	if c.MinSamplesLeaf < 1 {
		return core.NewConfigError("min_samples_leaf", "must be at least 1")
	}
	return nil
}

// TrainingConfig controls labeling, splitting and evaluation.
type TrainingConfig struct {
	LowFraction  float64 `json:"low_fraction" yaml:"low_fraction"`
	TestFraction float64 `json:"test_fraction" yaml:"test_fraction"`
	CVFolds      int     `json:"cv_folds" yaml:"cv_folds"`
	Seed         int64   `json:"seed" yaml:"seed"`
}

// DefaultTrainingConfig returns the 20% label, 70/30 split, 3-fold setup.
func DefaultTrainingConfig() TrainingConfig {
	return TrainingConfig{
		LowFraction:  0.2,
		TestFraction: 0.3,
		CVFolds:      3,
		Seed:         42,
	}
}

// Validate checks the training configuration.
func (c TrainingConfig) Validate() error {
	if c.LowFraction <= 0 || c.LowFraction >= 1 {
		return core.NewConfigError("low_fraction", "must be in (0, 1)")
	}
	if c.TestFraction <= 0 || c.TestFraction >= 1 {
		return core.NewConfigError("test_fraction", "must be in (0, 1)")
	}
	if c.CVFolds < 2 {
		return core.NewConfigError("cv_folds", "must be at least 2")
	}
	return nil
}

// InsightsConfig controls the comment insights reported next to the models. Sentiment
// counts how many listed positive words a comment contains minus the negative ones.
type InsightsConfig struct {
	TopKeywords   int      `json:"top_keywords" yaml:"top_keywords"`
	PositiveWords []string `json:"positive_words" yaml:"positive_words"`
	NegativeWords []string `json:"negative_words" yaml:"negative_words"`
}

// DefaultInsightsConfig returns the dashboard's keyword count and sentiment word lists.
func DefaultInsightsConfig() InsightsConfig {
	return InsightsConfig{
		TopKeywords:   10,
		PositiveWords: []string{"満足", "良い", "素晴らしい", "充実", "成長", "やりがい", "達成"},
		NegativeWords: []string{"不満", "問題", "課題", "厳しい", "大変", "困難", "ストレス"},
	}
}

// Validate checks the insights configuration.
func (c InsightsConfig) Validate() error {
	if c.TopKeywords < 1 {
		return core.NewConfigError("top_keywords", "must be at least 1")
	}
	return nil
}

// PipelineConfig bundles everything a training invocation accepts.
type PipelineConfig struct {
	Features FeatureConfig  `json:"features" yaml:"features"`
	Models   ModelConfig    `json:"models" yaml:"models"`
	Training TrainingConfig `json:"training" yaml:"training"`
	Insights InsightsConfig `json:"insights" yaml:"insights"`
	StopList StopList       `json:"stop_list" yaml:"stop_list"`
	TopN     int            `json:"top_n" yaml:"top_n"`
}

// DefaultPipelineConfig returns the full default configuration.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Features: DefaultFeatureConfig(),
		Models:   DefaultModelConfig(),
		Training: DefaultTrainingConfig(),
		Insights: DefaultInsightsConfig(),
		StopList: DefaultStopList(),
		TopN:     15,
	}
}

// Validate checks every section.
func (c PipelineConfig) Validate() error {
	if err := c.Features.Validate(); err != nil {
		return err
	}
	if err := c.Models.Validate(); err != nil {
		return err
	}
	if err := c.Training.Validate(); err != nil {
		return err
	}
	if err := c.Insights.Validate(); err != nil {
		return err
	}
	if c.TopN < 1 {
		return core.NewConfigError("top_n", "must be at least 1")
	}
	return nil
}
