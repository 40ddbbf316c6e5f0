package model

import (
	"testing"
)

func TestStopList_IsNoise(t *testing.T) {
	stop := DefaultStopList()

	tests := []struct {
		term  string
		noise bool
	}{
		{"の", true},
		{"について", true},
		{"ます", true},
		{"えー", true},  // short hiragana run
		{"123", true}, // numeral
		{"３０", true},  // full-width numeral
		{"十", true},   // kanji numeral
		{"給与", false},
		{"残業", false},
		{"ストレス", false},
		{"やりがい", false}, // hiragana, but longer than a particle
		{"の 給与", false},
		{"の は", true},
		{"", true},
	}

	for _, tt := range tests {
		if got := stop.IsNoise(tt.term); got != tt.noise {
			t.Errorf("IsNoise(%q) = %v, want %v", tt.term, got, tt.noise)
		}
	}
}

func TestStopList_CustomTerms(t *testing.T) {
	stop := StopList{Terms: []string{"会社"}}
	if !stop.IsNoise("会社") {
		t.Error("Expected custom term to be noise")
	}
	if stop.IsNoise("の") {
		t.Error("Expected particle rule to be off when MaxParticleRunes is 0")
	}
	if stop.IsNoise("42") {
		t.Error("Expected numerals to be kept when DropNumerals is false")
	}

	stop.Terms = append(stop.Terms, "制度")
	if !stop.IsNoise("制度") {
		t.Error("Expected appended term to be noise")
	}
}

func TestPipelineConfig_Validate(t *testing.T) {
	cfg := DefaultPipelineConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected default config to validate: %v", err)
	}

	bad := []func(c *PipelineConfig){
		func(c *PipelineConfig) { c.Features.MaxFeatures = 0 },
		func(c *PipelineConfig) { c.Features.NGramMax = 0 },
		func(c *PipelineConfig) { c.Features.MaxDF = 1.5 },
		func(c *PipelineConfig) { c.Models.TreeMaxDepth = 0 },
		func(c *PipelineConfig) { c.Models.BoostingLearnRate = 0 },
		func(c *PipelineConfig) { c.Training.LowFraction = 1 },
		func(c *PipelineConfig) { c.Training.CVFolds = 1 },
		func(c *PipelineConfig) { c.TopN = 0 },
	}
	for i, mutate := range bad {
		c := DefaultPipelineConfig()
		mutate(&c)
		if err := c.Validate(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}
