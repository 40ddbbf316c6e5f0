package model

import "testing"

func TestImpactOf(t *testing.T) {
	tests := []struct {
		name       string
		kind       FeatureKind
		importance float64
		want       Impact
	}{
		{"strong word", FeatureText, 0.06, ImpactWord},
		{"word at threshold", FeatureText, 0.05, ImpactMinor},
		{"word between thresholds", FeatureText, 0.08, ImpactWord},
		{"strong score", FeatureNumeric, 0.25, ImpactScore},
		{"score at threshold", FeatureNumeric, 0.1, ImpactMinor},
		{"score between thresholds", FeatureNumeric, 0.08, ImpactMinor},
		{"zero", FeatureText, 0, ImpactMinor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ImpactOf(tt.kind, tt.importance); got != tt.want {
				t.Errorf("ImpactOf(%s, %v) = %q, want %q", tt.kind, tt.importance, got, tt.want)
			}
		})
	}
}

func TestInsightsConfigValidate(t *testing.T) {
	cfg := DefaultInsightsConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	cfg.TopKeywords = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero top_keywords")
	}
}
