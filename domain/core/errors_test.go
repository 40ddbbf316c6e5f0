package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorFamilies(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		precondition bool
		dataQuality  bool
		fatal        bool
	}{
		{"not trained", ErrNotTrained, true, false, false},
		{"extractor mismatch", ErrExtractorMismatch, true, false, false},
		{"single class", ErrSingleClass, true, false, false},
		{"insufficient data", NewInsufficientDataError("labels", 0, 1), false, true, false},
		{"non finite", fmt.Errorf("column x: %w", ErrNonFinite), false, true, false},
		{"no models", NewStageError(StageTrain, ErrNoModelsTrained), false, false, true},
		{"plain", errors.New("boom"), false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPreconditionError(tt.err); got != tt.precondition {
				t.Errorf("IsPreconditionError = %v, want %v", got, tt.precondition)
			}
			if got := IsDataQualityError(tt.err); got != tt.dataQuality {
				t.Errorf("IsDataQualityError = %v, want %v", got, tt.dataQuality)
			}
			if got := IsFatalError(tt.err); got != tt.fatal {
				t.Errorf("IsFatalError = %v, want %v", got, tt.fatal)
			}
		})
	}
}

func TestStageError(t *testing.T) {
	err := NewStageError(StageExtract, ErrNoFeatures)
	if StageOf(err) != StageExtract {
		t.Errorf("Expected stage %q, got %q", StageExtract, StageOf(err))
	}
	if !errors.Is(err, ErrNoFeatures) {
		t.Error("Expected stage error to unwrap to ErrNoFeatures")
	}
	if NewStageError(StageExtract, nil) != nil {
		t.Error("Expected nil error to stay nil")
	}
	if StageOf(errors.New("x")) != "" {
		t.Error("Expected empty stage for plain error")
	}
}

func TestWarningWith_DoesNotMutateOriginal(t *testing.T) {
	base := NewWarning(WarnNumericImputed, StageAssemble, "imputed %d values", 3)
	withCol := base.With("column", "recommend_score")

	if base.Details != nil {
		t.Error("Expected original warning details to stay nil")
	}
	if withCol.Details["column"] != "recommend_score" {
		t.Errorf("Expected column detail, got %v", withCol.Details)
	}
	if !HasWarning([]Warning{withCol}, WarnNumericImputed) {
		t.Error("Expected HasWarning to find the code")
	}
}
