package core

import "fmt"

// WarningCode classifies a recovery path the pipeline took.
type WarningCode string

const (
	WarnTokenizerFallback     WarningCode = "tokenizer_fallback"
	WarnNumericImputed        WarningCode = "numeric_imputed"
	WarnColumnConstantFill    WarningCode = "column_constant_fill"
	WarnColumnMissing         WarningCode = "column_missing"
	WarnStratificationSkipped WarningCode = "stratification_skipped"
	WarnEmptyVocabulary       WarningCode = "empty_vocabulary"
	WarnCVFoldsReduced        WarningCode = "cv_folds_reduced"
	WarnLabelScoreMissing     WarningCode = "label_score_missing"
	WarnModelFailed           WarningCode = "model_failed"
)

// Warning is a structured degradation notice returned with results.
type Warning struct {
	Code    WarningCode            `json:"code"`
	Stage   string                 `json:"stage"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// NewWarning builds a warning with a formatted message.
func NewWarning(code WarningCode, stage string, format string, args ...interface{}) Warning {
	return Warning{Code: code, Stage: stage, Message: fmt.Sprintf(format, args...)}
}

// With returns a copy of w carrying an extra detail.
func (w Warning) With(key string, value interface{}) Warning {
	details := make(map[string]interface{}, len(w.Details)+1)
	for k, v := range w.Details {
		details[k] = v
	}
	details[key] = value
	w.Details = details
	return w
}

func (w Warning) String() string {
	return fmt.Sprintf("[%s] %s: %s", w.Code, w.Stage, w.Message)
}

// HasWarning reports whether any warning carries the code.
func HasWarning(warnings []Warning, code WarningCode) bool {
	for _, w := range warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

// Pipeline stage names used in warnings and stage errors.
const (
	StageIngest   = "ingest"
	StageTokenize = "tokenize"
	StageLabel    = "label"
	StageExtract  = "extract"
	StageAssemble = "assemble"
	StageSplit    = "split"
	StageTrain    = "train"
	StageRank     = "rank"
	StagePredict  = "predict"
	StageInsights = "insights"
)
