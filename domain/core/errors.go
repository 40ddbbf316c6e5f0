package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Precondition errors: the caller used the pipeline incorrectly
	ErrPrecondition      = errors.New("precondition failed")
	ErrNotTrained        = fmt.Errorf("%w: no trained artifacts", ErrPrecondition)
	ErrExtractorMismatch = fmt.Errorf("%w: extractor fit does not match trained models", ErrPrecondition)
	ErrSchemaMismatch    = fmt.Errorf("%w: feature schema mismatch", ErrPrecondition)
	ErrSingleClass       = fmt.Errorf("%w: fewer than 2 classes present", ErrPrecondition)
	ErrInvalidConfig     = fmt.Errorf("%w: invalid configuration", ErrPrecondition)

	// Data-quality errors: the input data cannot support the requested step
	ErrDataQuality      = errors.New("data quality")
	ErrInsufficientData = fmt.Errorf("%w: insufficient data for analysis", ErrDataQuality)
	ErrNonNumeric       = fmt.Errorf("%w: non-numeric value", ErrDataQuality)
	ErrNonFinite        = fmt.Errorf("%w: non-finite value in feature matrix", ErrDataQuality)
	ErrRowMismatch      = fmt.Errorf("%w: row count mismatch", ErrDataQuality)

	// Fatal errors: a stage produced zero usable output
	ErrFatal           = errors.New("fatal")
	ErrNoFeatures      = fmt.Errorf("%w: zero usable features", ErrFatal)
	ErrNoModelsTrained = fmt.Errorf("%w: zero models trained", ErrFatal)
)

// StageError records which pipeline stage failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError wraps err with the stage it came from. A nil err stays nil.
func NewStageError(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}

// StageOf returns the stage recorded on err, or "" when there is none.
func StageOf(err error) string {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage
	}
	return ""
}

// Error constructors with context
func NewInsufficientDataError(what string, have, need int) error {
	return fmt.Errorf("%w: %s has %d, need %d", ErrInsufficientData, what, have, need)
}

func NewNonFiniteError(row int, column string) error {
	return fmt.Errorf("%w: row %d column %s", ErrNonFinite, row, column)
}

func NewConfigError(field string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidConfig, field, reason)
}

// Error checking helpers
func IsPreconditionError(err error) bool {
	return errors.Is(err, ErrPrecondition)
}

func IsDataQualityError(err error) bool {
	return errors.Is(err, ErrDataQuality)
}

func IsFatalError(err error) bool {
	return errors.Is(err, ErrFatal)
}
