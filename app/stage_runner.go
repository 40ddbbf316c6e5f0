package app

import (
	"context"
	"time"

	"surveyml/domain/core"
	"surveyml/internal"
)

// StageTiming records how long one pipeline stage ran.
type StageTiming struct {
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration"`
}

// StageRunner executes named pipeline stages, checking for cancellation between them
type StageRunner struct {
	logger  *internal.Logger
	timings []StageTiming
}

// NewStageRunner creates a new stage runner
func NewStageRunner(logger *internal.Logger) *StageRunner {
	return &StageRunner{logger: logger}
}

// Run executes fn unless ctx is already done. Errors come back tagged with the stage name.
func (r *StageRunner) Run(ctx context.Context, stage string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return core.NewStageError(stage, err)
	}
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	r.timings = append(r.timings, StageTiming{Stage: stage, Duration: elapsed})

	if err != nil {
		r.logger.Error("[Pipeline] stage %s failed after %s: %v", stage, elapsed, err)
		return core.NewStageError(stage, err)
	}
	r.logger.Debug("[Pipeline] stage %s done in %s", stage, elapsed)
	return nil
}

// Timings returns the stages run so far in order
func (r *StageRunner) Timings() []StageTiming {
	return append([]StageTiming(nil), r.timings...)
}
