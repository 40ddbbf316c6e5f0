package ports

import (
	"context"

	"surveyml/domain/core"
	"surveyml/domain/survey"
)

// SurveySource supplies survey rows in the fixed schema the pipeline requires.
type SurveySource interface {
	Name() string
	Load(ctx context.Context) (*survey.Dataset, []core.Warning, error)
}
