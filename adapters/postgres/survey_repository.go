package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"surveyml/domain/core"
	"surveyml/domain/survey"
	"surveyml/internal"
	"surveyml/internal/migration"
)

// surveyRow is one response as stored. Scores are kept as text so Likert answers like
// "4（満足）" survive and go through the same coercion as spreadsheet cells.
type surveyRow struct {
	ID                  string         `db:"id"`
	RecommendScore      sql.NullString `db:"recommend_score"`
	OverallSatisfaction sql.NullString `db:"overall_satisfaction"`
	LongTermIntention   sql.NullString `db:"long_term_intention"`
	SenseOfContribution sql.NullString `db:"sense_of_contribution"`
	Comment             sql.NullString `db:"comment"`
}

func (r surveyRow) record() survey.Record {
	rec := survey.Record{
		ID:       r.ID,
		Scores:   make(map[string]interface{}, 4),
		Comments: map[string]string{survey.FieldComment: r.Comment.String},
	}
	for field, v := range map[string]sql.NullString{
		survey.FieldRecommendScore:      r.RecommendScore,
		survey.FieldOverallSatisfaction: r.OverallSatisfaction,
		survey.FieldLongTermIntention:   r.LongTermIntention,
		survey.FieldSenseOfContribution: r.SenseOfContribution,
	} {
		if v.Valid && v.String != "" {
			rec.Scores[field] = v.String
		}
	}
	return rec
}

func nullable(v interface{}) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: fmt.Sprint(v), Valid: true}
}

// SurveyRepository reads and writes survey responses in a SQL table.
type SurveyRepository struct {
	db     *sqlx.DB
	table  string
	logger *internal.Logger
}

// NewSurveyRepository creates a repository over table. The name must be a plain identifier.
func NewSurveyRepository(db *sqlx.DB, table string) (*SurveyRepository, error) {
	if !migration.ValidTable(table) {
		return nil, fmt.Errorf("%w: survey table %q is not a valid identifier", core.ErrInvalidConfig, table)
	}
	return &SurveyRepository{db: db, table: table, logger: internal.DefaultLogger}, nil
}

// Name identifies the source in run metadata
func (r *SurveyRepository) Name() string {
	return "database:" + r.table
}

// Load returns every response ordered by id.
func (r *SurveyRepository) Load(ctx context.Context) (*survey.Dataset, []core.Warning, error) {
	query := fmt.Sprintf(`SELECT id, recommend_score, overall_satisfaction, long_term_intention,
		sense_of_contribution, comment FROM %s ORDER BY id`, r.table)

	var rows []surveyRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, nil, fmt.Errorf("failed to load survey responses: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, core.NewInsufficientDataError("survey rows", 0, 1)
	}

	ds := &survey.Dataset{
		NumericFields:     survey.DefaultNumericFields(),
		TextFields:        []string{survey.FieldComment},
		SatisfactionField: survey.FieldOverallSatisfaction,
		Source:            r.Name(),
		Records:           make([]survey.Record, len(rows)),
	}
	for i, row := range rows {
		ds.Records[i] = row.record()
	}
	r.logger.Info("[SurveyRepository] loaded %d responses from %s", len(rows), r.table)
	return ds, nil, nil
}

// Save inserts every record of ds in one transaction.
func (r *SurveyRepository) Save(ctx context.Context, ds *survey.Dataset) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`INSERT INTO %s (
		id, recommend_score, overall_satisfaction, long_term_intention, sense_of_contribution, comment
	) VALUES (
		:id, :recommend_score, :overall_satisfaction, :long_term_intention, :sense_of_contribution, :comment
	)`, r.table)

	for _, rec := range ds.Records {
		row := surveyRow{
			ID:                  rec.ID,
			RecommendScore:      nullable(rec.Score(survey.FieldRecommendScore)),
			OverallSatisfaction: nullable(rec.Score(survey.FieldOverallSatisfaction)),
			LongTermIntention:   nullable(rec.Score(survey.FieldLongTermIntention)),
			SenseOfContribution: nullable(rec.Score(survey.FieldSenseOfContribution)),
			Comment:             sql.NullString{String: rec.CombinedComment(ds.TextFields), Valid: true},
		}
		if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
			return fmt.Errorf("failed to insert response %s: %w", rec.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit responses: %w", err)
	}
	r.logger.Info("[SurveyRepository] saved %d responses to %s", ds.Len(), r.table)
	return nil
}

// Count returns the number of stored responses
func (r *SurveyRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.table)); err != nil {
		return 0, fmt.Errorf("failed to count responses: %w", err)
	}
	return n, nil
}
