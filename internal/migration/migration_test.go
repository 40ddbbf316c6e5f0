package migration

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveyml/internal/errors"
)

func TestValidTable(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"survey_responses", true},
		{"_staging2", true},
		{"", false},
		{"2024_responses", false},
		{"responses; DROP TABLE x", false},
		{"public.responses", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, ValidTable(tt.name), tt.name)
	}
}

func TestRunner_Idempotent(t *testing.T) {
	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	ctx := context.Background()
	runner := NewRunner("responses")
	require.NoError(t, runner.Run(ctx, db))
	require.NoError(t, runner.Run(ctx, db))

	_, err = db.ExecContext(ctx, `INSERT INTO responses (id, overall_satisfaction, comment) VALUES ('r1', '3', 'ok')`)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.GetContext(ctx, &n, `SELECT COUNT(*) FROM responses`))
	assert.Equal(t, 1, n)
	assert.Equal(t, "1.0.0", runner.Version())
}

func TestRunner_RejectsTableName(t *testing.T) {
	err := NewRunner("bad name").Run(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
