package container

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveyml/adapters/excel"
	"surveyml/adapters/postgres"
	"surveyml/internal/config"
	"surveyml/internal/errors"
	"surveyml/internal/testkit"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Tokenizer = "regex"
	cfg.Source.Kind = config.SourceDemo
	cfg.Source.DemoRows = 50
	return cfg
}

func TestContainer_DemoSource(t *testing.T) {
	c, err := New(testConfig())
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, "regex", c.Tokenizer.Name())
	assert.Empty(t, c.TokenizerWarnings)

	src, err := c.Source("")
	require.NoError(t, err)
	assert.Equal(t, "demo", src.Name())

	ds, _, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50, ds.Len())
}

func TestContainer_ExcelSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "survey.xlsx")
	gen := testkit.NewSurveyDataGenerator(testkit.DefaultSurveyConfig())
	require.NoError(t, excel.WriteDataset(path, "Responses", gen.Generate()))

	cfg := testConfig()
	cfg.Source.ExcelFile = path
	c, err := New(cfg)
	require.NoError(t, err)

	src, err := c.Source(config.SourceExcel)
	require.NoError(t, err)
	ds, warnings, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, 150, ds.Len())
}

func TestContainer_DatabaseSource(t *testing.T) {
	cfg := testConfig()
	cfg.Source.DatabaseDriver = "sqlite3"
	cfg.Source.DatabaseURL = filepath.Join(t.TempDir(), "survey.db")
	c, err := New(cfg)
	require.NoError(t, err)
	defer c.Close()

	db, err := c.Database(context.Background())
	require.NoError(t, err)
	repo, err := postgres.NewSurveyRepository(db, cfg.Source.SurveyTable)
	require.NoError(t, err)
	gen := testkit.NewSurveyDataGenerator(testkit.DefaultSurveyConfig())
	require.NoError(t, repo.Save(context.Background(), gen.Generate()))

	src, err := c.Source(config.SourceDatabase)
	require.NoError(t, err)
	ds, _, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 150, ds.Len())
}

func TestContainer_DatabaseOpenedOnceUnderConcurrency(t *testing.T) {
	cfg := testConfig()
	cfg.Source.DatabaseDriver = "sqlite3"
	cfg.Source.DatabaseURL = filepath.Join(t.TempDir(), "survey.db")
	c, err := New(cfg)
	require.NoError(t, err)
	defer c.Close()

	const workers = 8
	handles := make([]*sqlx.DB, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := c.Source(config.SourceDatabase); err != nil {
				errs[i] = err
				return
			}
			handles[i], errs[i] = c.Database(context.Background())
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, handles[0], handles[i])
	}

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}

func TestContainer_SourceErrors(t *testing.T) {
	c, err := New(testConfig())
	require.NoError(t, err)

	_, err = c.Source("ftp")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = c.Source(config.SourceExcel)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))

	_, err = c.Source(config.SourceDatabase)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))

	_, err = New(nil)
	assert.Error(t, err)
}
