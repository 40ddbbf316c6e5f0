package container

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"

	"surveyml/adapters/excel"
	"surveyml/adapters/postgres"
	"surveyml/adapters/tokenizer"
	"surveyml/app"
	"surveyml/domain/core"
	"surveyml/internal"
	"surveyml/internal/config"
	"surveyml/internal/errors"
	"surveyml/internal/migration"
	"surveyml/internal/testkit"
	"surveyml/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	Tokenizer         ports.Tokenizer
	TokenizerWarnings []core.Warning
	Pipeline          *app.PipelineService

	// db is opened on first use of the database source
	dbMu sync.Mutex
	db   *sqlx.DB
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	internal.DefaultLogger.SetLevel(internal.ParseLogLevel(cfg.LogLevel))

	tok, warnings := tokenizer.Select(tokenizer.Mode(strings.ToLower(cfg.Tokenizer)))
	return &Container{
		Config:            cfg,
		Tokenizer:         tok,
		TokenizerWarnings: warnings,
		Pipeline:          app.NewPipelineService(cfg.Pipeline, tok, warnings),
	}, nil
}

// Source resolves a survey source by kind; "" uses the configured kind.
func (c *Container) Source(kind string) (ports.SurveySource, error) {
	if kind == "" {
		kind = c.Config.Source.Kind
	}
	s := c.Config.Source

	switch strings.ToLower(kind) {
	case config.SourceExcel:
		if s.ExcelFile == "" {
			return nil, errors.ConfigInvalid("EXCEL_FILE is required for the excel source")
		}
		ec := excel.DefaultExcelConfig()
		ec.FilePath = s.ExcelFile
		ec.Sheet = s.ExcelSheet
		ec.HeaderRow = s.ExcelHeaderRow
		return excel.NewSource(ec), nil

	case config.SourceDatabase:
		db, err := c.Database(context.Background())
		if err != nil {
			return nil, err
		}
		repo, err := postgres.NewSurveyRepository(db, s.SurveyTable)
		if err != nil {
			return nil, errors.WithCode(errors.CodeConfigInvalid, err)
		}
		return repo, nil

	case config.SourceDemo:
		gc := testkit.DefaultSurveyConfig()
		gc.Respondents = s.DemoRows
		gc.Seed = c.Config.Pipeline.Training.Seed
		return testkit.NewSurveyDataGenerator(gc), nil
	}
	return nil, errors.InvalidInput(fmt.Sprintf("unknown survey source %q", kind))
}

// Database opens the configured database once and creates the response table.
func (c *Container) Database(ctx context.Context) (*sqlx.DB, error) {
	c.dbMu.Lock()
	defer c.dbMu.Unlock()
	if c.db != nil {
		return c.db, nil
	}
	s := c.Config.Source
	if s.DatabaseURL == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required for the database source")
	}
	db, err := sqlx.Connect(s.DatabaseDriver, s.DatabaseURL)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to database", err)
	}
	if err := migration.NewRunner(s.SurveyTable).Run(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	c.db = db
	return db, nil
}

// Close releases the database connection, if one was opened
func (c *Container) Close() error {
	c.dbMu.Lock()
	defer c.dbMu.Unlock()
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}
