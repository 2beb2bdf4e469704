package container

import (
	"context"

	"medibot/adapters/backend"
	"medibot/adapters/excel"
	"medibot/adapters/postgres"
	"medibot/app"
	"medibot/internal"
	"medibot/internal/catalog"
	"medibot/internal/classifier"
	"medibot/internal/config"
	"medibot/internal/errors"
	"medibot/internal/evaluation"
	"medibot/internal/features"
	"medibot/internal/migration"
	"medibot/internal/tabular"
	"medibot/ports"
	"medibot/ui"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB *sqlx.DB

	// Dataset and the model fitted on all of it
	Table   *tabular.Table
	Matrix  *features.Matrix
	Model   *classifier.Model
	Catalog *catalog.Catalog

	// Optional collaborators
	Runs    ports.RunRepository
	Backend ports.DiagnosisBackend

	// Services
	Evaluation *app.EvaluationService
	Diagnosis  *app.DiagnosisService

	logger *internal.Logger
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, errors.ConfigInvalid("config cannot be nil")
	}
	return &Container{Config: cfg, logger: internal.DefaultLogger.With("Container")}, nil
}

// InitWithDatabase enables the run archive on db
func (c *Container) InitWithDatabase(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return errors.ConfigInvalid("database connection cannot be nil")
	}
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		return err
	}
	c.DB = db
	c.Runs = postgres.NewRunRepository(db)
	c.logger.Info("run archive enabled")
	return nil
}

// Init loads the dataset, fits the production model and builds the services.
// InitWithDatabase must run first for runs to be archived.
func (c *Container) Init() error {
	if c.Config.Dataset.Path == "" {
		return errors.ConfigInvalid("DATASET_PATH is required")
	}

	reader := excel.NewDataReader(c.Config.Dataset.Path, c.Config.Dataset.Delimiter)
	table, err := reader.ReadTable()
	if err != nil {
		return errors.Wrapf(err, "failed to load dataset %s", reader.Path())
	}
	return c.InitWithTable(table)
}

// InitWithTable is Init for an already loaded dataset
func (c *Container) InitWithTable(table *tabular.Table) error {
	m, err := features.Build(table)
	if err != nil {
		return errors.Wrap(err, "failed to encode dataset")
	}
	model, err := classifier.Fit(m, nil)
	if err != nil {
		return errors.Wrap(err, "failed to fit model")
	}

	c.Table = table
	c.Matrix = m
	c.Model = model
	c.Catalog = catalog.FromMatrix(m)

	if c.Config.Backend.URL != "" {
		c.Backend = backend.NewHTTPBackend(c.Config.Backend.URL, c.Config.Backend.Timeout)
		c.logger.Info("remote diagnosis backend at %s", c.Config.Backend.URL)
	}

	c.Evaluation = app.NewEvaluationService(c.Runs)
	c.Evaluation.SetSweepLimits(c.Config.Eval.SweepMaxSeeds, c.Config.Eval.SweepMaxWorkers)
	c.Diagnosis = app.NewDiagnosisService(c.Model, c.Catalog, c.Backend, c.Config.Eval.TopK)

	c.logger.Info("model fitted on %d rows: %d classes, %d symptoms", m.Len(), len(m.Classes), len(m.Vocabulary))
	if missing := model.Profiles.Missing(); len(missing) > 0 {
		c.logger.Warn("%d classes have no profile: %v", len(missing), missing)
	}
	return nil
}

// NewUI builds the HTTP server over the initialized services
func (c *Container) NewUI() *ui.App {
	return ui.NewApp(ui.Config{
		Port:    c.Config.Server.Port,
		Dataset: c.Config.Dataset.Path,
		Options: evaluation.Options{
			TestFraction: c.Config.Eval.TestFraction,
			Seed:         c.Config.Eval.Seed,
			Delimiter:    c.Config.Dataset.Delimiter,
		},
		SweepSeeds:   c.Config.Eval.SweepSeeds,
		SweepWorkers: c.Config.Eval.SweepWorkers,
	}, c.Table, c.Evaluation, c.Diagnosis)
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
