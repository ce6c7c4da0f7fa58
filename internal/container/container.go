// Package container wires configuration, storage and services together.
package container

import (
	"context"
	"fmt"

	"creditrisk/adapters/api"
	"creditrisk/adapters/artifact"
	"creditrisk/adapters/memory"
	"creditrisk/adapters/postgres"
	"creditrisk/adapters/tabular"
	"creditrisk/app"
	"creditrisk/domain/table"
	"creditrisk/internal/config"
	"creditrisk/internal/errors"
	"creditrisk/internal/evaluation"
	"creditrisk/internal/logging"
	"creditrisk/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger logging.Logger

	// Infrastructure
	DB *sqlx.DB

	// Storage
	RunRepo       ports.RunRepository
	ArtifactStore ports.ArtifactStore

	// Services
	Pipeline   *app.PipelineService
	Evaluation *app.EvaluationService
	Artifacts  *app.ArtifactService
	Reporter   *evaluation.Reporter
}

// New creates a container with the in-memory run ledger. Call
// InitWithDatabase to switch to Postgres.
func New(cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, errors.ConfigInvalid("config cannot be nil")
	}

	c := &Container{
		Config:  cfg,
		Logger:  logging.OrNop(logger),
		RunRepo: memory.NewRunRepository(),
	}

	store, err := artifact.NewFileStore(cfg.Paths.ArtifactDir, c.Logger)
	if err != nil {
		return nil, err
	}
	c.ArtifactStore = store

	c.initServices()
	return c, nil
}

// Open builds a container from cfg, connecting to Postgres when a
// database URL is configured
func Open(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Container, error) {
	c, err := New(cfg, logger)
	if err != nil {
		return nil, err
	}
	if !cfg.HasDatabase() {
		c.Logger.Debug("DATABASE_URL not set, using in-memory run ledger")
		return c, nil
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.Database.URL)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to database", err)
	}
	if err := c.InitWithDatabase(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// InitWithDatabase switches the run ledger to Postgres
func (c *Container) InitWithDatabase(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}
	if err := db.PingContext(ctx); err != nil {
		return errors.DatabaseError("database connection test failed", err)
	}

	c.DB = db
	c.RunRepo = postgres.NewRunRepository(db)
	c.initServices()

	c.Logger.Info("Container initialized with Postgres run ledger")
	return nil
}

// initServices (re)builds the services over the current storage
func (c *Container) initServices() {
	reader := tabular.DefaultReaderConfig()
	if label := c.Config.Data.LabelColumn; label != "" && label != table.LabelColumn {
		reader.Schema = reader.Schema.Merge(table.Schema{label: table.ColumnCategorical})
	}

	c.Reporter = evaluation.NewReporter(c.Logger)
	c.Pipeline = app.NewPipelineService(c.RunRepo, reader, c.Logger)
	c.Evaluation = app.NewEvaluationService(c.RunRepo, c.Logger)
	c.Artifacts = app.NewArtifactService(c.ArtifactStore, c.RunRepo, c.Logger)
}

// PrepareRequest fills a request with the configured defaults for path
func (c *Container) PrepareRequest(path string) app.PrepareRequest {
	seed := c.Config.Split.Seed
	if path == "" {
		path = c.Config.Data.Path
	}
	return app.PrepareRequest{
		DataPath:       path,
		LabelColumn:    c.Config.Data.LabelColumn,
		ImputeStrategy: c.Config.Cleaning.ImputeStrategy,
		OutlierMethod:  c.Config.Cleaning.OutlierMethod,
		ClipColumns:    append([]string(nil), c.Config.Cleaning.ClipColumns...),
		TestFraction:   c.Config.Split.TestFraction,
		Seed:           &seed,
	}
}

// APIServer builds the HTTP handler over the container's services
func (c *Container) APIServer() *api.Server {
	return api.NewServer(c.Reporter, c.RunRepo, c.Logger)
}

// Shutdown releases the database connection
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
