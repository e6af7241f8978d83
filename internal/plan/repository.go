package plan

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mlefevre/fitplan/internal/sqlite"
)

// ErrNotFound is returned when a requested entity is not found.
var ErrNotFound = errors.New("not found")

const dateFormat = "2006-01-02"

// repository contains the repositories for the plan domain aggregates.
type repository struct {
	profiles profileRepository
	catalog  catalogRepository
	programs programRepository
}

// profileRepository reads the generation inputs for a profile.
type profileRepository interface {
	Get(ctx context.Context, id int) (Profile, error)
	CurrentObjective(ctx context.Context, profileID int) (Objective, error)
}

// catalogRepository answers the assemblers' random compatibility lookups and
// serves catalog entries to the API.
type catalogRepository interface {
	exerciseCatalog
	dishCatalog
	GetExercise(ctx context.Context, id int) (Exercise, error)
}

// programRepository persists and loads generated programs.
type programRepository interface {
	Create(ctx context.Context, program Program) (Program, error)
	Get(ctx context.Context, publicID string) (Program, error)
}

// baseRepository carries the shared dependencies of the SQLite repositories.
type baseRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newBaseRepository(db *sqlite.Database, logger *slog.Logger) baseRepository {
	return baseRepository{db: db, logger: logger}
}

// repositoryFactory creates repository instances.
type repositoryFactory struct {
	db     *sqlite.Database
	logger *slog.Logger
}

// newRepositoryFactory creates a new repository factory.
func newRepositoryFactory(db *sqlite.Database, logger *slog.Logger) *repositoryFactory {
	return &repositoryFactory{
		db:     db,
		logger: logger,
	}
}

// newRepository creates a new repository aggregate.
func (f *repositoryFactory) newRepository() *repository {
	return &repository{
		profiles: newSQLiteProfileRepository(f.db, f.logger),
		catalog:  newSQLiteCatalogRepository(f.db, f.logger),
		programs: newSQLiteProgramRepository(f.db, f.logger),
	}
}
