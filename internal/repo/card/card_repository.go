package card

import (
	"context"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mkrupp/clickcard/internal/domain"
)

// ErrUnknownDriver is returned when the configured database driver is not supported.
var ErrUnknownDriver = errors.New("unknown card repository driver")

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Repository defines the interface for card record persistence.
type Repository interface {
	// Create inserts a new card record.
	Create(ctx context.Context, card domain.Card) error

	// FindByID returns the card with the given id or domain.ErrCardNotFound.
	FindByID(ctx context.Context, id domain.CardID) (domain.Card, error)

	// FindMany returns up to limit cards, newest first. Ties on creation time
	// are broken by id, descending.
	FindMany(ctx context.Context, limit int) ([]domain.Card, error)

	// Delete removes the card record. Missing cards yield domain.ErrCardNotFound.
	Delete(ctx context.Context, id domain.CardID) error

	// Close releases any resources held by the repository.
	Close() error
}

// RepositoryFactory is a function that creates a new Repository instance.
type RepositoryFactory func(ctx context.Context) (Repository, error)

// RepositoryConfig selects and configures the card repository backend.
type RepositoryConfig struct {
	Driver   string                   `env:"DRIVER" default:"sqlite"`
	SQLite   SQLiteRepositoryConfig   `envPrefix:"SQLITE_"`
	Postgres PostgresRepositoryConfig `envPrefix:"POSTGRES_"`
}

// Validate implements config.Validator.
func (cfg RepositoryConfig) Validate() error {
	//nolint:wrapcheck
	return validation.ValidateStruct(&cfg,
		validation.Field(&cfg.Driver, validation.Required, validation.In(DriverSQLite, DriverPostgres)),
		validation.Field(&cfg.Postgres, validation.Skip.When(cfg.Driver != DriverPostgres)),
	)
}

// Validate implements config.Validator.
func (cfg PostgresRepositoryConfig) Validate() error {
	//nolint:wrapcheck
	return validation.ValidateStruct(&cfg,
		validation.Field(&cfg.DSN, validation.Required),
		validation.Field(&cfg.MaxConns, validation.Min(int32(1))),
	)
}

// NewRepositoryFactory returns the RepositoryFactory for the configured driver.
func NewRepositoryFactory(cfg RepositoryConfig) (RepositoryFactory, error) {
	switch cfg.Driver {
	case DriverSQLite:
		return SQLiteRepositoryFactory(cfg.SQLite), nil
	case DriverPostgres:
		return PostgresRepositoryFactory(cfg.Postgres), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
