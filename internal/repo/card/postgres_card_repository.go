package card

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkrupp/clickcard/internal/domain"
	"github.com/mkrupp/clickcard/internal/infra/logging"
)

// ErrMissingDSN is returned when the postgres driver is selected without a DSN.
var ErrMissingDSN = errors.New("postgres dsn required")

const pgUniqueViolation = "23505"

// PostgresRepositoryConfig holds configuration for the PostgreSQL card repository.
type PostgresRepositoryConfig struct {
	DSN         string        `env:"DSN" default:""`
	MaxConns    int32         `env:"MAX_CONNS" default:"10"`
	MinConns    int32         `env:"MIN_CONNS" default:"1"`
	PingTimeout time.Duration `env:"PING_TIMEOUT" default:"3s"`
}

// PostgresRepository implements Repository on a pgx connection pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
	log  logging.Logger
}

var _ Repository = (*PostgresRepository)(nil)

// PostgresRepositoryFactory creates a factory function that returns a new PostgresRepository.
func PostgresRepositoryFactory(cfg PostgresRepositoryConfig) RepositoryFactory {
	return func(ctx context.Context) (Repository, error) {
		return NewPostgresRepository(ctx, cfg)
	}
}

// NewPostgresRepository connects the pool, pings the server and creates the schema if needed.
func NewPostgresRepository(ctx context.Context, cfg PostgresRepositoryConfig) (*PostgresRepository, error) {
	if cfg.DSN == "" {
		return nil, ErrMissingDSN
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()

		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := initializePostgresDB(ctx, pool); err != nil {
		pool.Close()

		return nil, fmt.Errorf("initialize db: %w", err)
	}

	log := logging.GetLogger("repo.card.postgres_repository").With(
		logging.Group("db", "host", poolCfg.ConnConfig.Host, "database", poolCfg.ConnConfig.Database),
	)
	log.DebugContext(ctx, "card repository ready")

	return &PostgresRepository{pool: pool, log: log}, nil
}

func initializePostgresDB(ctx context.Context, pool *pgxpool.Pool) error {
	const schema = `
create table if not exists cards (
	id              text        primary key,
	title           text        not null,
	description     text,
	destination_url text        not null,
	image_filename  text,
	card_size       text        not null default 'large',
	created_at      timestamptz not null
);
create index if not exists cards_created_at_idx on cards (created_at desc, id desc);
`
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	return nil
}

// Create implements Repository.Create using PostgreSQL.
func (r *PostgresRepository) Create(ctx context.Context, card domain.Card) error {
	const q = `
insert into cards (id, title, description, destination_url, image_filename, card_size, created_at)
values ($1, $2, $3, $4, $5, $6, $7);
`
	_, err := r.pool.Exec(ctx, q,
		card.ID.String(),
		card.Title,
		card.Description,
		card.DestinationURL,
		card.ImageFilename,
		card.CardSize.String(),
		card.CreatedAt.UTC(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			err = errors.Join(ErrDuplicateCard, err)
		}

		return fmt.Errorf("insert card: %w", err)
	}

	return nil
}

func scanPostgresCard(row pgx.Row) (domain.Card, error) {
	var (
		card      domain.Card
		id        string
		size      string
		createdAt time.Time
	)

	if err := row.Scan(&id, &card.Title, &card.Description, &card.DestinationURL,
		&card.ImageFilename, &size, &createdAt); err != nil {
		return domain.Card{}, err //nolint:wrapcheck
	}

	card.ID = domain.CardID(id)
	card.CardSize = domain.CardSize(size)
	card.CreatedAt = createdAt.UTC()

	return card, nil
}

// FindByID implements Repository.FindByID using PostgreSQL.
func (r *PostgresRepository) FindByID(ctx context.Context, id domain.CardID) (domain.Card, error) {
	const q = `
select id, title, description, destination_url, image_filename, card_size, created_at
from cards
where id = $1;
`
	card, err := scanPostgresCard(r.pool.QueryRow(ctx, q, id.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = errors.Join(domain.ErrCardNotFound, err)
		}

		return domain.Card{}, fmt.Errorf("query card: %w", err)
	}

	return card, nil
}

// FindMany implements Repository.FindMany using PostgreSQL.
func (r *PostgresRepository) FindMany(ctx context.Context, limit int) ([]domain.Card, error) {
	const q = `
select id, title, description, destination_url, image_filename, card_size, created_at
from cards
order by created_at desc, id desc
limit $1;
`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer rows.Close()

	cards := make([]domain.Card, 0, max(limit, 0))

	for rows.Next() {
		card, err := scanPostgresCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}

		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}

	return cards, nil
}

// Delete implements Repository.Delete using PostgreSQL.
func (r *PostgresRepository) Delete(ctx context.Context, id domain.CardID) error {
	tag, err := r.pool.Exec(ctx, "delete from cards where id = $1;", id.String())
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete card: %w", domain.ErrCardNotFound)
	}

	return nil
}

// Close implements Repository.Close by closing the pool.
func (r *PostgresRepository) Close() error {
	r.pool.Close()

	return nil
}
