package card

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mkrupp/clickcard/internal/domain"
	"github.com/mkrupp/clickcard/internal/infra/logging"
)

// ErrDuplicateCard is returned when a card id is inserted twice.
var ErrDuplicateCard = errors.New("card already exists")

// SQLiteRepositoryConfig holds configuration for the SQLite card repository.
type SQLiteRepositoryConfig struct {
	// DatabasePath is the filesystem path to the SQLite database file
	DatabasePath string        `env:"DATABASE_PATH" default:"var/storage/cards.db"`
	BusyTimeout  time.Duration `env:"BUSY_TIMEOUT" default:"5s"`
}

// SQLiteRepository implements Repository using SQLite as the storage backend.
type SQLiteRepository struct {
	db        *sql.DB
	log       logging.Logger
	writeLock *sync.Mutex // go-sqlite does not support concurrent writes
}

var _ Repository = (*SQLiteRepository)(nil)

// SQLiteRepositoryFactory creates a factory function that returns a new SQLiteRepository.
func SQLiteRepositoryFactory(cfg SQLiteRepositoryConfig) RepositoryFactory {
	return func(ctx context.Context) (Repository, error) {
		return NewSQLiteRepository(ctx, cfg)
	}
}

// NewSQLiteRepository opens the database and creates the schema if needed.
func NewSQLiteRepository(ctx context.Context, cfg SQLiteRepositoryConfig) (*SQLiteRepository, error) {
	log := logging.GetLogger("repo.card.sqlite_repository").With(
		logging.Group("db", "path", cfg.DatabasePath),
	)

	if dir := filepath.Dir(cfg.DatabasePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", sqliteDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("ping db: %w", err)
	}

	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initializeSQLiteDB(ctx, db); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("initialize db: %w", err)
	}

	log.DebugContext(ctx, "card repository ready")

	return &SQLiteRepository{
		db:        db,
		log:       log,
		writeLock: new(sync.Mutex),
	}, nil
}

// sqliteDSN applies the pragmas to every pooled connection, not only the first one.
func sqliteDSN(cfg SQLiteRepositoryConfig) string {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", cfg.BusyTimeout.Milliseconds()))
	q.Add("_pragma", "journal_mode(WAL)")

	return cfg.DatabasePath + "?" + q.Encode()
}

func initializeSQLiteDB(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS cards (
			id              TEXT    PRIMARY KEY,
			title           TEXT    NOT NULL,
			description     TEXT,
			destination_url TEXT    NOT NULL,
			image_filename  TEXT,
			card_size       TEXT    NOT NULL DEFAULT 'large',
			created_at      INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	if _, err := db.ExecContext(ctx,
		"CREATE INDEX IF NOT EXISTS cards_created_at_idx ON cards (created_at DESC, id DESC)",
	); err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	return nil
}

// Create implements Repository.Create using SQLite.
func (r *SQLiteRepository) Create(ctx context.Context, card domain.Card) error {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO cards (id, title, description, destination_url, image_filename, card_size, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		card.ID.String(),
		card.Title,
		card.Description,
		card.DestinationURL,
		card.ImageFilename,
		card.CardSize.String(),
		card.CreatedAt.UnixNano(),
	)
	if err != nil {
		var liteErr *sqlite.Error
		if errors.As(err, &liteErr) {
			switch liteErr.Code() {
			case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
				fallthrough
			case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
				err = errors.Join(ErrDuplicateCard, err)
			default:
				break
			}
		}

		return fmt.Errorf("insert card: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteCard(row rowScanner) (domain.Card, error) {
	var (
		card        domain.Card
		id          string
		description sql.NullString
		filename    sql.NullString
		size        string
		createdAt   int64
	)

	if err := row.Scan(&id, &card.Title, &description, &card.DestinationURL, &filename, &size, &createdAt); err != nil {
		return domain.Card{}, err //nolint:wrapcheck
	}

	card.ID = domain.CardID(id)
	card.CardSize = domain.CardSize(size)
	card.CreatedAt = time.Unix(0, createdAt).UTC()

	if description.Valid {
		card.Description = &description.String
	}

	if filename.Valid {
		card.ImageFilename = &filename.String
	}

	return card, nil
}

// FindByID implements Repository.FindByID using SQLite.
func (r *SQLiteRepository) FindByID(ctx context.Context, id domain.CardID) (domain.Card, error) {
	card, err := scanSQLiteCard(r.db.QueryRowContext(ctx,
		`SELECT id, title, description, destination_url, image_filename, card_size, created_at
		 FROM cards WHERE id = ?`,
		id.String(),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = errors.Join(domain.ErrCardNotFound, err)
		}

		return domain.Card{}, fmt.Errorf("query card: %w", err)
	}

	return card, nil
}

// FindMany implements Repository.FindMany using SQLite.
func (r *SQLiteRepository) FindMany(ctx context.Context, limit int) ([]domain.Card, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, description, destination_url, image_filename, card_size, created_at
		 FROM cards ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer rows.Close()

	cards := make([]domain.Card, 0, max(limit, 0))

	for rows.Next() {
		card, err := scanSQLiteCard(rows)
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

// Delete implements Repository.Delete using SQLite.
func (r *SQLiteRepository) Delete(ctx context.Context, id domain.CardID) error {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	res, err := r.db.ExecContext(ctx, "DELETE FROM cards WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("delete card: %w", domain.ErrCardNotFound)
	}

	return nil
}

// Close implements Repository.Close by closing the database connection.
func (r *SQLiteRepository) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}
