package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcoot/cadastro/internal/model"
	"github.com/mcoot/cadastro/internal/storage"
)

// Storage is a Postgres-backed implementation of the storage interface.
// Accounts live in a relational table; profiles live in a generic JSONB
// documents table keyed by (collection, id).
type Storage struct {
	pool *pgxpool.Pool
}

// New connects a pgx pool and, if configured, creates the schema
func New(ctx context.Context, cfg Config) (*Storage, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}

	timeout := cfg.ConnectTimeout
	if timeout == 0 {
		timeout = DefaultConfig().ConnectTimeout
	}
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := NewWithPool(pool)
	if cfg.MigrateOnStart {
		if err := s.Migrate(connectCtx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return s, nil
}

// NewWithPool creates a Postgres storage with an existing pool
func NewWithPool(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

// Close releases all pool connections
func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Unique constraints on the accounts table, as named by Postgres for schema
const (
	uniqueViolation        = "23505"
	accountsPrimaryKey     = "accounts_pkey"
	accountsEmailUniqueKey = "accounts_email_key"
)

// Account operations

// CreateAccount inserts without upsert; the table's unique constraints decide
// which of several concurrent registrations for an email wins
func (s *Storage) CreateAccount(ctx context.Context, account *model.StoredAccount) error {
	const q = `
INSERT INTO accounts (uid, email, display_name, password_hash, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.pool.Exec(ctx, q,
		string(account.UID),
		account.Email,
		account.DisplayName,
		account.PasswordHash,
		account.CreatedAt,
		account.UpdatedAt,
	)
	return mapUniqueViolation(err)
}

// mapUniqueViolation translates constraint errors into storage sentinels
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case accountsEmailUniqueKey:
		return fmt.Errorf("%w: %w", model.ErrEmailTaken, err)
	case accountsPrimaryKey:
		return fmt.Errorf("%w: %w", model.ErrAccountExists, err)
	default:
		return err
	}
}

func (s *Storage) SaveAccount(ctx context.Context, account *model.StoredAccount) error {
	const q = `
INSERT INTO accounts (uid, email, display_name, password_hash, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (uid) DO UPDATE SET
	email = EXCLUDED.email,
	display_name = EXCLUDED.display_name,
	password_hash = EXCLUDED.password_hash,
	updated_at = EXCLUDED.updated_at`

	_, err := s.pool.Exec(ctx, q,
		string(account.UID),
		account.Email,
		account.DisplayName,
		account.PasswordHash,
		account.CreatedAt,
		account.UpdatedAt,
	)
	return mapUniqueViolation(err)
}

const selectAccount = `SELECT uid, email, display_name, password_hash, created_at, updated_at FROM accounts`

func (s *Storage) GetAccount(ctx context.Context, uid model.AccountUID) (*model.StoredAccount, error) {
	return s.queryAccount(ctx, selectAccount+` WHERE uid = $1`, string(uid))
}

func (s *Storage) GetAccountByEmail(ctx context.Context, email string) (*model.StoredAccount, error) {
	return s.queryAccount(ctx, selectAccount+` WHERE email = $1`, email)
}

func (s *Storage) queryAccount(ctx context.Context, q string, arg string) (*model.StoredAccount, error) {
	var (
		account model.StoredAccount
		uid     string
	)
	err := s.pool.QueryRow(ctx, q, arg).Scan(
		&uid,
		&account.Email,
		&account.DisplayName,
		&account.PasswordHash,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrAccountNotFound
		}
		return nil, err
	}
	account.UID = model.AccountUID(uid)
	return &account, nil
}

func (s *Storage) DeleteAccount(ctx context.Context, uid model.AccountUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM accounts WHERE uid = $1`, string(uid))
	return err
}

// User profile operations

func (s *Storage) SaveUserProfile(ctx context.Context, profile *model.UserProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}

	// Replace the whole document body on conflict
	const q = `
INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)
ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data`

	_, err = s.pool.Exec(ctx, q, model.UsersCollection, string(profile.UID), json.RawMessage(data))
	return err
}

func (s *Storage) GetUserProfile(ctx context.Context, uid model.AccountUID) (*model.UserProfile, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
		model.UsersCollection, string(uid),
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrProfileNotFound
		}
		return nil, err
	}

	var profile model.UserProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, err
	}
	profile.UID = uid
	return &profile, nil
}

func (s *Storage) DeleteUserProfile(ctx context.Context, uid model.AccountUID) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		model.UsersCollection, string(uid),
	)
	return err
}
