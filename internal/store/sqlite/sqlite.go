package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eastway/batchlaunch/internal/account"
	"github.com/eastway/batchlaunch/internal/store"
)

// DB implements store.Store for SQLite (modernc.org/sqlite driver, CGO-free).
// Path is a filesystem path to the database file. Use ":memory:" for in-memory.

type DB struct {
	db *sql.DB
}

// New opens a SQLite database at path.
func New(path string) (*DB, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return nil, errors.New("empty sqlite path")
	}
	d, err := sql.Open("sqlite", p)
	if err != nil {
		return nil, err
	}
	// An in-memory database exists per connection; pin the pool to one so
	// the schema and the data share it.
	if p == ":memory:" {
		d.SetMaxOpenConns(1)
	}
	// busy timeout helps with short concurrent locks
	_, _ = d.Exec("PRAGMA busy_timeout=3000;")
	return &DB{db: d}, nil
}

func (s *DB) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS accounts(
			id TEXT PRIMARY KEY,
			login TEXT NOT NULL,
			secret TEXT NOT NULL,
			server TEXT NOT NULL,
			character_name TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			owner TEXT NOT NULL DEFAULT '',
			source_path TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMP NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_login ON accounts(login);`,
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (s *DB) Close() error { return s.db.Close() }

func (s *DB) Save(ctx context.Context, a account.Account) error {
	a.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts(id, login, secret, server, character_name, description, owner, source_path, updated_at)
		VALUES(?,?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			login=excluded.login,
			secret=excluded.secret,
			server=excluded.server,
			character_name=excluded.character_name,
			description=excluded.description,
			owner=excluded.owner,
			source_path=excluded.source_path,
			updated_at=excluded.updated_at;`,
		string(a.ID), a.Login, a.Secret, string(a.Server), a.Character, a.Description, a.Owner, a.SourcePath, a.UpdatedAt)
	return err
}

func (s *DB) Get(ctx context.Context, id account.ID) (account.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, login, secret, server, character_name, description, owner, source_path, updated_at
		FROM accounts WHERE id = ?;`, string(id))
	return scanAccount(row)
}

func (s *DB) Delete(ctx context.Context, id account.ID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?;`, string(id))
	return err
}

func (s *DB) List(ctx context.Context) ([]account.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, login, secret, server, character_name, description, owner, source_path, updated_at
		FROM accounts ORDER BY login;`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []account.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(r rowScanner) (account.Account, error) {
	var a account.Account
	var id, server string
	err := r.Scan(&id, &a.Login, &a.Secret, &server, &a.Character, &a.Description, &a.Owner, &a.SourcePath, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return account.Account{}, store.ErrNotFound
	}
	if err != nil {
		return account.Account{}, err
	}
	a.ID = account.ID(id)
	a.Server = account.NormalizeServer(server)
	return a, nil
}
