package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/eastway/batchlaunch/internal/account"
	"github.com/eastway/batchlaunch/internal/store"
)

// DB implements store.Store for PostgreSQL via the pgx stdlib driver.

type DB struct {
	db *sql.DB
}

// New opens a PostgreSQL connection with the given DSN.
func New(dsn string) (*DB, error) {
	d, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &DB{db: d}, nil
}

func (p *DB) EnsureSchema(ctx context.Context) error {
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
			updated_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_login ON accounts(login);`,
	}
	for _, q := range stmts {
		if _, err := p.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (p *DB) Close() error { return p.db.Close() }

func (p *DB) Save(ctx context.Context, a account.Account) error {
	a.UpdatedAt = time.Now().UTC()
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO accounts(id, login, secret, server, character_name, description, owner, source_path, updated_at)
		VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT(id) DO UPDATE SET
			login=EXCLUDED.login,
			secret=EXCLUDED.secret,
			server=EXCLUDED.server,
			character_name=EXCLUDED.character_name,
			description=EXCLUDED.description,
			owner=EXCLUDED.owner,
			source_path=EXCLUDED.source_path,
			updated_at=EXCLUDED.updated_at;`,
		string(a.ID), a.Login, a.Secret, string(a.Server), a.Character, a.Description, a.Owner, a.SourcePath, a.UpdatedAt)
	return err
}

func (p *DB) Get(ctx context.Context, id account.ID) (account.Account, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT id, login, secret, server, character_name, description, owner, source_path, updated_at
		FROM accounts WHERE id = $1;`, string(id))
	var a account.Account
	var rid, server string
	err := row.Scan(&rid, &a.Login, &a.Secret, &server, &a.Character, &a.Description, &a.Owner, &a.SourcePath, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return account.Account{}, store.ErrNotFound
	}
	if err != nil {
		return account.Account{}, err
	}
	a.ID = account.ID(rid)
	a.Server = account.NormalizeServer(server)
	return a, nil
}

func (p *DB) Delete(ctx context.Context, id account.ID) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1;`, string(id))
	return err
}

func (p *DB) List(ctx context.Context) ([]account.Account, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, login, secret, server, character_name, description, owner, source_path, updated_at
		FROM accounts ORDER BY login;`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []account.Account
	for rows.Next() {
		var a account.Account
		var rid, server string
		if err := rows.Scan(&rid, &a.Login, &a.Secret, &server, &a.Character, &a.Description, &a.Owner, &a.SourcePath, &a.UpdatedAt); err != nil {
			return nil, err
		}
		a.ID = account.ID(rid)
		a.Server = account.NormalizeServer(server)
		out = append(out, a)
	}
	return out, rows.Err()
}
