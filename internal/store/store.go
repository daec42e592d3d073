// Package store persists user-defined accounts. The core never writes to
// it on its own; scan candidates are only saved after caller confirmation.
package store

import (
	"context"
	"errors"

	"github.com/eastway/batchlaunch/internal/account"
)

// ErrNotFound is returned by Get when no account has the given id.
var ErrNotFound = errors.New("account not found")

// Store type names accepted in configuration.
const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// Config selects and parameterizes a store backend.
type Config struct {
	Type string `toml:"type" mapstructure:"type"` // sqlite (default) or postgres
	Path string `toml:"path" mapstructure:"path"` // sqlite database file
	DSN  string `toml:"dsn" mapstructure:"dsn"`   // postgres connection string
}

// Store is the persistence interface keyed by account identifier.
type Store interface {
	EnsureSchema(ctx context.Context) error
	Save(ctx context.Context, a account.Account) error
	Get(ctx context.Context, id account.ID) (account.Account, error)
	Delete(ctx context.Context, id account.ID) error
	List(ctx context.Context) ([]account.Account, error)
	Close() error
}
