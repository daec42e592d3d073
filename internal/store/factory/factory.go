package factory

import (
	"fmt"
	"strings"

	"github.com/eastway/batchlaunch/internal/store"
	pg "github.com/eastway/batchlaunch/internal/store/postgres"
	sq "github.com/eastway/batchlaunch/internal/store/sqlite"
)

// New selects a store implementation from configuration.
// Supported types: sqlite (default, uses Path) and postgres (uses DSN).
func New(c store.Config) (store.Store, error) {
	switch strings.ToLower(strings.TrimSpace(c.Type)) {
	case "", store.TypeSQLite:
		path := c.Path
		if path == "" {
			path = "accounts.db"
		}
		return sq.New(path)
	case store.TypePostgres:
		if strings.TrimSpace(c.DSN) == "" {
			return nil, fmt.Errorf("store type %q requires a dsn", c.Type)
		}
		return pg.New(c.DSN)
	default:
		return nil, fmt.Errorf("unknown store type %q", c.Type)
	}
}
