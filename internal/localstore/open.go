package localstore

import (
	"context"
	"fmt"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open builds and initializes the store for driver. dsn is a file path for
// sqlite and a connection URL for postgres.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	var s Store
	switch driver {
	case DriverSQLite:
		s = NewSQLiteStore(dsn)
	case DriverPostgres:
		s = NewPostgresStore(dsn)
	default:
		return nil, fmt.Errorf("unknown local store driver %q", driver)
	}

	if err := s.Init(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}
