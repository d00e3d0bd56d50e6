package storage

import (
	_ "github.com/lib/pq"
)

const (
	DriverPostgres = "postgres"
	// DriverSQLite is registered by modernc.org/sqlite, which only the tests import.
	DriverSQLite = "sqlite"
)

type dialect struct {
	identity string
}

var dialects = map[string]dialect{
	DriverPostgres: {identity: "SERIAL PRIMARY KEY"},
	DriverSQLite:   {identity: "INTEGER PRIMARY KEY AUTOINCREMENT"},
}
