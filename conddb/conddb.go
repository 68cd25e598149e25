// Copyright 2024 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package conddb holds types to retrieve run conditions from the ANTARES
// conditions database.
package conddb // import "github.com/go-lpc/antdst/conddb"

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

var (
	host = "localhost"
	usr  = "username"
	pwd  = "s3cr3t"

	drvName = "mysql"
)

// DB exposes convenience methods to easily retrieve conditions data
// from the ANTARES conditions database.
type DB struct {
	db   *sql.DB
	name string // name of the conditions database
}

// Open opens a connection to the conditions database dbname.
func Open(dbname string) (*DB, error) {
	db, err := sql.Open(drvName, dsn(dbname))
	if err != nil {
		return nil, fmt.Errorf("conddb: could not open %q db: %w", dbname, err)
	}

	err = ping(db, dbname)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("conddb: could not ping %q db: %w", dbname, err)
	}

	return &DB{db: db, name: dbname}, nil
}

// SetCredentials sets the host and credentials used by subsequent calls
// to Open.
func SetCredentials(addr, user, pass string) {
	if addr != "" {
		host = addr
	}
	if user != "" {
		usr = user
	}
	if pass != "" {
		pwd = pass
	}
}

func dsn(db string) string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s", usr, pwd, host, db)
}

func ping(db *sql.DB, dbname string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("conddb: could not ping %q db: %w", dbname, err)
	}

	return nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// Livetimes returns the data-taking livetime (in days) per year.
func (db *DB) Livetimes(ctx context.Context) (map[int]float64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	live := make(map[int]float64)
	rows, err := db.db.QueryContext(ctx, "SELECT year, days FROM livetime ORDER BY year")
	if err != nil {
		return nil, fmt.Errorf("conddb: could not query livetimes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			year int
			days float64
		)
		err = rows.Scan(&year, &days)
		if err != nil {
			return nil, fmt.Errorf("conddb: could not get livetime value: %w", err)
		}
		if _, dup := live[year]; dup {
			return nil, fmt.Errorf("conddb: duplicate livetime for year %d", year)
		}
		live[year] = days
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("conddb: could not scan db for livetimes: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("conddb: context error while retrieving livetimes: %w", err)
	}

	return live, nil
}
