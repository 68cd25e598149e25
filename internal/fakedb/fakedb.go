// Copyright 2024 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fakedb provides an in-memory database/sql driver, registered
// as "fakedb", serving canned rows.
package fakedb // import "github.com/go-lpc/antdst/internal/fakedb"

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"io"
	"sync"
)

var query struct {
	mu   sync.Mutex
	rows Rows
	last string
}

// Run installs rows as the result of every query issued by f.
// Queries are serialized across concurrent calls to Run.
func Run(ctx context.Context, rows Rows, f func(ctx context.Context) error) error {
	query.mu.Lock()
	defer query.mu.Unlock()
	query.rows = rows
	query.last = ""

	return f(ctx)
}

// LastQuery returns the last statement prepared within the current Run.
func LastQuery() string {
	return query.last
}

func init() {
	sql.Register("fakedb", &Driver{})
}

type Driver struct{}

// Open returns a new connection. The name is ignored.
func (drv *Driver) Open(name string) (driver.Conn, error) {
	return &Conn{}, nil
}

type Conn struct{}

func (c *Conn) Prepare(q string) (driver.Stmt, error) {
	query.last = q
	return &Stmt{}, nil
}

func (c *Conn) Close() error { return nil }

func (c *Conn) Begin() (driver.Tx, error) {
	panic("fakedb: transactions not supported")
}

type Stmt struct{}

func (stmt *Stmt) Close() error { return nil }

// NumInput returns -1: placeholders are not checked.
func (stmt *Stmt) NumInput() int { return -1 }

func (stmt *Stmt) Exec(args []driver.Value) (driver.Result, error) {
	panic("fakedb: exec not supported")
}

func (stmt *Stmt) Query(args []driver.Value) (driver.Rows, error) {
	if query.rows.Err != nil {
		return nil, query.rows.Err
	}
	return &query.rows, nil
}

// Rows is a canned result set.
// When Err is set, queries fail with Err.
type Rows struct {
	Names  []string
	Values [][]driver.Value
	Err    error
}

func (rows *Rows) Columns() []string { return rows.Names }
func (rows *Rows) Close() error      { return nil }

func (rows *Rows) Next(dest []driver.Value) error {
	if len(rows.Values) == 0 {
		return io.EOF
	}
	copy(dest, rows.Values[0])
	rows.Values = rows.Values[1:]
	return nil
}

var (
	_ driver.Driver = (*Driver)(nil)
	_ driver.Conn   = (*Conn)(nil)
	_ driver.Stmt   = (*Stmt)(nil)
	_ driver.Rows   = (*Rows)(nil)
)
