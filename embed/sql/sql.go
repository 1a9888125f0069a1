// Package embedsql carries the SQLite schema shipped with the binary.
package embedsql

import _ "embed"

//go:embed schema.sql
var Schema string
