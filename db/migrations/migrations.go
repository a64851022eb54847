// Package migrations embeds the schema for each supported database.
package migrations

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed postgres.sql mysql.sql
var files embed.FS

// Statements returns the schema for dialect ("postgresql" or "mysql") split
// into single statements, since neither driver is opened in multi-statement
// mode.
func Statements(dialect string) ([]string, error) {
	var name string
	switch dialect {
	case "postgresql":
		name = "postgres.sql"
	case "mysql":
		name = "mysql.sql"
	default:
		return nil, fmt.Errorf("no schema for dialect %q", dialect)
	}
	raw, err := files.ReadFile(name)
	if err != nil {
		return nil, err
	}
	var stmts []string
	for _, stmt := range strings.Split(string(raw), ";\n") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			stmts = append(stmts, strings.TrimSuffix(stmt, ";"))
		}
	}
	return stmts, nil
}
