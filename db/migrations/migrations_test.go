package migrations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatements(t *testing.T) {
	for _, dialect := range []string{"postgresql", "mysql"} {
		t.Run(dialect, func(t *testing.T) {
			stmts, err := Statements(dialect)
			require.NoError(t, err)
			require.NotEmpty(t, stmts)
			tables := 0
			for _, stmt := range stmts {
				assert.False(t, strings.HasSuffix(stmt, ";"))
				if strings.HasPrefix(stmt, "CREATE TABLE IF NOT EXISTS") {
					tables++
				}
			}
			assert.Equal(t, 15, tables)
		})
	}
}

func TestStatementsUnknownDialect(t *testing.T) {
	_, err := Statements("sqlite")
	assert.Error(t, err)
}
