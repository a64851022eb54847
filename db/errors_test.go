package db

import (
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestIsDupKeyErr(t *testing.T) {
	mysqlDup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a@b.c' for key 'person_email_idx'"}
	pgDup := &pgconn.PgError{Code: "23505", ConstraintName: "person_email_key"}

	assert.True(t, IsDupKeyErr(mysqlDup))
	assert.True(t, IsDupKeyErr(pgDup))
	assert.True(t, IsDupKeyErr(errors.Wrap(pgDup, "inserting person")))
	assert.True(t, IsDupKeyErr(fmt.Errorf("tx: %w", mysqlDup)))

	assert.True(t, IsDupKeyErr(&DupKeyError{Key: "person_username_idx"}))

	assert.False(t, IsDupKeyErr(&mysql.MySQLError{Number: 1452}))
	assert.False(t, IsDupKeyErr(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsDupKeyErr(ErrNotFound))
	assert.False(t, IsDupKeyErr(nil))
}

func TestGetDupKey(t *testing.T) {
	assert.Equal(t, "person_email_idx", GetDupKey(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a@b.c' for key 'person_email_idx'"}))
	assert.Equal(t, "person_email_key", GetDupKey(&pgconn.PgError{Code: "23505", ConstraintName: "person_email_key"}))
	assert.Equal(t, "report_once_idx", GetDupKey(errors.Wrap(&DupKeyError{Key: "report_once_idx"}, "inserting report")))
	assert.Equal(t, "", GetDupKey(ErrNotFound))
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 0, Page{Page: 1, Limit: 20}.Offset())
	assert.Equal(t, 40, Page{Page: 3, Limit: 20}.Offset())
	assert.Equal(t, 0, Page{Page: 0, Limit: 20}.Offset())
}
