package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"smartspend/internal/config"
	"smartspend/internal/models"
)

func TestNewManager_SQLite(t *testing.T) {
	cfg := &config.Config{
		Env:      "test",
		DBDriver: DriverSQLite,
		DBPath:   filepath.Join(t.TempDir(), "nested", "smartspend.db"),
	}

	m, err := NewManager(cfg)
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.RunMigrations())
	require.NoError(t, m.Ping(context.Background()))

	for _, model := range models.All() {
		assert.True(t, m.DB().Migrator().HasTable(model), "missing table for %T", model)
	}
	assert.True(t, m.DB().Migrator().HasIndex(&models.Expense{}, "idx_expenses_user_date"))
}

func TestNewManager_UnsupportedDriver(t *testing.T) {
	_, err := NewManager(&config.Config{DBDriver: "mysql"})
	assert.Error(t, err)
}

func TestSQLiteDSN(t *testing.T) {
	dsn, err := sqliteDSN(&config.Config{DBPath: "file::memory:?cache=shared"})
	require.NoError(t, err)
	assert.Equal(t, "file::memory:?cache=shared&_foreign_keys=on", dsn)

	dsn, err = sqliteDSN(&config.Config{DBPath: ":memory:"})
	require.NoError(t, err)
	assert.Equal(t, ":memory:?_foreign_keys=on", dsn)
}

func TestIsUnavailable(t *testing.T) {
	assert.False(t, IsUnavailable(nil))
	assert.False(t, IsUnavailable(errors.New("syntax error")))
	assert.True(t, IsUnavailable(fmt.Errorf("query: %w", driver.ErrBadConn)))
	assert.True(t, IsUnavailable(&net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("syntax error")))
	assert.True(t, IsUniqueViolation(fmt.Errorf("create: %w", gorm.ErrDuplicatedKey)))
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique})))
	assert.False(t, IsUniqueViolation(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}))
}

func TestIsUniqueViolation_SQLiteDriverError(t *testing.T) {
	cfg := &config.Config{Env: "test", DBDriver: DriverSQLite, DBPath: filepath.Join(t.TempDir(), "unique.db")}
	m, err := NewManager(cfg)
	require.NoError(t, err)
	defer m.Close()
	require.NoError(t, m.RunMigrations())

	first := &models.User{Email: "same@example.com", PasswordHash: "x", Username: "one"}
	require.NoError(t, m.DB().Create(first).Error)

	err = m.DB().Create(&models.User{Email: "same@example.com", PasswordHash: "y", Username: "two"}).Error
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err), "got %v", err)
}
