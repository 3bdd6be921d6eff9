package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRuntimeParams(t *testing.T) {
	tests := []struct {
		name, dsn, tz, enc, want string
	}{
		{"url untouched", "postgres://u:p@db:5432/app?sslmode=disable", "", "", "postgres://u:p@db:5432/app?sslmode=disable"},
		{"url", "postgres://u:p@db:5432/app?sslmode=disable", "Europe/Moscow", "UTF8",
			"postgres://u:p@db:5432/app?client_encoding=UTF8&sslmode=disable&timezone=Europe%2FMoscow"},
		{"keyword/value", "host=db dbname=app", "Europe/Moscow", "", "host=db dbname=app timezone='Europe/Moscow'"},
		{"quoting", "host=db", `it's\`, "", `host=db timezone='it\'s\\'`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := withRuntimeParams(tt.dsn, tt.tz, tt.enc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := withRuntimeParams("postgres://u:p@db:%zz/app", "UTC", "")
	assert.Error(t, err)
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	_, err := Connect(Config{Driver: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestConnectSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "admin.db")
	db, err := Connect(Config{Driver: DriverSQLite, DSN: path, Timeout: time.Second})
	require.NoError(t, err)
	defer db.Close()

	var one int
	require.NoError(t, db.QueryRow("SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
}

func TestIsPostgres(t *testing.T) {
	assert.True(t, IsPostgres(DriverPostgres))
	assert.True(t, IsPostgres(DriverPgx))
	assert.False(t, IsPostgres(DriverSQLite))
}
