package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestGormConfigDSN(t *testing.T) {
	cfg := GormConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "juris", SSLMode: "disable"}
	assert.Equal(t, "host=db user=u password=p dbname=juris port=5432 sslmode=disable", cfg.DSN())
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		env  string
		want logger.LogLevel
	}{
		{"", logger.Warn},
		{"silent", logger.Silent},
		{"ERROR", logger.Error},
		{"info", logger.Info},
		{"verbose", logger.Warn},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv("GORM_LOG_LEVEL", tt.env)
			assert.Equal(t, tt.want, logLevel())
		})
	}
}

func TestNewGormDBFromDSN_Empty(t *testing.T) {
	_, err := NewGormDBFromDSN("")
	assert.Error(t, err)
}

func TestNewSQLiteDB_InMemory(t *testing.T) {
	db, err := NewSQLiteDB("file:dbtest?mode=memory&cache=shared")
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
	require.NoError(t, db.Exec("CREATE TABLE t (id INTEGER)").Error)
}
