package database

import (
	"context"
	"testing"

	"order-hub/internal/core/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type widget struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func TestOpen_SQLite(t *testing.T) {
	db, err := Open(context.Background(), config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          "file::memory:",
		LogLevel:     "silent",
		MaxOpenConns: 10,
	})
	require.NoError(t, err)
	defer db.Close()

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)

	require.NoError(t, db.Migrate(context.Background(), &widget{}))
	require.NoError(t, db.DB.Create(&widget{Name: "a"}).Error)

	var count int64
	require.NoError(t, db.DB.Model(&widget{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	assert.NoError(t, db.Ping(context.Background()))
	assert.False(t, SupportsRowLocks(db.DB))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{Driver: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestSupportsRowLocks_Postgres(t *testing.T) {
	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	assert.True(t, SupportsRowLocks(db))
}

func TestForUpdate(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT \* FROM "widgets" WHERE "widgets"."id" = \$1 ORDER BY "widgets"."id" LIMIT \$2 FOR UPDATE`).
		WithArgs(7, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(7, "w"))

	var w widget
	require.NoError(t, ForUpdate(db).First(&w, 7).Error)
	assert.Equal(t, "w", w.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
