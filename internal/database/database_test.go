package database

import (
	"testing"

	"blogfeed/internal/config"
	"blogfeed/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestConfigurePool(t *testing.T) {
	db := openMemory(t)
	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestMigrate_CreatesTables(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, Migrate(db))

	for _, table := range []string{"users", "groups", "posts", "comments", "follows"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex(&models.Follow{}, "idx_follow_user_author"))
	assert.False(t, db.Migrator().HasColumn(&models.Post{}, "comments_count"))
}

func TestRegisterMetricsCallbacks(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, RegisterMetricsCallbacks(db))
	require.NoError(t, Migrate(db))

	u := models.User{Username: "alice", Password: "x"}
	require.NoError(t, db.Create(&u).Error)
	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestReadDB(t *testing.T) {
	assert.Nil(t, GetReadDB())
	db := openMemory(t)
	SetReadDB(db)
	assert.Same(t, db, GetReadDB())
	SetReadDB(nil)
	assert.Nil(t, GetReadDB())
}

func TestPersistentModels(t *testing.T) {
	got := PersistentModels()
	require.Len(t, got, 5)
	_, ok := got[0].(*models.User)
	assert.True(t, ok, "users must migrate first")
}
