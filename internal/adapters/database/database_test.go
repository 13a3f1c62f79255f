package database

import (
	"testing"

	"polls-service/internal/config"
	"polls-service/internal/ports/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialector(t *testing.T) {
	for _, driver := range []string{"postgres", "mysql", "sqlite", ""} {
		d, err := Dialector(config.DatabaseConfig{Driver: driver, Path: ":memory:"})
		require.NoError(t, err, driver)
		assert.NotNil(t, d)
	}

	_, err := Dialector(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestOpenAndMigrateSQLite(t *testing.T) {
	db, err := Open(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:", MaxRetries: 1})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	for _, m := range []interface{}{&models.User{}, &models.Question{}, &models.Choice{}, &models.Vote{}} {
		assert.True(t, db.Migrator().HasTable(m), "%T", m)
	}
	assert.True(t, db.Migrator().HasIndex(&models.Vote{}, "idx_votes_user_question"))
}

func TestNewRedisClientDisabled(t *testing.T) {
	rdb, err := NewRedisClient(config.RedisConfig{})
	assert.NoError(t, err)
	assert.Nil(t, rdb)
}

func TestNewRedisClientBadURL(t *testing.T) {
	_, err := NewRedisClient(config.RedisConfig{URI: "not-a-url"})
	assert.Error(t, err)
}
