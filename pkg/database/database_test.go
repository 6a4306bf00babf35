package database

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-insight-go/internal/config"
)

func TestInitRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, InitRedis(config.RedisConfig{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = RDB.Close() })
	assert.NotNil(t, RDB)
}

func TestInitRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	err := InitRedis(config.RedisConfig{Addr: addr})
	assert.Error(t, err)
}

func TestInitMySQL_RequiresDSN(t *testing.T) {
	assert.Error(t, InitMySQL(config.MySQLConfig{}))
}
