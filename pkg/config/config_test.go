package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, "wellness_system_", cfg.Storage.KeyPrefix)
	assert.Equal(t, IDStrategyMonotonic, cfg.Storage.IDStrategy)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, time.Duration(0), cfg.Auth.SimulatedDelay)
	assert.Equal(t, "session:", cfg.Auth.SessionKeyPrefix)
	assert.Equal(t, 25*time.Second, cfg.Events.HeartbeatInterval)
}

func TestOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("STORAGE_DRIVER", "SQLite")
	v.Set("ID_STRATEGY", "UUID")
	v.Set("AUTH_SIMULATED_DELAY", "800ms")
	v.Set("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	v.Set("DASHBOARD_CACHE_TTL", "not-a-duration")

	cfg := fromViper(v)

	assert.Equal(t, StorageSQLite, cfg.Storage.Driver)
	assert.Equal(t, IDStrategyUUID, cfg.Storage.IDStrategy)
	assert.Equal(t, 800*time.Millisecond, cfg.Auth.SimulatedDelay)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.CacheTTL)
}
