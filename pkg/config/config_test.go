package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, StoragePostgres, cfg.Storage.Driver)
	assert.True(t, cfg.Quotes.StrictTransitions, "las transiciones estrictas deben venir activas por defecto")
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, 24*60, cfg.JWT.Expiration)
}

func TestFromViper_ValoresComoTexto(t *testing.T) {
	v := viper.New()
	v.Set("HTTP_PORT", "9090")
	v.Set("QUOTES_STRICT_TRANSITIONS", "false")
	v.Set("REDIS_ADDR", "localhost:6379")
	v.Set("STORAGE_DRIVER", "MEMORY")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.False(t, cfg.Quotes.StrictTransitions)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
}

func TestFromViper_DriverInvalido(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", "sqlite")

	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestFromViper_ProduccionSinSecret(t *testing.T) {
	v := viper.New()
	v.Set("APP_ENV", "production")

	_, err := fromViper(v)
	assert.Error(t, err, "producción sin JWT_SECRET debe fallar")
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "cotizaciones", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/cotizaciones?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://otro"
	assert.Equal(t, "postgres://otro", c.ConnectionString())
}
