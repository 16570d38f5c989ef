package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_ValoresPorDefecto(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "disfruleg", cfg.DB.DBName)
	assert.Equal(t, 5, cfg.JWT.ElevationMinutes)
	assert.Equal(t, 300*time.Second, cfg.Redis.PriceCacheTTL)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestFromViper_EnteroInvalidoUsaDefecto(t *testing.T) {
	v := viper.New()
	v.Set("DB_PORT", "no-es-numero")
	v.Set("HTTP_PORT", "9090")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, 9090, cfg.HTTP.Port)
}

func TestFromViper_ProduccionSinSecretFalla(t *testing.T) {
	v := viper.New()
	v.Set("APP_ENV", "production")

	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "ventas", Password: "p@ss:word", DBName: "disfruleg", SSLMode: "disable"}
	assert.Equal(t, "postgres://ventas:p%40ss%3Aword@db:5432/disfruleg?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://otro"
	assert.Equal(t, "postgres://otro", c.ConnectionString())
}
