package config

import (
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, "paybit", cfg.Mongo.Database)
	assert.Equal(t, "http://localhost:18443", cfg.Node.URL)
	assert.Equal(t, "regtest", cfg.Node.Network)
	assert.Equal(t, 15*time.Second, cfg.Node.Timeout)
	assert.Equal(t, time.Minute, cfg.Node.ReconcileIv)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PB_NODE_URL", "http://bitcoind:18443")
	t.Setenv("PB_NODE_USER", "rpcuser")
	t.Setenv("PB_NODE_PASS", "rpcpass")
	t.Setenv("PB_SERVER_PORT", "9090")
	t.Setenv("PB_JWT_SECRET", "supersecret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://bitcoind:18443", cfg.Node.URL)
	assert.Equal(t, "rpcuser", cfg.Node.User)
	assert.Equal(t, "rpcpass", cfg.Node.Pass)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "supersecret", cfg.JWT.Secret)
}

func TestRedisConfig_Addr(t *testing.T) {
	r := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", r.Addr())
}

func TestNodeConfig_Params(t *testing.T) {
	cases := []struct {
		network string
		want    *chaincfg.Params
	}{
		{"regtest", &chaincfg.RegressionNetParams},
		{"", &chaincfg.RegressionNetParams},
		{"testnet", &chaincfg.TestNet3Params},
		{"mainnet", &chaincfg.MainNetParams},
	}
	for _, tc := range cases {
		params, err := NodeConfig{Network: tc.network}.Params()
		require.NoError(t, err)
		assert.Equal(t, tc.want, params)
	}

	_, err := NodeConfig{Network: "signet"}.Params()
	assert.Error(t, err)
}
