package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{Host: "localhost", Port: 5432},
		Redis:    RedisConfig{Host: "localhost", Port: 6379},
		Gateway: GatewayConfig{
			Enabled:           true,
			Sandbox:           true,
			SandboxPublicKey:  "sbpb_abc",
			SandboxPrivateKey: "sbpr_def",
			TxnMode:           TxnModePurchase,
			IntegrationMode:   IntegrationModal,
			LockTTL:           30 * time.Second,
		},
		Store: StoreConfig{PriceDecimals: 2},
	}
}

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_InvalidTxnMode(t *testing.T) {
	cfg := validConfig()
	cfg.Gateway.TxnMode = "capture-later"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "txn_mode")
}

func TestValidate_EnabledWithoutKeys(t *testing.T) {
	cfg := validConfig()
	cfg.Gateway.SandboxPrivateKey = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API keys")
}

func TestValidate_PriceDecimalsRange(t *testing.T) {
	cfg := validConfig()
	cfg.Store.PriceDecimals = 5
	assert.Error(t, cfg.Validate())

	cfg.Store.PriceDecimals = 3
	assert.NoError(t, cfg.Validate())
}

func TestActiveKeys(t *testing.T) {
	g := GatewayConfig{
		Sandbox:           true,
		PublicKey:         "lvpb_live",
		PrivateKey:        "lvpr_live",
		SandboxPublicKey:  "sbpb_test",
		SandboxPrivateKey: "sbpr_test",
	}

	pub, priv := g.ActiveKeys()
	assert.Equal(t, "sbpb_test", pub)
	assert.Equal(t, "sbpr_test", priv)

	g.Sandbox = false
	pub, priv = g.ActiveKeys()
	assert.Equal(t, "lvpb_live", pub)
	assert.Equal(t, "lvpr_live", priv)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SIMPLIFY_GATEWAY_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, TxnModePurchase, cfg.Gateway.TxnMode)
	assert.Equal(t, IntegrationModal, cfg.Gateway.IntegrationMode)
	assert.True(t, cfg.Gateway.Sandbox)
	assert.Equal(t, 2, cfg.Store.PriceDecimals)
}
