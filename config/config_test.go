package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 1000.0, cfg.Bank.OpeningBalance)
	assert.Equal(t, "RUB", cfg.Bank.Currency)
	assert.Equal(t, "@every 30s", cfg.Exchange.RefreshSpec)
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(os.TempDir(), "no_such_fpibank_config.json"))
	require.NoError(t, err)
	assert.Equal(t, Default().Bank, cfg.Bank)
}

func TestLoadOverrides(t *testing.T) {
	dir, err := ioutil.TempDir("", "fpibank_config")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "config.json")
	require.NoError(t, ioutil.WriteFile(path, []byte(`{"Bank":{"Currency":"USD","OpeningBalance":50}}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "USD", cfg.Bank.Currency)
	assert.Equal(t, 50.0, cfg.Bank.OpeningBalance)
}
