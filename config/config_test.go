package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	cfg, err := Load(strings.NewReader("naming_host: naming.example\nstorage_root: /data\n"))
	require.NoError(t, err)
	require.Equal(t, "naming.example", cfg.NamingHost)
	require.Equal(t, "/data", cfg.StorageRoot)
	require.Equal(t, Default().LogLevel, cfg.LogLevel)
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := LoadFile("/no/such/config.yaml")
	require.Error(t, err)
}
