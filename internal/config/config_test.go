package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func newCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	BindCommonFlags(cmd)
	return cmd
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newCommand())
	require.NoError(t, err)

	require.Equal(t, DefaultSpecPath, cfg.Spec)
	require.Equal(t, DefaultTreePath, cfg.Tree)
	require.Equal(t, DefaultFetchURL, cfg.FetchURL)
	require.Equal(t, DefaultBaseURL, cfg.DefaultBaseURL)
	require.Equal(t, "", cfg.BaseURL)
	require.Equal(t, 0, cfg.Timeout)
	require.Equal(t, "", cfg.Auth.AccessToken)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("OPCLI_BASE_URL", "https://sandbox.example.dev/v5")
	t.Setenv("OPCLI_ACCESS_TOKEN", "env-token")
	t.Setenv("OPCLI_AD_ACCOUNT_ID", "549755885175")

	cfg, err := Load(newCommand())
	require.NoError(t, err)

	require.Equal(t, "https://sandbox.example.dev/v5", cfg.BaseURL)
	require.Equal(t, "env-token", cfg.Auth.AccessToken)
	require.Equal(t, "549755885175", cfg.Auth.AdAccountID)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "opcli.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
base-url: https://file.example.dev/v5
timeout: 30
auth:
  access-token: file-token
  client-id: file-client
`), 0644))

	cmd := newCommand()
	require.NoError(t, cmd.PersistentFlags().Set("config", path))

	cfg, err := Load(cmd)
	require.NoError(t, err)

	require.Equal(t, "https://file.example.dev/v5", cfg.BaseURL)
	require.Equal(t, 30, cfg.Timeout)
	require.Equal(t, "file-token", cfg.Auth.AccessToken)
	require.Equal(t, "file-client", cfg.Auth.ClientID)

	// Untouched keys keep their defaults.
	require.Equal(t, DefaultTreePath, cfg.Tree)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("OPCLI_ACCESS_TOKEN", "env-token")

	cmd := newCommand()
	require.NoError(t, cmd.PersistentFlags().Set("access-token", "flag-token"))
	require.NoError(t, cmd.PersistentFlags().Set("tree", "other/tree.json"))

	cfg, err := Load(cmd)
	require.NoError(t, err)

	require.Equal(t, "flag-token", cfg.Auth.AccessToken)
	require.Equal(t, "other/tree.json", cfg.Tree)
}

func TestEffectiveBaseURL(t *testing.T) {
	cfg := &Config{DefaultBaseURL: DefaultBaseURL}

	require.Equal(t, DefaultBaseURL, cfg.EffectiveBaseURL(""))
	require.Equal(t, "https://tree.example.dev", cfg.EffectiveBaseURL("https://tree.example.dev"))

	cfg.BaseURL = "https://flag.example.dev"
	require.Equal(t, "https://flag.example.dev", cfg.EffectiveBaseURL("https://tree.example.dev"))
}
