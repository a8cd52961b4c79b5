package config

import (
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
)

// Built-in defaults. The base URL is domain-specific and only a
// default: config file, flags and environment all override it.
const (
	DefaultBaseURL  = "https://api.pinterest.com/v5"
	DefaultFetchURL = "https://raw.githubusercontent.com/pinterest/api-description/main/v5/openapi.json"
	DefaultSpecPath = "schemas/openapi.json"
	DefaultTreePath = "schemas/command_tree.json"
)

type Config struct {
	Spec           string `koanf:"spec"`
	Tree           string `koanf:"tree"`
	FetchURL       string `koanf:"fetch-url"`
	DefaultBaseURL string `koanf:"default-base-url"`
	BaseURL        string `koanf:"base-url"`
	Timeout        int    `koanf:"timeout"`
	Auth           Auth   `koanf:"auth"`
}

type Auth struct {
	AccessToken     string `koanf:"access-token"`
	ClientID        string `koanf:"client-id"`
	ClientSecret    string `koanf:"client-secret"`
	ConversionToken string `koanf:"conversion-token"`
	AdAccountID     string `koanf:"ad-account-id"`
}

// BindCommonFlags binds the flags shared by every command.
func BindCommonFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringP("config", "c", "", "Config file path (default: opcli.yaml)")
	flags.String("tree", "", "Command tree file path")
	flags.String("base-url", "", "API base URL override (env: OPCLI_BASE_URL)")
	flags.String("access-token", "", "Bearer access token (env: OPCLI_ACCESS_TOKEN)")
	flags.String("client-id", "", "OAuth client id (env: OPCLI_CLIENT_ID)")
	flags.String("client-secret", "", "OAuth client secret (env: OPCLI_CLIENT_SECRET)")
	flags.String("conversion-token", "", "Conversions API token (env: OPCLI_CONVERSION_TOKEN)")
	flags.String("ad-account-id", "", "Default ad account id for {ad_account_id} paths (env: OPCLI_AD_ACCOUNT_ID)")
	flags.Int("timeout", 0, "HTTP timeout in seconds")
}

// Load layers configuration: built-in defaults, then opcli.yaml (or
// --config), then environment credentials, then changed flags.
func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	configFile := flagString(cmd, "config")
	if configFile == "" {
		if _, err := os.Stat("opcli.yaml"); err == nil {
			configFile = "opcli.yaml"
		}
	}
	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	if env := envMap(); len(env) > 0 {
		if err := k.Load(confmap.Provider(env, "."), nil); err != nil {
			return nil, fmt.Errorf("loading environment: %w", err)
		}
	}

	if flags := flagsMap(cmd); len(flags) > 0 {
		if err := k.Load(confmap.Provider(flags, "."), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

func defaults() map[string]any {
	return map[string]any{
		"spec":             DefaultSpecPath,
		"tree":             DefaultTreePath,
		"fetch-url":        DefaultFetchURL,
		"default-base-url": DefaultBaseURL,
	}
}

func envMap() map[string]any {
	m := make(map[string]any)
	set := func(key, env string) {
		if v := os.Getenv(env); v != "" {
			m[key] = v
		}
	}
	set("base-url", "OPCLI_BASE_URL")
	set("auth.access-token", "OPCLI_ACCESS_TOKEN")
	set("auth.client-id", "OPCLI_CLIENT_ID")
	set("auth.client-secret", "OPCLI_CLIENT_SECRET")
	set("auth.conversion-token", "OPCLI_CONVERSION_TOKEN")
	set("auth.ad-account-id", "OPCLI_AD_ACCOUNT_ID")
	return m
}

func flagsMap(cmd *cobra.Command) map[string]any {
	m := make(map[string]any)
	set := func(key, name string) {
		if v := flagString(cmd, name); v != "" {
			m[key] = v
		}
	}
	set("tree", "tree")
	set("base-url", "base-url")
	set("auth.access-token", "access-token")
	set("auth.client-id", "client-id")
	set("auth.client-secret", "client-secret")
	set("auth.conversion-token", "conversion-token")
	set("auth.ad-account-id", "ad-account-id")

	if cmd.Flags().Changed("timeout") || cmd.PersistentFlags().Changed("timeout") {
		if v, err := cmd.Flags().GetInt("timeout"); err == nil {
			m["timeout"] = v
		}
	}
	return m
}

func flagString(cmd *cobra.Command, name string) string {
	if v, err := cmd.Flags().GetString(name); err == nil && v != "" {
		return v
	}
	if v, err := cmd.PersistentFlags().GetString(name); err == nil && v != "" {
		return v
	}
	return ""
}

// EffectiveBaseURL picks the runtime base URL: explicit override
// first, then the compiled tree's value, then the built-in default.
func (c *Config) EffectiveBaseURL(treeBaseURL string) string {
	switch {
	case c.BaseURL != "":
		return c.BaseURL
	case treeBaseURL != "":
		return treeBaseURL
	default:
		return c.DefaultBaseURL
	}
}
