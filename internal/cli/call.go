package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/karolt/opcli/internal/client"
	"github.com/karolt/opcli/internal/config"
	"github.com/karolt/opcli/internal/tree"
)

func CallCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call METHOD PATH",
		Short: "Make a raw API call",
		Args:  cobra.ExactArgs(2),

		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd)
			if err != nil {
				return err
			}
			// The tree is optional here; it only contributes the
			// base URL when no override is configured.
			baseURL := ""
			if t, err := tree.Load(cfg.Tree); err == nil {
				baseURL = t.BaseURL
			}
			c := newClient(cmd, cfg, &tree.Tree{BaseURL: baseURL})

			method := strings.ToUpper(args[0])
			auth, err := callAuth(cmd, cfg)
			if err != nil {
				return err
			}

			query, err := parseParamsJSON(stringFlag(cmd, "params"), nil)
			if err != nil {
				return err
			}

			var body *client.Body
			if raw := stringFlag(cmd, "body"); raw != "" {
				value, err := parseJSONSource(raw)
				if err != nil {
					return err
				}
				body = &client.Body{JSON: value}
			} else if raw := stringFlag(cmd, "form"); raw != "" {
				fields, err := parseFormSource(raw)
				if err != nil {
					return err
				}
				body = &client.Body{Form: fields}
			}

			resp, err := c.Request(cmd.Context(), method, c.BuildURL(args[1]), auth, query, body)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), resp, boolFlag(cmd, "pretty"))
		},
	}

	cmd.Flags().String("auth", "bearer", "Auth scheme: bearer, basic or conversion")
	cmd.Flags().String("params", "", "JSON object of query parameters")
	cmd.Flags().String("body", "", "JSON request body (inline, @FILE, URL or S3)")
	cmd.Flags().String("form", "", "Form body as JSON object (inline, @FILE, URL or S3)")
	return cmd
}

func callAuth(cmd *cobra.Command, cfg *config.Config) (client.Auth, error) {
	switch stringFlag(cmd, "auth") {
	case "basic":
		if cfg.Auth.ClientID == "" || cfg.Auth.ClientSecret == "" {
			return client.Auth{}, fmt.Errorf("client id and secret required (OPCLI_CLIENT_ID / OPCLI_CLIENT_SECRET)")
		}
		return client.Basic(cfg.Auth.ClientID, cfg.Auth.ClientSecret), nil
	case "conversion":
		if cfg.Auth.ConversionToken == "" {
			return client.Auth{}, fmt.Errorf("conversion token required (OPCLI_CONVERSION_TOKEN)")
		}
		return client.Bearer(cfg.Auth.ConversionToken), nil
	default:
		if cfg.Auth.AccessToken == "" {
			return client.Auth{}, fmt.Errorf("access token required (OPCLI_ACCESS_TOKEN)")
		}
		return client.Bearer(cfg.Auth.AccessToken), nil
	}
}
