package cli

import (
	"fmt"
	"os"
	"path/filepath"

	getter "github.com/hashicorp/go-getter"
	"github.com/spf13/cobra"

	"github.com/karolt/opcli/internal/config"
)

func FetchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the OpenAPI document into the schemas directory",

		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd)
			if err != nil {
				return err
			}
			url := cfg.FetchURL
			if v := stringFlag(cmd, "url"); v != "" {
				url = v
			}
			out := cfg.Spec
			if v := stringFlag(cmd, "out"); v != "" {
				out = v
			}

			if dir := filepath.Dir(out); dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("creating output directory: %w", err)
				}
			}
			if err := getter.GetFile(out, url); err != nil {
				return fmt.Errorf("downloading %s: %w", url, err)
			}
			cmd.Println(out)
			return nil
		},
	}

	cmd.Flags().String("url", "", "Document URL")
	cmd.Flags().StringP("out", "o", "", "Output path")
	return cmd
}
