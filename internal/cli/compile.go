package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/karolt/opcli/internal/compile"
	"github.com/karolt/opcli/internal/config"
	"github.com/karolt/opcli/internal/loader"
)

func CompileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile an OpenAPI document into a command tree",

		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd)
			if err != nil {
				return err
			}
			if v := stringFlag(cmd, "spec"); v != "" {
				cfg.Spec = v
			}
			if v := stringFlag(cmd, "out"); v != "" {
				cfg.Tree = v
			}

			result, err := loader.LoadFile(cfg.Spec)
			if err != nil {
				return fmt.Errorf("loading spec: %w", err)
			}
			for _, w := range result.Warnings {
				cmd.PrintErrf("Warning: %s\n", w)
			}

			t, err := compile.Compile(result.Document, compile.Options{
				DefaultBaseURL: cfg.DefaultBaseURL,
			})
			if err != nil {
				return fmt.Errorf("compiling command tree: %w", err)
			}

			ops := 0
			for _, res := range t.Resources {
				ops += len(res.Ops)
			}
			cmd.PrintErrf("Compiled OpenAPI %s: %d resources, %d operations\n", result.Version, len(t.Resources), ops)

			if dir := filepath.Dir(cfg.Tree); dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("creating output directory: %w", err)
				}
			}
			if err := t.WriteFile(cfg.Tree); err != nil {
				return err
			}
			cmd.PrintErrf("Written: %s\n", cfg.Tree)
			return nil
		},
	}

	cmd.Flags().StringP("spec", "s", "", "OpenAPI document path")
	cmd.Flags().StringP("out", "o", "", "Command tree output path")
	return cmd
}
