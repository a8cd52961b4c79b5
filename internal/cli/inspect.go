package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/karolt/opcli/internal/config"
	"github.com/karolt/opcli/internal/tree"
)

func loadTree(cmd *cobra.Command) (*config.Config, *tree.Tree, error) {
	cfg, err := config.Load(cmd)
	if err != nil {
		return nil, nil, err
	}
	t, err := tree.Load(cfg.Tree)
	if err != nil {
		return nil, nil, fmt.Errorf("no compiled command tree (run opcli compile first): %w", err)
	}
	return cfg, t, nil
}

func TreeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show the full command tree",

		RunE: func(cmd *cobra.Command, args []string) error {
			_, t, err := loadTree(cmd)
			if err != nil {
				return err
			}
			if boolFlag(cmd, "json") {
				return writeJSON(cmd.OutOrStdout(), t, true)
			}
			cmd.Println("Run with --json for machine-readable output.")
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Emit machine-readable JSON")
	return cmd
}

func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List resources and operations",

		RunE: func(cmd *cobra.Command, args []string) error {
			_, t, err := loadTree(cmd)
			if err != nil {
				return err
			}
			if boolFlag(cmd, "json") {
				out := []any{}
				for _, res := range t.Resources {
					ops := []string{}
					for _, op := range res.Ops {
						ops = append(ops, op.Name)
					}
					out = append(out, map[string]any{"resource": res.Name, "ops": ops})
				}
				return writeJSON(cmd.OutOrStdout(), out, true)
			}

			for _, res := range t.Resources {
				cmd.Println(res.Name)
				for _, op := range res.Ops {
					cmd.Printf("  %s\n", op.Name)
				}
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Emit machine-readable JSON")
	return cmd
}

func DescribeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe RESOURCE OPERATION",
		Short: "Describe a specific operation",
		Args:  cobra.ExactArgs(2),

		RunE: func(cmd *cobra.Command, args []string) error {
			_, t, err := loadTree(cmd)
			if err != nil {
				return err
			}
			op := t.Find(args[0], args[1])
			if op == nil {
				return fmt.Errorf("unknown command %s %s", args[0], args[1])
			}
			if boolFlag(cmd, "json") {
				return writeJSON(cmd.OutOrStdout(), op, true)
			}

			cmd.Printf("%s %s\n", args[0], op.Name)
			cmd.Printf("  method: %s\n", op.Method)
			cmd.Printf("  path: %s\n", op.Path)
			cmd.Printf("  paginated: %t\n", op.Paginated)

			if len(op.Security) > 0 {
				schemes := []string{}
				for _, req := range op.Security {
					for name := range req {
						schemes = append(schemes, name)
					}
				}
				cmd.Printf("  auth: %s\n", joinSorted(schemes, " | "))
			}

			if rb := op.RequestBody; rb != nil {
				cmd.Printf("  request_body: required=%t\n", rb.Required)
				if len(rb.ContentTypes) > 0 {
					cmd.Printf("    content_types: %s\n", joinSorted(rb.ContentTypes, ", "))
				}
			}

			if len(op.Params) > 0 {
				cmd.Println("  params:")
				for _, p := range op.Params {
					cmd.Printf("    --%s  %s (%s, required=%t)\n", p.Flag, paramValueName(p), p.In, p.Required)
				}
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Emit machine-readable JSON")
	return cmd
}
