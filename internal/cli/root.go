package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/karolt/opcli/internal/config"
	"github.com/karolt/opcli/internal/tree"
)

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "opcli",
		Short:   "REST API CLI driven by a compiled command tree",
		Version: "1.0.0",

		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	config.BindCommonFlags(root)
	flags := root.PersistentFlags()
	flags.Bool("pretty", false, "Pretty-print JSON output")
	flags.Bool("raw", false, "Return full API response (do not unwrap items[])")
	flags.Bool("debug", false, "Enable debug logging")
	flags.Bool("all", false, "Auto-paginate bookmark-based endpoints")
	flags.Int("max-pages", 0, "Max pages to fetch when --all")
	flags.Int("max-items", 0, "Max items to fetch when --all")

	root.AddCommand(
		FetchCommand(),
		CompileCommand(),
		TreeCommand(),
		ListCommand(),
		DescribeCommand(),
		CallCommand(),
	)

	// Resource commands come from the compiled tree. Before a tree
	// exists only the static commands are available.
	if t, err := tree.Load(treePath()); err == nil {
		addResourceCommands(root, t)
	}

	return root
}

// treePath resolves the command tree location before flag parsing has
// happened: environment first, then the default.
func treePath() string {
	if p := os.Getenv("OPCLI_TREE"); p != "" {
		return p
	}
	return config.DefaultTreePath
}
