package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kinship/pkg/highlight"
)

type pathOpts struct {
	kind     string
	from     string
	to       string
	root     string
	maxDepth int
	asJSON   bool
}

// pathCommand prints the edges one highlight would light up.
func (c *CLI) pathCommand() *cobra.Command {
	var opts pathOpts

	cmd := &cobra.Command{
		Use:   "path [tree.json]",
		Short: "Print the edges of a single highlight",
		Example: `  kinship path family.json --kind ancestry_path --from p17 --max-depth 3
  kinship path family.json --kind node_to_node --from p4 --to p9`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPath(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.kind, "kind", "k", string(highlight.KindAncestryPath), "highlight kind")
	cmd.Flags().StringVar(&opts.from, "from", "", "start person")
	cmd.Flags().StringVar(&opts.to, "to", "", "end person (node_to_node, connection_only)")
	cmd.Flags().StringVar(&opts.root, "root", "", "subtree root")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", 0, "depth limit (0 = engine maximum)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print edges as JSON")
	_ = cmd.RegisterFlagCompletionFunc("kind", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		kinds := make([]string, len(highlight.Kinds))
		for i, k := range highlight.Kinds {
			kinds[i] = string(k)
		}
		return kinds, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func (c *CLI) runPath(cmd *cobra.Command, input string, opts pathOpts) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	kind, err := highlight.ParseKind(opts.kind)
	if err != nil {
		return err
	}
	def := highlight.Definition{
		Kind:     kind,
		From:     opts.from,
		To:       opts.to,
		Root:     opts.root,
		MaxDepth: opts.maxDepth,
	}
	if err := def.Validate(); err != nil {
		return err
	}

	t, err := loadTree(ctx, input)
	if err != nil {
		return err
	}

	edges := highlight.ComputePath(def, t, highlight.WithLogger(c.Logger))
	if opts.asJSON {
		if edges == nil {
			edges = []highlight.Edge{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(edges)
	}

	if len(edges) == 0 {
		printWarning(out, "No %s path found", kind)
		return nil
	}
	for _, e := range edges {
		fmt.Fprintf(out, "%s %s %s\n", e.From, StyleDim.Render(iconArrow), e.To)
	}
	if kind == highlight.KindNodeToNode {
		if lca, ok := highlight.LowestCommonAncestor(opts.from, opts.to, t); ok {
			printDetail(out, "via %s", lca)
		}
	}
	printSuccess(out, "%s", plural(len(edges), "edge"))
	return nil
}
