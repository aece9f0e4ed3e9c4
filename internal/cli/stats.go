package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kinship/pkg/highlight"
)

// statsCommand summarizes a highlight file against a tree.
func (c *CLI) statsCommand() *cobra.Command {
	var (
		highlights string
		viewport   string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "stats [tree.json]",
		Short: "Summarize highlights, segments and overlaps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			vp, err := parseViewport(viewport)
			if err != nil {
				return err
			}
			t, err := loadTree(ctx, args[0])
			if err != nil {
				return err
			}
			_, reg, err := c.loadHighlights(ctx, highlights)
			if err != nil {
				return err
			}

			runner, err := c.newRunner(false)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := c.pipelineOptions()
			opts.Viewport = vp
			result, err := runner.Execute(ctx, reg, t, opts)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Stats   highlight.Stats `json:"stats"`
					Visible int             `json:"visible"`
					Tier    string          `json:"tier"`
				}{result.Stats, result.Visible, result.Render.Tier.String()})
			}

			fmt.Fprintln(out, StyleTitle.Render("Highlights"))
			fmt.Fprintln(out, definitionTable(reg.Definitions(), segmentCounts(result.Render), nil, nil))
			fmt.Fprintln(out)
			printKeyValue(out, "highlights", fmt.Sprintf("%d of %d", reg.Len(), reg.Capacity()))
			printKeyValue(out, "segments", strconv.Itoa(result.Stats.Segments))
			printKeyValue(out, "visible", strconv.Itoa(result.Visible))
			printKeyValue(out, "overlapping", strconv.Itoa(result.Stats.Overlapping))
			printKeyValue(out, "tier", result.Render.Tier.String())
			printKeyValue(out, "pass", result.Timing.Total.String())
			return nil
		},
	}

	cmd.Flags().StringVarP(&highlights, "highlights", "H", "", "highlight definitions file (required)")
	cmd.Flags().StringVar(&viewport, "viewport", "", "cull to minX,minY,maxX,maxY")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print counts as JSON")
	_ = cmd.MarkFlagRequired("highlights")

	return cmd
}
