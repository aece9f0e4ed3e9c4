package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kinship/pkg/export"
	"github.com/matzehuels/kinship/pkg/highlight"
	"github.com/matzehuels/kinship/pkg/pipeline"
	"github.com/matzehuels/kinship/pkg/tree"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	highlights      string // highlight file (TOML or YAML)
	output          string // output file or base path
	formats         string // comma-separated: json, dot, svg
	viewport        string // minX,minY,maxX,maxY
	highlightedOnly bool   // drop untouched people from DOT/SVG
	labels          bool   // show labels instead of IDs
	noCache         bool   // disable memoization
	refresh         bool   // recompute even on a cache hit
}

// renderCommand exports the highlight pass for a tree.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [tree.json]",
		Short: "Export highlighted render data as JSON, DOT or SVG",
		Example: `  kinship render family.json -H highlights.toml
  kinship render family.json -H highlights.yaml -f json,svg --viewport 0,0,1920,1080`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.highlights, "highlights", "H", "", "highlight definitions file (required)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), json, dot (comma-separated)")
	cmd.Flags().StringVar(&opts.viewport, "viewport", "", "cull to minX,minY,maxX,maxY")
	cmd.Flags().BoolVar(&opts.highlightedOnly, "highlighted-only", false, "omit people no highlight touches (dot, svg)")
	cmd.Flags().BoolVar(&opts.labels, "labels", false, "show person labels instead of IDs (dot, svg)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable pass memoization")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if a cached pass exists")
	_ = cmd.MarkFlagRequired("highlights")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, opts *renderOpts) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	logger := loggerFromContext(ctx)

	formats, err := parseFormats(opts.formats)
	if err != nil {
		return err
	}
	viewport, err := parseViewport(opts.viewport)
	if err != nil {
		return err
	}

	t, err := loadTree(ctx, input)
	if err != nil {
		return err
	}
	_, reg, err := c.loadHighlights(ctx, opts.highlights)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	passOpts := c.pipelineOptions()
	passOpts.Viewport = viewport
	passOpts.Refresh = opts.refresh

	prog := newProgress(logger)
	result, err := runner.Execute(ctx, reg, t, passOpts)
	if err != nil {
		return err
	}
	prog.done("Highlight pass complete")

	artifacts, err := c.exportArtifacts(ctx, runner, t, result.Render, formats, export.Options{
		HighlightedOnly: opts.highlightedOnly,
		Labels:          opts.labels,
	})
	if err != nil {
		return err
	}

	paths, err := writeArtifacts(artifacts, formats, opts.output, input)
	if err != nil {
		return err
	}
	printSuccess(out, "Rendered %s", plural(len(paths), "file"))
	printPass(out, result)
	for _, p := range paths {
		printFile(out, p)
	}
	return nil
}

func (c *CLI) exportArtifacts(ctx context.Context, runner *pipeline.Runner, t *tree.Tree, data highlight.RenderData, formats []string, opts export.Options) (map[string][]byte, error) {
	var artifacts map[string][]byte
	run := func() error {
		var err error
		artifacts, err = runner.Export(ctx, t, data, formats, opts)
		return err
	}
	var err error
	if slices.Contains(formats, export.FormatSVG) {
		err = spin(ctx, os.Stderr, "Rendering SVG", run)
	} else {
		err = run()
	}
	return artifacts, err
}

// writeArtifacts writes one file per format. A single format goes to output
// verbatim when given; otherwise files are named <base>.<format>.
func writeArtifacts(artifacts map[string][]byte, formats []string, output, input string) ([]string, error) {
	base := basePath(output, input)
	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		path := base + "." + f
		if len(formats) == 1 && output != "" {
			path = output
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create output directory: %w", err)
			}
		}
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
