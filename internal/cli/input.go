package cli

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/matzehuels/kinship/pkg/config"
	kerrors "github.com/matzehuels/kinship/pkg/errors"
	"github.com/matzehuels/kinship/pkg/export"
	"github.com/matzehuels/kinship/pkg/highlight"
	"github.com/matzehuels/kinship/pkg/tree"
)

// loadTree reads a laid-out tree and logs structural problems. Problems are
// not fatal: the engine skips what it cannot use.
func loadTree(ctx context.Context, path string) (*tree.Tree, error) {
	logger := loggerFromContext(ctx)
	t, err := tree.ReadGraphFile(path)
	if err != nil {
		return nil, err
	}
	logger.Infof("Loaded tree: %d people, %d roots", t.NodeCount(), len(t.Roots()))
	if err := t.Validate(); err != nil {
		logger.Warn("tree has structural problems", "error", err)
	}
	return t, nil
}

// loadHighlights reads a highlight file and builds its registry with the
// configured default style and capacity.
func (c *CLI) loadHighlights(ctx context.Context, path string) (*config.HighlightFile, highlight.Registry, error) {
	file, err := config.LoadHighlights(path)
	if err != nil {
		return nil, highlight.Registry{}, err
	}
	reg, err := file.Registry(c.Config.Engine.Style, highlight.WithCapacity(c.Config.Engine.Capacity))
	if err != nil {
		return nil, highlight.Registry{}, err
	}
	loggerFromContext(ctx).Infof("Loaded %s", plural(reg.Len(), "highlight"))
	return file, reg, nil
}

// parseViewport parses "minX,minY,maxX,maxY". An empty string disables
// culling.
func parseViewport(s string) (*highlight.Viewport, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, kerrors.New(kerrors.ErrCodeInvalidInput, "viewport must be minX,minY,maxX,maxY (got %q)", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, kerrors.Wrap(kerrors.ErrCodeInvalidInput, err, "viewport coordinate %d", i+1)
		}
		v[i] = f
	}
	return &highlight.Viewport{MinX: v[0], MinY: v[1], MaxX: v[2], MaxY: v[3]}, nil
}

// parseFormats splits a comma-separated format list. Empty means SVG.
func parseFormats(s string) ([]string, error) {
	if s == "" {
		return []string{export.FormatSVG}, nil
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if err := export.ValidateFormat(f); err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, nil
}

// basePath derives the output path without extension. An explicit output
// loses a known format extension; otherwise the input name is used.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if export.ValidateFormat(strings.TrimPrefix(ext, ".")) == nil {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
