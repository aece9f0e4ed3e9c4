package export

import (
	"context"
	"encoding/json"
	"slices"
	"strings"

	kerrors "github.com/matzehuels/kinship/pkg/errors"
	"github.com/matzehuels/kinship/pkg/highlight"
	"github.com/matzehuels/kinship/pkg/tree"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// Formats lists the supported formats.
var Formats = []string{FormatJSON, FormatDOT, FormatSVG}

// ValidateFormat checks that format is supported.
func ValidateFormat(format string) error {
	if !slices.Contains(Formats, format) {
		return kerrors.New(kerrors.ErrCodeInvalidInput,
			"invalid format %q (must be one of: %s)", format, strings.Join(Formats, ", "))
	}
	return nil
}

// JSON encodes render data as indented JSON.
func JSON(data highlight.RenderData) ([]byte, error) {
	return json.MarshalIndent(data, "", "  ")
}

// Render produces one artifact per requested format.
func Render(ctx context.Context, v tree.View, data highlight.RenderData, formats []string, opts Options) (map[string][]byte, error) {
	out := make(map[string][]byte, len(formats))
	var dot string
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return nil, err
		}
		if (f == FormatDOT || f == FormatSVG) && dot == "" {
			dot = ToDOT(v, data, opts)
		}

		var (
			b   []byte
			err error
		)
		switch f {
		case FormatJSON:
			b, err = JSON(data)
		case FormatDOT:
			b = []byte(dot)
		case FormatSVG:
			b, err = RenderSVG(ctx, dot)
		}
		if err != nil {
			return nil, kerrors.Wrap(kerrors.ErrCodeInternal, err, "render %s", f)
		}
		out[f] = b
	}
	return out, nil
}
