package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/matzehuels/siteview/pkg/browser"
	"github.com/matzehuels/siteview/pkg/errors"
	"github.com/matzehuels/siteview/pkg/generate"
	"github.com/matzehuels/siteview/pkg/layout"
	"github.com/matzehuels/siteview/pkg/pipeline"
	"github.com/matzehuels/siteview/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	input      string  // saved response file to replay instead of calling the service
	setID      string  // stored candidate set to replay
	formats    string  // comma-separated output formats
	output     string  // output directory
	scale      float64 // PNG scale factor
	embedFonts bool    // embed the label font in SVG output
	noCache    bool    // bypass the artifact cache
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Fetch candidate layouts once and write one file per candidate",
		Long: `Fetch candidate layouts once and write one file per candidate and format
(layout-1.svg, layout-2.svg, ...).

By default the layouts come from the generation service. Use --input to replay
a saved response file, or --set to replay a candidate set from history.`,
		Example: `  siteview render -f svg,png -o out
  siteview render --input response.json -f json
  siteview render --set 3f2b... --locale de-DE`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.input, "input", "", "replay a saved generation response file")
	cmd.Flags().StringVar(&opts.setID, "set", "", "replay a stored candidate set by ID")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg, png, json (comma-separated; default from config)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output directory (default from config)")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "PNG scale factor (default from config)")
	cmd.Flags().BoolVar(&opts.embedFonts, "embed-fonts", false, "embed the label font in SVG files")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the artifact cache")
	cmd.MarkFlagsMutuallyExclusive("input", "set")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, cmd *cobra.Command, opts renderOpts) error {
	logger := loggerFromContext(ctx)
	out := cmd.OutOrStdout()

	pipeOpts := c.renderOptions()
	if f := parseFormats(opts.formats); f != nil {
		pipeOpts.Formats = f
	}
	if opts.scale != 0 {
		pipeOpts.Scale = opts.scale
	}
	pipeOpts.EmbedFonts = opts.embedFonts
	pipeOpts.SetDefaults()
	if err := pipeOpts.Validate(); err != nil {
		return err
	}

	dir := opts.output
	if dir == "" {
		dir = c.Config.Render.OutputDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	candidates, err := c.fetchCandidates(ctx, cmd, opts)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		printWarning(out, "The generation service returned no layouts")
		return nil
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	printInfo(out, "Rendering %d layouts", len(candidates))
	p := render.NewPrinter(mustLocale(pipeOpts))
	written := 0
	for i := range candidates {
		l := &candidates[i]
		o := pipeOpts
		o.Title = l.Title(i)
		artifacts, cached, err := runner.RenderWithCacheInfo(ctx, l, o)
		if err != nil {
			return fmt.Errorf("%s: %w", o.Title, err)
		}
		printLayoutLine(out, o.Title, render.StatsFor(p, l), cached)
		for _, format := range o.Formats {
			path := filepath.Join(dir, fmt.Sprintf("layout-%d.%s", i+1, format))
			if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			printFile(out, path)
			written++
		}
	}
	prog.done(fmt.Sprintf("Wrote %d files", written))
	printSuccess(out, "Rendered %d layouts to %s", len(candidates), dir)
	return nil
}

// fetchCandidates runs one generation through a controller and returns the
// resulting candidate list. HTTP results are recorded to history.
func (c *CLI) fetchCandidates(ctx context.Context, cmd *cobra.Command, opts renderOpts) ([]layout.Layout, error) {
	logger := loggerFromContext(ctx)

	var (
		client   generate.Client
		ctrlOpts = []generate.Option{generate.WithLogger(logger)}
	)
	switch {
	case opts.input != "":
		client = generate.NewFileClient(opts.input)
	case opts.setID != "":
		if err := errors.ValidateSetID(opts.setID); err != nil {
			return nil, err
		}
		st, err := c.openStore(ctx)
		if err != nil {
			return nil, err
		}
		defer st.Close()
		client = generate.NewStoreClient(st, opts.setID)
	default:
		client = c.newClient()
		rec, closeStore, err := c.recorderOptions(ctx)
		if err != nil {
			logger.Warn("history disabled", "err", err)
		} else {
			defer closeStore()
			ctrlOpts = append(ctrlOpts, rec...)
		}
	}

	b := browser.New(render.New(render.NewRecorder(), nil))
	ctrl := generate.NewController(client, b, ctrlOpts...)

	spin := newSpinner(ctx, cmd.ErrOrStderr(), "Requesting layouts from "+client.Source())
	spin.Start()
	err := ctrl.RequestGeneration(ctx)
	spin.Stop()
	if err != nil {
		return nil, err
	}
	return b.Candidates(), nil
}

func mustLocale(o pipeline.Options) language.Tag {
	tag, err := o.LocaleTag()
	if err != nil {
		return render.DefaultLocale
	}
	return tag
}
