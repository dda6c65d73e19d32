package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/splitplan/pkg/errors"
	pkgio "github.com/matzehuels/splitplan/pkg/io"
	"github.com/matzehuels/splitplan/pkg/pipeline"
	"github.com/matzehuels/splitplan/pkg/splitter"
)

type renderFlags struct {
	formats   string
	output    string
	detailed  bool
	direction string
	maxLayers int
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render <demand|plan.json>",
		Short: "Render a plan as a diagram",
		Long: `Render a plan as a diagram.

The argument is either a demand ratio, which is solved first, or a plan
previously written with 'plan --json' or 'render -f json'.

Splitters are drawn as circles labeled with their arity, feed-forward arms
in blue and return arms as red dashed edges back to the input.

Examples:
  splitplan render 54:18:24                       # splitplan-54-18-24.svg
  splitplan render 3,1 -f svg,png -o out/ratio    # out/ratio.svg, out/ratio.png
  splitplan render plan.json -f dot -o -          # DOT on stdout`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), args, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output format(s): svg (default), png, pdf, dot, json, text (comma-separated)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single format), base path (multiple), or - for stdout")
	cmd.Flags().BoolVar(&flags.detailed, "detailed", false, "label arms with their share of the input and outputs with their demand")
	cmd.Flags().StringVar(&flags.direction, "direction", "", "layout direction: TB (default) or LR")
	cmd.Flags().IntVar(&flags.maxLayers, "max-layers", 0, "fail when more layers are needed")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, out io.Writer, args []string, flags renderFlags) error {
	cfg := c.config()
	opts := pipeline.Options{
		Formats:   c.parseFormats(flags.formats),
		Detailed:  flags.detailed || cfg.Render.Detailed,
		Direction: strings.ToUpper(flags.direction),
		MaxLayers: c.maxLayers(flags.maxLayers),
		Logger:    c.Logger,
	}
	if opts.Direction == "" {
		opts.Direction = cfg.Render.Direction
	}
	if err := opts.ValidateForRender(); err != nil {
		return err
	}
	if flags.output == "-" && len(opts.Formats) > 1 {
		return errors.New(errors.ErrCodeInvalidPath, "stdout output supports a single format, got %d", len(opts.Formats))
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var (
		p     *splitter.Plan
		input string
	)
	if len(args) == 1 && looksLikePlanFile(args[0]) {
		input = args[0]
		if p, err = pkgio.ImportJSON(input); err != nil {
			return fmt.Errorf("load plan %s: %w", input, err)
		}
	} else {
		demand, err := parseDemandArgs(args)
		if err != nil {
			return err
		}
		opts.Demand = demand
		if p, err = runner.Plan(ctx, opts); err != nil {
			return err
		}
	}

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", strings.Join(opts.Formats, ", ")))
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, p, opts)
	if err != nil {
		spinner.StopWithError(os.Stderr, "Rendering failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Rendered %d artifact(s)", len(artifacts)))

	return writeArtifacts(out, artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		plan:      p,
		input:     input,
		output:    flags.output,
		cacheHit:  cacheHit,
	})
}

type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	plan      *splitter.Plan
	input     string // plan file the artifacts came from, if any
	output    string
	cacheHit  bool
}

// writeArtifacts writes one file per format and reports each path on out.
func writeArtifacts(out io.Writer, params artifactWriteParams) error {
	if params.output == "-" {
		_, err := out.Write(params.artifacts[params.formats[0]])
		return err
	}

	var written []string
	for _, format := range params.formats {
		path := outputPath(params, format)
		if params.input != "" && filepath.Clean(path) == filepath.Clean(params.input) {
			return errors.New(errors.ErrCodeInvalidPath, "refusing to overwrite input %s", params.input)
		}
		if err := errors.ValidateOutputFilename(filepath.Base(path)); err != nil {
			return err
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", dir, err)
			}
		}
		if err := os.WriteFile(path, params.artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}

	status := iconFresh
	if params.cacheHit {
		status = iconCached
	}
	printSuccess(out, "Rendered %s %s", outputLabel(params.plan), StyleDim.Render("("+status+")"))
	for _, path := range written {
		printFile(out, path)
	}
	return nil
}

// outputPath picks the file for format. A single format uses -o verbatim;
// several formats share the -o base with per-format extensions.
func outputPath(params artifactWriteParams, format string) string {
	if params.output != "" && len(params.formats) == 1 {
		return params.output
	}
	return basePath(params.output, params.input, params.plan) + "." + extension(format)
}

// basePath strips a known format extension from output, or derives a name
// from the input file or the demand.
func basePath(output, input string, p *splitter.Plan) string {
	if output != "" {
		ext := filepath.Ext(output)
		if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] || ext == ".txt" || ext == ".gv" {
			return strings.TrimSuffix(output, ext)
		}
		return output
	}
	if input != "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	parts := make([]string, len(p.Input))
	for i, v := range p.Input {
		parts[i] = fmt.Sprint(v)
	}
	return "splitplan-" + strings.Join(parts, "-")
}

func extension(format string) string {
	if format == pipeline.FormatText {
		return "txt"
	}
	return format
}

func outputLabel(p *splitter.Plan) string {
	parts := make([]string, len(p.Input))
	for i, v := range p.Input {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ":")
}
