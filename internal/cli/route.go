package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cellgen/pkg/pipeline"
	"github.com/matzehuels/cellgen/pkg/plan"
	"github.com/matzehuels/cellgen/pkg/render"
	"github.com/matzehuels/cellgen/pkg/tech"
)

// routeOpts holds the command-line flags for the route command.
type routeOpts struct {
	output   string // output file (single format) or base path
	techFile string // TOML technology file registered before routing
	noCache  bool
}

// routeCommand creates the route command: plan file in, artifacts out.
func (c *CLI) routeCommand() *cobra.Command {
	var (
		formatsStr string
		ro         routeOpts
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "route [plan.toml]",
		Short: "Route a cell plan and render the result",
		Long: `Route a cell plan and render the result.

The plan (TOML or JSON, chosen by extension) places devices, names exports and
lists the routing tracks with the ports each one connects. cellgen builds the
via stacks and track wires and writes one file per requested format next to
the plan, or under --output.

Layouts and artifacts are cached locally; --refresh reroutes while keeping the
cache, --no-cache bypasses it entirely.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runRoute(cmd.Context(), args[0], opts, ro)
		},
	}

	cmd.Flags().StringVarP(&ro.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, dot, graph (comma-separated)")
	cmd.Flags().StringVarP(&opts.Technology, "tech", "t", "", "technology name, overrides the plan")
	cmd.Flags().StringVar(&ro.techFile, "tech-file", "", "TOML technology file to route with")
	cmd.Flags().BoolVar(&ro.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "reroute even when a cached layout exists")
	cmd.Flags().BoolVar(&opts.Archive, "archive", false, "archive the layout under the data directory")
	cmd.Flags().BoolVar(&opts.Labels, "labels", false, "draw instance and export labels (svg)")
	cmd.Flags().Float64Var(&opts.Scale, "scale", pipeline.DefaultScale, "pixels per lambda (svg)")

	return cmd
}

// runRoute reads the plan, runs the pipeline and writes the artifacts.
func (c *CLI) runRoute(ctx context.Context, input string, opts pipeline.Options, ro routeOpts) error {
	logger := loggerFromContext(ctx)

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read plan %s: %w", input, err)
	}
	opts.Plan = string(data)
	opts.PlanFormat = string(plan.DetectFormat(input))
	opts.Logger = logger

	runner, err := c.newRunner(ro.noCache, opts.Archive)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close(ctx)

	if ro.techFile != "" {
		name, err := registerTechFile(runner.Registry, ro.techFile)
		if err != nil {
			return err
		}
		opts.Technology = name
	}

	prog := newProgress(logger, "plan", filepath.Base(input))
	spinner := newSpinnerWithContext(ctx, "Routing "+filepath.Base(input)+"...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Routing failed")
		return fmt.Errorf("route: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	prog.done("Routed", "cell", result.Layout.Cell)

	paths, err := artifactPaths(input, ro.output, opts.Formats)
	if err != nil {
		return err
	}
	printSuccess("Routed %s (%s)", StyleHighlight.Render(result.Layout.Cell), result.Layout.Technology)
	for _, format := range opts.Formats {
		path := paths[format]
		if err := writeArtifact(path, result.Artifacts[format]); err != nil {
			return err
		}
		printFile(path)
	}
	printStats(result.Layout.Stats, result.CacheInfo.RouteHit)
	if result.LayoutID != "" {
		printKeyValue("layout", result.LayoutID)
	}
	return nil
}

// registerTechFile loads a TOML technology and registers it, returning its
// name.
func registerTechFile(reg *tech.Registry, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read technology %s: %w", path, err)
	}
	p, err := tech.Parse(data)
	if err != nil {
		return "", err
	}
	if err := reg.Register(p); err != nil {
		return "", err
	}
	return p.Name, nil
}

// artifactExt is the file suffix for format. JSON layouts get a
// ".layout.json" suffix so they never collide with a JSON plan.
func artifactExt(format string) string {
	if format == render.FormatJSON {
		return ".layout.json"
	}
	return render.Ext(format)
}

// artifactPaths maps each format to its output path. A single format with an
// output that has an extension is written to output as is; otherwise output
// (or the plan path) is a base name, and an existing directory puts the files
// inside it.
func artifactPaths(input, output string, formats []string) (map[string]string, error) {
	paths := make(map[string]string, len(formats))
	if output != "" && len(formats) == 1 && filepath.Ext(output) != "" && !isDir(output) {
		paths[formats[0]] = output
	} else {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		switch {
		case output != "" && isDir(output):
			base = filepath.Join(output, filepath.Base(base))
		case output != "":
			base = strings.TrimSuffix(output, filepath.Ext(output))
		}
		for _, f := range formats {
			paths[f] = base + artifactExt(f)
		}
	}

	abs, _ := filepath.Abs(input)
	for f, p := range paths {
		if pa, _ := filepath.Abs(p); pa == abs {
			return nil, fmt.Errorf("%s output would overwrite the plan %s", f, input)
		}
	}
	return paths, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func writeArtifact(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	return nil
}
