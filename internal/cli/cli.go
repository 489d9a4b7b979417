package cli

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cellgen/pkg/buildinfo"
	"github.com/matzehuels/cellgen/pkg/cache"
	"github.com/matzehuels/cellgen/pkg/observability"
	"github.com/matzehuels/cellgen/pkg/pipeline"
	"github.com/matzehuels/cellgen/pkg/storage"
)

const (
	appName    = "cellgen"
	layoutsDir = "layouts" // archive, under dataDir
)

// Log levels for main.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI carries the state shared by every command.
type CLI struct {
	Logger *log.Logger
}

// New returns a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

func (c *CLI) SetLogLevel(level log.Level) { c.Logger.SetLevel(level) }

// RootCommand assembles the command tree.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "cellgen routes standard-cell interconnect",
		Long: `cellgen builds the interconnect of a standard cell from a routing plan:
via stacks from device ports up to routing tracks, horizontal and vertical
track wires, jogs, and spines, rendered as SVG, JSON or a connectivity graph.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.Logger.GetLevel() <= log.DebugLevel {
				observability.NewLogHooks(c.Logger).Install()
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}
	root.SetVersionTemplate(buildinfo.Template())
	root.AddCommand(
		c.routeCommand(),
		c.techCommand(),
		c.serveCommand(),
		c.cacheCommand(),
		c.completionCommand(),
	)
	return root
}

// newRunner returns a pipeline runner over the local cache. With archive,
// layouts are also stored under dataDir/layouts.
func (c *CLI) newRunner(noCache, archive bool) (*pipeline.Runner, error) {
	cc, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(cc, nil, c.Logger)
	if !archive {
		return r, nil
	}
	dir, err := dataDir()
	if err != nil {
		return nil, err
	}
	if r.Store, err = storage.NewFileStore(filepath.Join(dir, layoutsDir)); err != nil {
		return nil, err
	}
	return r, nil
}

// newCache returns the file cache, or a null cache when disabled or when no
// home directory can be found.
func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir is $XDG_CACHE_HOME/cellgen, defaulting to ~/.cache/cellgen.
func cacheDir() (string, error) { return xdgDir("XDG_CACHE_HOME", ".cache") }

// dataDir is $XDG_DATA_HOME/cellgen, defaulting to ~/.local/share/cellgen.
func dataDir() (string, error) { return xdgDir("XDG_DATA_HOME", ".local", "share") }

func xdgDir(env string, fallback ...string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append(append([]string{home}, fallback...), appName)...), nil
}

// parseFormats splits a --format value such as "svg, json".
func parseFormats(s string) []string {
	if s == "" {
		return slices.Clone(pipeline.DefaultFormats)
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
