package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/vk/behaviorgo/internal/app"
	"github.com/vk/behaviorgo/internal/builder"
)

// Version is printed by `behaviorgo --version`. Release builds set it with -ldflags.
var Version = "dev"

// options holds the values of all flags.
type options struct {
	root      string
	dbPath    string
	logLevel  string
	logFormat string
	cacheSize int

	ticks           int
	interval        time.Duration
	healthcheckPort int
	treeName        string
	trace           bool
	watch           []string
}

// Execute runs the behaviorgo command line with args. Command output goes
// to outW, logs and diagnostics to errW. Every returned error is an *ExitError.
func Execute(ctx context.Context, outW, errW io.Writer, args []string) error {
	cmd := NewRootCommand(outW, errW)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		return toExitError(err)
	}
	return nil
}

// NewRootCommand builds the command tree.
func NewRootCommand(outW, errW io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "behaviorgo",
		Short: "Build, validate and run behavior trees from JSON, HCL or YAML documents",
		Long: `behaviorgo reads behavior tree documents (.json, .hcl, .yaml or .yml), validates them
against the built-in node types and runs them tick by tick. Trees can also be
stored in a SQLite catalog and referenced by name.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	flags := root.PersistentFlags()
	flags.StringVar(&opts.root, "root", "", "Directory tree file paths are resolved against (default: working directory).")
	flags.StringVar(&opts.dbPath, "db", "", "Path to the SQLite tree catalog.")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flags.StringVar(&opts.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	flags.IntVar(&opts.cacheSize, "cache-size", builder.DefaultCacheSize, "Number of parsed documents to cache. 0 disables the cache.")

	root.AddCommand(
		newValidateCommand(opts, outW, errW),
		newDumpCommand(opts, outW, errW),
		newRunCommand(opts, outW, errW),
		newCatalogCommand(opts, outW, errW),
	)
	return root
}

// newApp validates the flags and constructs the application.
func newApp(ctx context.Context, opts *options, outW, errW io.Writer) (*app.App, error) {
	cfg, err := app.NewConfig(app.Config{
		Root:            opts.root,
		DBPath:          opts.dbPath,
		LogFormat:       strings.ToLower(opts.logFormat),
		LogLevel:        strings.ToLower(opts.logLevel),
		HealthcheckPort: opts.healthcheckPort,
		CacheSize:       opts.cacheSize,
		Ticks:           opts.ticks,
		Interval:        opts.interval,
		Trace:           opts.trace || len(opts.watch) > 0,
		Watch:           opts.watch,
	})
	if err != nil {
		return nil, usageError(err)
	}
	slog.Debug("CLI parameter validation complete.", "config", cfg)

	a, err := app.NewApp(ctx, outW, errW, cfg)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// withApp runs fn against a freshly constructed application and closes it.
func withApp(cmd *cobra.Command, opts *options, outW, errW io.Writer, fn func(context.Context, *app.App) error) (err error) {
	ctx := cmd.Context()
	a, err := newApp(ctx, opts, outW, errW)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(ctx, a)
}

func newValidateCommand(opts *options, outW, errW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "validate PATH...",
		Short: "Build every tree file or directory given and report problems",
		Args:  usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, outW, errW, func(ctx context.Context, a *app.App) error {
				return a.Validate(ctx, args)
			})
		},
	}
}

func newDumpCommand(opts *options, outW, errW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "dump PATH",
		Short: "Print the normalized definition of a tree as JSON",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, outW, errW, func(ctx context.Context, a *app.App) error {
				return a.Dump(ctx, args[0])
			})
		},
	}
}

func newRunCommand(opts *options, outW, errW io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [PATH]",
		Short: "Tick a tree from a file or from the catalog",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := app.Target{TreeName: opts.treeName}
			if len(args) == 1 {
				target.Path = args[0]
			}
			if (target.Path == "") == (target.TreeName == "") {
				return usageError(errors.New("run needs exactly one of PATH or --tree"))
			}
			return withApp(cmd, opts, outW, errW, func(ctx context.Context, a *app.App) error {
				return a.Run(ctx, target)
			})
		},
	}
	cmd.Flags().IntVar(&opts.ticks, "ticks", 0, "Number of ticks. 0 ticks until the tree stops running.")
	cmd.Flags().DurationVar(&opts.interval, "interval", 100*time.Millisecond, "Delay between ticks.")
	cmd.Flags().IntVar(&opts.healthcheckPort, "healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "Print the status of every ticked node after each tick.")
	cmd.Flags().StringSliceVar(&opts.watch, "watch", nil, "Trace only these node addresses and their subtrees, e.g. guard.sequence[0]. Implies --trace.")
	cmd.Flags().StringVar(&opts.treeName, "tree", "", "Run the catalog tree with this name instead of a file.")
	return cmd
}

func newCatalogCommand(opts *options, outW, errW io.Writer) *cobra.Command {
	requireDB := func(*cobra.Command, []string) error {
		if opts.dbPath == "" {
			return usageError(errors.New("catalog commands require --db"))
		}
		return nil
	}

	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the SQLite tree catalog",
	}

	importCmd := &cobra.Command{
		Use:     "import PATH...",
		Short:   "Store trees from files or directories under their names",
		Args:    usageArgs(cobra.MinimumNArgs(1)),
		PreRunE: requireDB,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, outW, errW, func(ctx context.Context, a *app.App) error {
				return a.ImportTrees(ctx, args)
			})
		},
	}

	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List stored trees",
		Args:    usageArgs(cobra.NoArgs),
		PreRunE: requireDB,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, outW, errW, func(ctx context.Context, a *app.App) error {
				return a.ListTrees(ctx)
			})
		},
	}

	deleteCmd := &cobra.Command{
		Use:     "delete NAME",
		Short:   "Remove a stored tree",
		Args:    usageArgs(cobra.ExactArgs(1)),
		PreRunE: requireDB,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, outW, errW, func(ctx context.Context, a *app.App) error {
				return a.DeleteTree(ctx, args[0])
			})
		},
	}

	catalogCmd.AddCommand(importCmd, listCmd, deleteCmd)
	return catalogCmd
}
