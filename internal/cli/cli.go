package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/specialistvlad/yangreactor/internal/app"
	"github.com/spf13/cobra"
)

// Version is the release version, set at build time.
var Version = "dev"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, a ...any) *ExitError {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, a...)}
}

var (
	okStyle   = color.New(color.FgGreen, color.Bold)
	failStyle = color.New(color.FgRed, color.Bold)
	headStyle = color.New(color.FgCyan)
)

// options are the flags shared by every command that resolves sources.
type options struct {
	configFile                string
	features                  []string
	semanticVersioning        bool
	errorOnUnsupportedFeature bool
	format                    string
	logFormat                 string
	logLevel                  string
	healthcheckPort           int
	debounce                  time.Duration
}

// NewRootCommand builds the yangreactor command tree. Models go to outW;
// logs, diagnostics and status lines go to errW.
func NewRootCommand(outW, errW io.Writer) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "yangreactor",
		Short: "Resolve YANG statement trees into effective schema models",
		Long: headStyle.Sprint("Usage: yangreactor <command> [options] PATH...") + "\n\n" +
			"yangreactor links, resolves and validates sets of YANG modules written\n" +
			"as HCL, YAML or JSON statement trees, and prints the effective model.\n",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetOut(outW)
	cmd.SetErr(errW)

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "Path to a YAML config file. Flags override its values.")
	flags.StringSliceVarP(&opts.features, "feature", "F", nil, "Supported features as module:feature; module: disables all features of a module. Repeatable.")
	flags.BoolVar(&opts.semanticVersioning, "semver", false, "Check openconfig-version compatibility of imports.")
	flags.BoolVar(&opts.errorOnUnsupportedFeature, "error-on-unsupported-feature", false, "Fail on statements guarded by a disabled feature instead of pruning them.")
	flags.StringVarP(&opts.format, "format", "o", app.FormatText, "Model output format. Options: 'text' or 'json'.")
	flags.StringVar(&opts.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	cmd.AddCommand(
		newResolveCommand(opts, outW, errW),
		newWatchCommand(opts, outW, errW),
		newVersionCommand(outW),
	)
	return cmd
}

func newResolveCommand(opts *options, outW, errW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [PATH...]",
		Short: "Resolve sources once and print the effective model",
		Long: headStyle.Sprint("yangreactor resolve") + "\n\n" +
			"Reads every .hcl, .yaml, .yml and .json source under the given files\n" +
			"and directories, resolves them as one module set and prints the model.\n",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, opts, args)
			if err != nil {
				return err
			}
			a := app.NewApp(cmd.Context(), outW, errW, cfg)
			if err := a.Run(cmd.Context()); err != nil {
				reportFailure(errW, a, err)
				return &ExitError{Code: 1, Message: "resolution failed"}
			}
			return nil
		},
	}
}

func newWatchCommand(opts *options, outW, errW io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [PATH...]",
		Short: "Resolve sources every time they change",
		Long: headStyle.Sprint("yangreactor watch") + "\n\n" +
			"Resolves the sources, then resolves them again whenever a file under\n" +
			"the given paths changes. With --healthcheck-port, /health, /ready and\n" +
			"/metrics are served while watching.\n",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, opts, args)
			if err != nil {
				return err
			}
			a := app.NewApp(cmd.Context(), outW, errW, cfg)
			return a.Watch(cmd.Context(), opts.debounce, func(r app.WatchResult) {
				if len(r.Changed) > 0 {
					headStyle.Fprintf(errW, "→ %s changed\n", strings.Join(r.Changed, ", "))
				}
				if r.Err != nil {
					reportFailure(errW, a, r.Err)
					return
				}
				if err := a.WriteModel(outW, r.Model); err != nil {
					failStyle.Fprintf(errW, "✗ failed to write model: %v\n", err)
					return
				}
				okStyle.Fprintf(errW, "✓ resolved %d modules (%016x)\n", len(r.Model.Modules()), r.Model.Fingerprint())
			})
		},
	}
	cmd.Flags().IntVar(&opts.healthcheckPort, "healthcheck-port", 0, "Port for the HTTP health check and metrics server. 0 is disabled.")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", app.DefaultDebounce, "How long to wait for file changes to settle.")
	return cmd
}

func newVersionCommand(outW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(outW, "yangreactor %s\n", Version)
		},
	}
}

// buildConfig merges the config file, the flags the user set and the
// positional paths, in increasing precedence.
func buildConfig(cmd *cobra.Command, opts *options, args []string) (*app.Config, error) {
	var cfg app.Config
	if opts.configFile != "" {
		fileCfg, err := app.LoadConfigFile(opts.configFile)
		if err != nil {
			return nil, usageError("%v", err)
		}
		cfg = fileCfg
	}

	flags := cmd.Flags()
	if len(args) > 0 {
		cfg.Paths = args
	}
	if flags.Changed("feature") {
		cfg.Features = opts.features
	}
	if flags.Changed("semver") {
		cfg.EnableSemanticVersioning = opts.semanticVersioning
	}
	if flags.Changed("error-on-unsupported-feature") {
		cfg.ErrorOnUnsupportedFeature = opts.errorOnUnsupportedFeature
	}
	if flags.Changed("format") || cfg.Format == "" {
		cfg.Format = opts.format
	}
	if flags.Changed("log-format") || cfg.LogFormat == "" {
		cfg.LogFormat = opts.logFormat
	}
	if flags.Changed("log-level") || cfg.LogLevel == "" {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Lookup("healthcheck-port") != nil && (flags.Changed("healthcheck-port") || cfg.HealthcheckPort == 0) {
		cfg.HealthcheckPort = opts.healthcheckPort
	}

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, usageError("%v", err)
	}
	return config, nil
}

// reportFailure prints the diagnostics of a failed resolution and a status
// line.
func reportFailure(errW io.Writer, a *app.App, err error) {
	if werr := a.WriteDiagnostics(errW, err, 78, !color.NoColor); werr != nil {
		fmt.Fprintln(errW, err)
	}
	failStyle.Fprintln(errW, "✗ resolution failed")
}

// Execute runs the command tree with args.
func Execute(ctx context.Context, outW, errW io.Writer, args []string) error {
	cmd := NewRootCommand(outW, errW)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}
