package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"dirsort/internal/config"
	"dirsort/internal/errors"
	"dirsort/internal/lock"
	"dirsort/internal/log"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix = "DIRSORT"

	dryRunFlagName    = "dry-run"
	quietFlagName     = "quiet"
	configureFlagName = "configure"
	freezeFlagName    = "freeze"
	configFlagName    = "config"
	logLevelFlagName  = "log-level"
	logFileFlagName   = "log-file"
	logJSONFlagName   = "log-json"

	defaultLogLevel = "info"
)

var version = "dev"

// IO holds the streams and filesystem a command works against.
type IO struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
	Fs     afero.Fs
	// IsTerminal reports whether In is an interactive terminal. Confirmation
	// prompts are declined when it returns false.
	IsTerminal func() bool
}

// StdIO returns the process streams and the OS filesystem.
func StdIO() IO {
	return IO{
		In:         os.Stdin,
		Out:        os.Stdout,
		ErrOut:     os.Stderr,
		Fs:         afero.NewOsFs(),
		IsTerminal: func() bool { return isTerminal(os.Stdin) },
	}
}

// NewRootCmd creates the dirsort command. Every flag can also be set through
// the environment, e.g. DIRSORT_CONFIG or DIRSORT_DRY_RUN.
func NewRootCmd(streams IO) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	v.SetDefault(logLevelFlagName, defaultLogLevel)

	rootCmd := &cobra.Command{
		Use:   "dirsort",
		Short: "Sort the files of one folder into another",
		Long: `dirsort moves or copies every file below Target_Dir into Sorted_Dir,
grouped by file extension or by creation date. A run is planned in full
before anything is touched, and only one run may work at a time.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(v)
			if err != nil {
				return err
			}
			logger := newLogger(settings, streams.ErrOut)
			defer logger.Close()

			if settings.Configure {
				return configure(settings, streams)
			}
			return run(cmd.Context(), settings, streams, logger)
		},
	}

	flags := rootCmd.Flags()
	flags.Bool(dryRunFlagName, false, "show the plan and ask before touching anything (alias --d-r)")
	flags.BoolP(quietFlagName, "q", false, "only report problems")
	flags.BoolP(configureFlagName, "c", false, "edit the config interactively instead of sorting")
	flags.BoolP(freezeFlagName, "f", false, "hold the run lock without sorting until interrupted")
	flags.String(configFlagName, "", "config file (default is <user config dir>/dirsort/"+config.StoreName+")")
	flags.String(logLevelFlagName, defaultLogLevel, "log level: debug, info, warn or error")
	flags.String(logFileFlagName, "", "also write logs to this file, rotated by size")
	flags.Bool(logJSONFlagName, false, "log one JSON object per line")
	rootCmd.SetGlobalNormalizationFunc(normalizeFlagName)

	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}

	rootCmd.SetIn(streams.In)
	rootCmd.SetOut(streams.Out)
	rootCmd.SetErr(streams.ErrOut)
	return rootCmd
}

// normalizeFlagName maps the short dry-run spelling onto its flag.
func normalizeFlagName(f *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "d-r", "dry_run", "dryrun":
		name = dryRunFlagName
	}
	return pflag.NormalizedName(name)
}

// settings is the resolved view of flags, environment and defaults.
type settings struct {
	DryRun    bool
	Quiet     bool
	Configure bool
	Freeze    bool
	Config    string
	LogLevel  string
	LogFile   string
	LogJSON   bool
}

func loadSettings(v *viper.Viper) (settings, error) {
	s := settings{
		DryRun:    v.GetBool(dryRunFlagName),
		Quiet:     v.GetBool(quietFlagName),
		Configure: v.GetBool(configureFlagName),
		Freeze:    v.GetBool(freezeFlagName),
		Config:    strings.TrimSpace(v.GetString(configFlagName)),
		LogLevel:  v.GetString(logLevelFlagName),
		LogFile:   v.GetString(logFileFlagName),
		LogJSON:   v.GetBool(logJSONFlagName),
	}
	if s.Config == "" {
		path, err := config.DefaultPath()
		if err != nil {
			return s, errors.Wrap(err, "cannot locate the user config directory; pass --config")
		}
		s.Config = path
	}
	s.Config = filepath.Clean(s.Config)
	return s, nil
}

// newLogger builds the run logger. Quiet raises the level to warn so only
// problems reach the terminal.
func newLogger(s settings, w io.Writer) *log.Logger {
	level := s.LogLevel
	if s.Quiet {
		level = "warn"
	}
	opts := []log.Option{log.WithOutput(w), log.WithLevel(level)}
	if s.LogJSON {
		opts = append(opts, log.WithJSON())
	}
	if s.LogFile != "" {
		opts = append(opts, log.WithFile(s.LogFile))
	}
	log.SetDebug(strings.EqualFold(level, "debug"))
	return log.NewLogger(opts...)
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	streams := StdIO()
	if err := NewRootCmd(streams).ExecuteContext(ctx); err != nil {
		fmt.Fprint(streams.ErrOut, explain(err))
		return 1
	}
	return 0
}

// explain turns a fatal error into the message shown to the operator.
func explain(err error) string {
	var b strings.Builder
	switch {
	case errors.IsLockHeld(err):
		b.WriteString(lock.Remediation(err))
	case errors.Is(err, errors.ErrConfigNotFound):
		var cfgErr *errors.ConfigError
		path := ""
		if errors.As(err, &cfgErr) {
			path = cfgErr.Param()
		}
		fmt.Fprintf(&b, "Config file not found: %s\n", path)
		b.WriteString("Create the file manually or run dirsort with -c to set it up interactively.\n")
	case errors.IsInvalidConfig(err):
		var vErr *errors.ValidationError
		if errors.As(err, &vErr) {
			b.WriteString("The config has problems:\n")
			for _, issue := range vErr.Issues {
				fmt.Fprintf(&b, "  %s\n", issue)
			}
		} else {
			fmt.Fprintf(&b, "Error: %v\n", err)
		}
		b.WriteString("Run 'dirsort -c' to fix the config interactively.\n")
	case errors.Is(err, errors.ErrFileAccess):
		fmt.Fprintf(&b, "Error: %v\n", err)
		b.WriteString("Check that this user can read and write Target_Dir and Sorted_Dir.\n")
	default:
		fmt.Fprintf(&b, "Error: %v\n", err)
	}
	return b.String()
}
