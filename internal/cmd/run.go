package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"dirsort/internal/config"
	"dirsort/internal/log"
	"dirsort/internal/sorter"
	"dirsort/internal/tui"
	"dirsort/pkg/types"

	"github.com/mattn/go-isatty"
)

const confirmPrompt = "Run these moves now? [y/N]: "

func run(ctx context.Context, s settings, streams IO, logger *log.Logger) error {
	store, err := config.NewStore(s.Config)
	if err != nil {
		return err
	}

	res, err := sorter.Run(ctx, sorter.Options{
		Store:   store,
		Fs:      streams.Fs,
		Logger:  logger,
		Out:     streams.Out,
		DryRun:  s.DryRun,
		Freeze:  s.Freeze,
		Quiet:   s.Quiet,
		Confirm: newConfirm(streams),
	})
	if err != nil {
		return err
	}
	logger.With(log.F("run_id", res.RunID), log.F("stage", res.Stage.String())).Debug("Run complete")
	return nil
}

func configure(s settings, streams IO) error {
	store, err := config.NewStore(s.Config)
	if err != nil {
		return err
	}
	if !store.Exists() {
		fmt.Fprintf(streams.Out, "Config file not found: %s\n", store.Path())
		fmt.Fprintln(streams.Out, "Create the config file first, then run configure mode again.")
		return nil
	}

	saved, err := tui.Run(store, streams.Fs, streams.In, streams.Out)
	if err != nil {
		return err
	}
	if saved {
		fmt.Fprintln(streams.Out, "Config saved. Run the sorter when you are ready!")
	}
	return nil
}

// newConfirm asks the operator on streams.In whether to carry out a dry-run
// plan. Without a terminal there is nobody to ask and the plan is declined.
func newConfirm(streams IO) func(*types.Plan) bool {
	return func(*types.Plan) bool {
		if streams.IsTerminal == nil || !streams.IsTerminal() {
			return false
		}
		return confirm(streams.In, streams.Out)
	}
}

// confirm reads one answer line and accepts y or yes in any case.
func confirm(in io.Reader, out io.Writer) bool {
	fmt.Fprint(out, confirmPrompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func isTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
