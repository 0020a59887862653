// Command totem-admin inspects and clears the Redis state written by the
// totem service: operator sessions, delegated token sets, pending silent
// redirects and cached list ids.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/target/totem-api/config"
	"github.com/target/totem-api/internal/bootstrap"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var errAborted = errors.New("aborted by user")

type command struct {
	description string
	run         func(cc *commandContext, args []string) error
}

// commandContext carries what every subcommand needs. Streams are fields so
// tests can drive commands without touching the process stdio.
type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	In     io.Reader
	Out    io.Writer
}

var commands = map[string]command{
	"list-keys": {
		description: "Inspect session, token, redirect and list id keys in Redis",
		run:         runListKeys,
	},
	"clear-keys": {
		description: "Delete session, token, redirect or list id keys from Redis",
		run:         runClearKeys,
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code) //nolint:forbidigo // exit status is the CLI's contract with shell scripts
}

func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	logger := bootstrap.ConfigureLogger(errOut, config.LoggingConfig{})

	if len(args) == 0 {
		_ = printUsage(errOut)
		return exitUsage
	}
	name := args[0]
	cmd, ok := commands[name]
	if !ok {
		_ = writef(errOut, "unknown command %q\n\n", name)
		_ = printUsage(errOut)
		return exitUsage
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(ctx, "load config", "error", err)
		return exitError
	}

	cc := &commandContext{Ctx: ctx, Logger: logger, Config: cfg, In: in, Out: out}
	if err := cmd.run(cc, args[1:]); err != nil {
		logger.ErrorContext(ctx, "command failed", "command", name, "error", err)
		return exitError
	}
	return exitOK
}

func printUsage(w io.Writer) error {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)

	var b strings.Builder
	b.WriteString("Usage: totem-admin <command> [flags]\n\nAvailable commands:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "  %-24s %s\n", name, commands[name].description)
	}
	return write(w, b.String())
}

// confirmation describes a destructive action for the y/N prompt.
type confirmation struct {
	Action  string
	Target  string
	Warning string
	// Skip bypasses the prompt for --yes and --dry-run.
	Skip bool
}

func confirmAction(in io.Reader, out io.Writer, c confirmation) error {
	if c.Skip {
		return nil
	}
	if err := writef(out, "%s\nAbout to %s for %s.\nContinue? [y/N]: ", c.Warning, c.Action, c.Target); err != nil {
		return fmt.Errorf("print confirmation prompt: %w", err)
	}
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: read confirmation: %w", errAborted, err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return nil
	default:
		return errAborted
	}
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func write(w io.Writer, args ...any) error {
	_, err := fmt.Fprint(w, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}
