package cli

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	charmlog "github.com/charmbracelet/log"

	"github.com/kilnhq/kiln/internal"
)

// Represents the root command for the kiln CLI.
var RootCmd struct {
	Quiet   bool       `short:"q" help:"Suppress informational output."`
	Verbose bool       `short:"v" help:"Enable verbose output."`
	Debug   bool       `short:"d" help:"Enable debug output."`
	Build   BuildCmd   `cmd:"" help:"Render a recipe and execute the plan against a build backend."`
	Render  RenderCmd  `cmd:"" help:"Render a recipe and print the plan without executing it."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(internal.Name),
		kong.Description("Renders parameterized image-build recipes into concrete plans and executes them against a build backend."),
		kong.UsageOnError(),
		kong.Vars{
			"version": internal.VersionString(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	configureLogger()

	return kongCtx.Run()
}

// Configures the global logger based on CLI flags.
//
// Flags override build-time defaults set via linker flags.
func configureLogger() {
	logger, ok := slog.Default().Handler().(*charmlog.Logger)
	if !ok {
		return // Default handler is not ours, nothing to configure
	}

	switch {
	case RootCmd.Debug || internal.IsDebug():
		logger.SetLevel(charmlog.DebugLevel)
	case RootCmd.Quiet || internal.IsQuiet():
		logger.SetLevel(charmlog.WarnLevel)
	default:
		logger.SetLevel(charmlog.InfoLevel)
	}

	if RootCmd.Verbose || internal.IsVerbose() {
		logger.SetReportTimestamp(true)
	}
}
