package cli

import (
	"github.com/spf13/cobra"

	"github.com/rshade/peoplegrid/internal/logging"
)

// setupLogging configures logging based on config file, environment, and CLI flags.
// The interactive browser always logs to a file so log lines cannot corrupt the screen.
func setupLogging(cmd *cobra.Command, app *appState) logging.Result {
	lc := app.cfg.Logging
	interactive := cmd.Name() == browseCmdName

	if app.debug {
		lc.Level = "debug"
		lc.Format = logging.FormatConsole
		if !interactive {
			lc.File = ""
		}
	}
	if interactive {
		lc.File = app.cfg.DefaultLogFile()
	}

	result := logging.NewLogger(lc.ToLoggingConfig(), cmd.ErrOrStderr())
	logger = logging.ComponentLogger(result.Logger, "cli")

	if result.UsingFile && !interactive {
		logging.PrintLogPathMessage(cmd.ErrOrStderr(), result.FilePath)
	} else if result.FallbackUsed {
		logging.PrintFallbackWarning(cmd.ErrOrStderr(), result.FallbackReason)
	}

	ctx := cmd.Context()
	traceID := logging.GetOrGenerateTraceID(ctx)
	ctx = logging.ContextWithTraceID(ctx, traceID)
	ctx = logger.WithContext(ctx)
	cmd.SetContext(ctx)

	logger.Debug().Ctx(ctx).Str("command", cmd.Name()).Msg("command started")

	return result
}

// cleanupLogging closes the log file handle.
func cleanupLogging(logResult *logging.Result) error {
	if logResult != nil {
		return logResult.Close()
	}
	return nil
}
