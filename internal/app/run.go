package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/gotransfer/internal/pkg/command"
)

// Run executes the command named by the process arguments and returns the
// process exit code. SIGINT and SIGTERM cancel the running command.
func (a *App) Run() int {
	err := a.root.ExecuteContext(a.ctx)

	// handler failures were already written as JSON
	var exitErr *command.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		a.root.PrintErrln("Error:", err.Error())
	}

	return command.ExitCode(err)
}

// Stop waits for background work and closes resources.
func (a *App) Stop(ctx context.Context) {
	if a.cancel != nil {
		a.cancel()
	}

	slog.DebugContext(ctx, "waiting for all goroutine to finish")
	if err := a.goroutine.Wait(); err != nil {
		slog.ErrorContext(ctx, "error from goroutines executions", "error", err)
	}

	for _, closer := range a.closers {
		if err := closer.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", closer.name, "error", err)
		}
	}
}
