package command

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/shandysiswandi/gotransfer/internal/pkg/goerror"
	"github.com/shandysiswandi/gotransfer/internal/pkg/stacktrace"
)

func middlewareRecoverer(next Handler) Handler {
	return func(r *Request) (resp any, err error) {
		defer func() {
			if rvr := recover(); rvr != nil {
				paths := stacktrace.InternalPaths(debug.Stack())
				if len(paths) == 0 {
					slog.ErrorContext(r.Context(), "panic on the command trace debug", "because", rvr, "stack", string(debug.Stack()))
				} else {
					slog.ErrorContext(r.Context(), "panic on the command", "because", rvr, "stack", paths)
				}
				resp, err = nil, goerror.NewServer(fmt.Errorf("panic: %v", rvr))
			}
		}()

		return next(r)
	}
}
