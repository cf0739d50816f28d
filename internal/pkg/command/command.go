// Package command adapts cobra commands to application handlers.
//
// A handler returns a payload that is written to stdout as a JSON envelope,
// or an error that is written to stderr and turned into a process exit code.
package command

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shandysiswandi/gotransfer/internal/pkg/config"
	"github.com/shandysiswandi/gotransfer/internal/pkg/goerror"
	"github.com/shandysiswandi/gotransfer/internal/pkg/instrument"
	"github.com/shandysiswandi/gotransfer/internal/pkg/uid"
	"github.com/shandysiswandi/gotransfer/internal/pkg/validator"
)

// Exit codes returned for failed commands.
const (
	ExitServer     = 1
	ExitValidation = 2
	ExitBusiness   = 3
)

type errorResponse struct {
	Message string            `json:"message"`
	Code    string            `json:"code,omitempty"`
	Error   map[string]string `json:"error,omitempty"`
}

type successResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// Handler is the application-style handler used by this router.
type Handler func(r *Request) (any, error)

// Middleware wraps a Handler.
type Middleware func(Handler) Handler

// Config holds dependencies required to build a Router.
type Config struct {
	Config config.Config
	// UUID generates correlation ids when none is given on the command line.
	UUID       uid.StringID
	Instrument instrument.Instrumentation
}

// Router registers handlers as cobra commands under a root command.
type Router struct {
	root *cobra.Command
	mws  []Middleware
}

// Group is a parent command without its own handler.
type Group struct {
	cmd    *cobra.Command
	router *Router
}

// ExitError carries the exit code of a failed command. Its message was
// already written to stderr.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode returns the process exit code for an error returned by cobra.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	// flag and argument errors raised by cobra itself
	return ExitValidation
}

// NewRouter installs the standard middleware chain for every command
// registered through it.
func NewRouter(root *cobra.Command, cfg Config) *Router {
	root.SilenceErrors = true
	root.SilenceUsage = true
	root.PersistentFlags().String(FlagCorrelationID, "", "correlation id attached to every log line")

	return &Router{
		root: root,
		mws: []Middleware{
			middlewareRecoverer,
			middlewareCorrelationID(cfg.UUID),
			middlewareObservability(cfg.Config, cfg.Instrument),
		},
	}
}

// Group creates (or reuses) a parent command named use.
func (r *Router) Group(use, short string) *Group {
	for _, c := range r.root.Commands() {
		if c.Name() == use {
			return &Group{cmd: c, router: r}
		}
	}

	cmd := &cobra.Command{Use: use, Short: short}
	r.root.AddCommand(cmd)
	return &Group{cmd: cmd, router: r}
}

// Handle attaches h to cmd and adds cmd under the group.
func (g *Group) Handle(cmd *cobra.Command, h Handler, mws ...Middleware) {
	g.router.bind(cmd, h, mws...)
	g.cmd.AddCommand(cmd)
}

// Group creates a nested group.
func (g *Group) Group(use, short string) *Group {
	cmd := &cobra.Command{Use: use, Short: short}
	g.cmd.AddCommand(cmd)
	return &Group{cmd: cmd, router: g.router}
}

// Handle attaches h to cmd and adds cmd under the root.
func (r *Router) Handle(cmd *cobra.Command, h Handler, mws ...Middleware) {
	r.bind(cmd, h, mws...)
	r.root.AddCommand(cmd)
}

func (r *Router) bind(cmd *cobra.Command, h Handler, mws ...Middleware) {
	handler := Chain(h, append(r.mws, mws...)...)

	cmd.RunE = func(c *cobra.Command, args []string) error {
		resp, err := handler(&Request{cmd: c, args: args, ctx: c.Context()})
		if err != nil {
			writeError(c.ErrOrStderr(), err)
			return &ExitError{Code: exitCodeOf(err), Err: err}
		}

		msg := "command completed"
		if m, ok := resp.(interface{ Message() string }); ok {
			msg = m.Message()
		}
		writeJSON(c.OutOrStdout(), successResponse{Message: msg, Data: resp})
		return nil
	}
}

// Chain applies mws so that the first one is the outermost.
func Chain(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func exitCodeOf(err error) int {
	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		return ExitServer
	}
	switch gerr.Type() {
	case goerror.TypeValidation:
		return ExitValidation
	case goerror.TypeBusiness:
		return ExitBusiness
	default:
		return ExitServer
	}
}

func writeError(w io.Writer, err error) {
	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		writeJSON(w, errorResponse{Message: "Internal error"})
		return
	}

	resp := errorResponse{Message: gerr.Msg(), Code: gerr.Code().String()}

	var errValidate validator.V10ValidationError
	if errors.As(err, &errValidate) {
		resp.Error = errValidate.Values()
	} else if len(gerr.Fields()) > 0 {
		resp.Error = gerr.Fields()
	}

	writeJSON(w, resp)
}

func writeJSON(w io.Writer, data any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Error("command: failed to encode output to json", "error", err)
	}
}
