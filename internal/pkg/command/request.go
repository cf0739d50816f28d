package command

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/shandysiswandi/gotransfer/internal/pkg/goerror"
)

// Request wraps one command invocation.
type Request struct {
	cmd  *cobra.Command
	args []string
	ctx  context.Context
}

func (r *Request) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// WithContext returns a shallow copy of r carrying ctx.
func (r *Request) WithContext(ctx context.Context) *Request {
	r2 := *r
	r2.ctx = ctx
	return &r2
}

// Path is the full command path, e.g. "gotransfer transfer execute".
func (r *Request) Path() string {
	return r.cmd.CommandPath()
}

func (r *Request) Arg(i int) string {
	if i < 0 || i >= len(r.args) {
		return ""
	}
	return strings.TrimSpace(r.args[i])
}

func (r *Request) ArgInt64(i int) (int64, error) {
	value, err := strconv.ParseInt(r.Arg(i), 10, 64)
	if err != nil {
		return 0, goerror.NewInvalidFormat("argument must be an integer value")
	}
	return value, nil
}

func (r *Request) GetString(name string) string {
	v, _ := r.cmd.Flags().GetString(name)
	return strings.TrimSpace(v)
}

func (r *Request) GetBool(name string) bool {
	v, _ := r.cmd.Flags().GetBool(name)
	return v
}

func (r *Request) GetInt(name string) int {
	v, _ := r.cmd.Flags().GetInt(name)
	return v
}

func (r *Request) GetInt64(name string) int64 {
	v, _ := r.cmd.Flags().GetInt64(name)
	return v
}

// flags lists the flags set explicitly on the command line.
func (r *Request) flags() map[string]string {
	out := make(map[string]string)
	r.cmd.Flags().Visit(func(f *pflag.Flag) {
		out[f.Name] = f.Value.String()
	})
	return out
}
