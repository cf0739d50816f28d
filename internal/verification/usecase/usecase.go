package usecase

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/gotransfer/internal/pkg/clock"
	"github.com/shandysiswandi/gotransfer/internal/pkg/config"
	"github.com/shandysiswandi/gotransfer/internal/pkg/goerror"
	"github.com/shandysiswandi/gotransfer/internal/pkg/instrument"
	"github.com/shandysiswandi/gotransfer/internal/pkg/uid"
	"github.com/shandysiswandi/gotransfer/internal/pkg/validator"
	"github.com/shandysiswandi/gotransfer/internal/shared/provider"
	"github.com/shandysiswandi/gotransfer/internal/verification/entity"
)

type repoDB interface {
	ListMailboxes(ctx context.Context, enabledOnly bool) ([]entity.Mailbox, error)
	CreateMailbox(ctx context.Context, mb entity.Mailbox) error
}

// repoStore holds at most one Request per normalized e-mail.
type repoStore interface {
	Get(ctx context.Context, email string) (*entity.Request, error)
	// Put stores req and reports whether a previous request was replaced.
	Put(ctx context.Context, req entity.Request) (replaced bool, err error)
	Delete(ctx context.Context, email string) error
}

type repoMail interface {
	Search(ctx context.Context, mb entity.Mailbox, c entity.SearchCriteria) ([]entity.Message, error)
}

type providerAPI interface {
	RequestVerificationCode(ctx context.Context, email, codeType string) error
}

type Usecase struct {
	repoDB    repoDB
	repoStore repoStore
	repoMail  repoMail
	provider  providerAPI
	validator validator.Validator
	cfg       config.Config
	clock     clock.Clocker
	uid       uid.NumberID
	ins       instrument.Instrumentation
}

type Dependency struct {
	RepoDB     repoDB
	RepoStore  repoStore
	RepoMail   repoMail
	Provider   providerAPI
	Validator  validator.Validator
	Config     config.Config
	Clock      clock.Clocker
	UID        uid.NumberID
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:    dep.RepoDB,
		repoStore: dep.RepoStore,
		repoMail:  dep.RepoMail,
		provider:  dep.Provider,
		validator: dep.Validator,
		cfg:       dep.Config,
		clock:     dep.Clock,
		uid:       dep.UID,
		ins:       dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("verification.usecase").Start(ctx, name)
}

// providerFailure converts a failed provider call into an application error.
// Transport problems are server errors; everything else is reported back to
// the caller with the provider's own message.
func providerFailure(ctx context.Context, op string, err error) error {
	pe, ok := provider.AsError(err)
	if !ok || pe.Kind == provider.KindTransport {
		slog.ErrorContext(ctx, "failed to call provider "+op, "error", err)
		return goerror.NewServer(err)
	}

	slog.WarnContext(ctx, "provider refused "+op, "kind", pe.Kind.String(), "status", pe.StatusCode, "message", pe.Message)
	if pe.Kind == provider.KindUnauthorized {
		return goerror.NewBusiness(pe.Detail(), goerror.CodeUnauthorized)
	}
	return goerror.NewBusiness(pe.Detail(), goerror.CodeInvalidInput)
}
