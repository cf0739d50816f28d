package usecase

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/gotransfer/internal/pkg/clock"
	"github.com/shandysiswandi/gotransfer/internal/pkg/config"
	"github.com/shandysiswandi/gotransfer/internal/pkg/goroutine"
	"github.com/shandysiswandi/gotransfer/internal/pkg/instrument"
	"github.com/shandysiswandi/gotransfer/internal/pkg/otp"
	"github.com/shandysiswandi/gotransfer/internal/pkg/uid"
	"github.com/shandysiswandi/gotransfer/internal/pkg/validator"
	"github.com/shandysiswandi/gotransfer/internal/pkg/valueobject"
	"github.com/shandysiswandi/gotransfer/internal/shared/provider"
	"github.com/shandysiswandi/gotransfer/internal/transfer/entity"
)

type TransferStatusEvent struct {
	TransferID   int64
	AccountID    int64
	Status       entity.TransferStatus
	Outcome      entity.Outcome
	Amount       string
	SourceTag    string
	ErrorMessage string
	OccurredAt   time.Time
}

// ArchiveDocument is the full audit record of a finished transfer.
type ArchiveDocument struct {
	Transfer   entity.TransferRequest
	Entries    []entity.HistoryEntry
	ArchivedAt time.Time
}

type repoMessaging interface {
	PublishTransferStatus(ctx context.Context, msg TransferStatusEvent) error
}

type repoArchive interface {
	ArchiveTransfer(ctx context.Context, doc ArchiveDocument) error
}

type repoDB interface {
	GetAccount(ctx context.Context, id int64) (*entity.Account, error)
	GetAccountByExternalUserID(ctx context.Context, externalUserID string) (*entity.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*entity.Account, error)
	UpdateAccountSession(ctx context.Context, id int64, token string, expiry time.Time) error

	GetTransfer(ctx context.Context, id int64) (*entity.TransferRequest, error)
	FindPendingTransfer(ctx context.Context, key entity.DuplicateKey) (*entity.TransferRequest, error)
	FindLatestOpenTransfer(ctx context.Context, key entity.DuplicateKey) (*entity.TransferRequest, error)
	ListHistory(ctx context.Context, transferID int64) ([]entity.HistoryEntry, error)

	CreateTransfer(ctx context.Context, tr entity.TransferRequest, entry entity.HistoryEntry) error
	RecordResponse(ctx context.Context, transferID int64, payload valueobject.JSONMap, entry entity.HistoryEntry) error
	TransitionTransfer(ctx context.Context, tr entity.Transition) error
}

type providerAPI interface {
	Authenticate(ctx context.Context, email, password string) (provider.Session, error)
	ExecuteInternalTransfer(ctx context.Context, token string, body provider.TransferBody) (*provider.Response, error)
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	repoArchive   repoArchive
	provider      providerAPI
	otp           otp.Generator
	validator     validator.Validator
	cfg           config.Config
	clock         clock.Clocker
	uid           uid.NumberID
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager
	outcomes      metric.Int64Counter
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	// RepoArchive is optional; finished transfers are not archived without it.
	RepoArchive repoArchive
	Provider    providerAPI
	OTP         otp.Generator
	Validator   validator.Validator
	Config      config.Config
	Clock       clock.Clocker
	UID         uid.NumberID
	Instrument  instrument.Instrumentation
	Goroutine   *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	outcomes, err := dep.Instrument.Meter("transfer.usecase").Int64Counter(
		"transfer.execute.outcomes",
		metric.WithDescription("Number of transfer executions by outcome"),
	)
	if err != nil {
		slog.Error("failed to create transfer outcome counter", "error", err)
	}

	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		repoArchive:   dep.RepoArchive,
		provider:      dep.Provider,
		otp:           dep.OTP,
		validator:     dep.Validator,
		cfg:           dep.Config,
		clock:         dep.Clock,
		uid:           dep.UID,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
		outcomes:      outcomes,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("transfer.usecase").Start(ctx, name)
}
