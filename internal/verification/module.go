package verification

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/shandysiswandi/gotransfer/internal/pkg/clock"
	"github.com/shandysiswandi/gotransfer/internal/pkg/command"
	"github.com/shandysiswandi/gotransfer/internal/pkg/config"
	"github.com/shandysiswandi/gotransfer/internal/pkg/instrument"
	"github.com/shandysiswandi/gotransfer/internal/pkg/mailbox"
	"github.com/shandysiswandi/gotransfer/internal/pkg/uid"
	"github.com/shandysiswandi/gotransfer/internal/pkg/validator"
	"github.com/shandysiswandi/gotransfer/internal/shared/provider"
	"github.com/shandysiswandi/gotransfer/internal/verification/inbound"
	"github.com/shandysiswandi/gotransfer/internal/verification/outbound/cache"
	"github.com/shandysiswandi/gotransfer/internal/verification/outbound/db"
	"github.com/shandysiswandi/gotransfer/internal/verification/outbound/mail"
	"github.com/shandysiswandi/gotransfer/internal/verification/usecase"
)

type Dependency struct {
	DBConn *pgxpool.Pool `validate:"required"`
	// CacheConn is optional; requests are kept in process memory without it.
	CacheConn  *redis.Client
	Command    *command.Router            `validate:"required"`
	Provider   *provider.Client           `validate:"required"`
	Dialer     mailbox.Dialer             `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	ttl := dep.Config.GetMinute("modules.verification.request_ttl_minutes")

	var store cache.Store
	if dep.CacheConn != nil {
		store = cache.NewRedis(dep.CacheConn, ttl, dep.Instrument)
	} else {
		store = cache.NewMemory(dep.Clock, ttl)
	}

	uc := usecase.New(usecase.Dependency{
		RepoDB:     db.NewDB(dep.DBConn, dep.Instrument),
		RepoStore:  store,
		RepoMail:   mail.NewMail(dep.Dialer, dep.Instrument),
		Provider:   dep.Provider,
		Validator:  dep.Validator,
		Config:     dep.Config,
		Clock:      dep.Clock,
		UID:        dep.UID,
		Instrument: dep.Instrument,
	})

	inbound.RegisterCommand(dep.Command, uc)

	return nil
}
