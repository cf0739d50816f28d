package transfer

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shandysiswandi/gotransfer/internal/pkg/clock"
	"github.com/shandysiswandi/gotransfer/internal/pkg/command"
	"github.com/shandysiswandi/gotransfer/internal/pkg/config"
	"github.com/shandysiswandi/gotransfer/internal/pkg/goroutine"
	"github.com/shandysiswandi/gotransfer/internal/pkg/instrument"
	"github.com/shandysiswandi/gotransfer/internal/pkg/messaging"
	"github.com/shandysiswandi/gotransfer/internal/pkg/otp"
	"github.com/shandysiswandi/gotransfer/internal/pkg/storage"
	"github.com/shandysiswandi/gotransfer/internal/pkg/uid"
	"github.com/shandysiswandi/gotransfer/internal/pkg/validator"
	"github.com/shandysiswandi/gotransfer/internal/shared/provider"
	"github.com/shandysiswandi/gotransfer/internal/transfer/inbound"
	"github.com/shandysiswandi/gotransfer/internal/transfer/outbound/archive"
	"github.com/shandysiswandi/gotransfer/internal/transfer/outbound/db"
	"github.com/shandysiswandi/gotransfer/internal/transfer/outbound/mq"
	"github.com/shandysiswandi/gotransfer/internal/transfer/usecase"
)

type Dependency struct {
	DBConn    *pgxpool.Pool       `validate:"required"`
	Publisher messaging.Publisher `validate:"required"`
	// Storage is optional; finished transfers are archived only when it is
	// set and modules.transfer.archive.bucket is not empty.
	Storage    storage.Storage
	Command    *command.Router            `validate:"required"`
	Provider   *provider.Client           `validate:"required"`
	OTP        otp.Generator              `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
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

	ucDep := usecase.Dependency{
		RepoDB:        db.NewDB(dep.DBConn, dep.Instrument),
		RepoMessaging: mq.NewMessaging(dep.Publisher, dep.Instrument),
		Provider:      dep.Provider,
		OTP:           dep.OTP,
		Validator:     dep.Validator,
		Config:        dep.Config,
		Clock:         dep.Clock,
		UID:           dep.UID,
		Instrument:    dep.Instrument,
		Goroutine:     dep.Goroutine,
	}

	bucket := dep.Config.GetString("modules.transfer.archive.bucket")
	if dep.Storage != nil && bucket != "" {
		ucDep.RepoArchive = archive.NewArchive(dep.Storage, bucket, dep.Instrument)
	}

	inbound.RegisterCommand(dep.Command, usecase.New(ucDep))

	return nil
}
