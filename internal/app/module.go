package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/gotransfer/internal/transfer"
	"github.com/shandysiswandi/gotransfer/internal/verification"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.transfer.enabled") {
		if err := transfer.New(transfer.Dependency{
			DBConn:     a.dbConn,
			Publisher:  a.publisher,
			Storage:    a.storage,
			Command:    a.router,
			Provider:   a.provider,
			OTP:        a.totp,
			Goroutine:  a.goroutine,
			Config:     a.config,
			Instrument: a.ins,
			Clock:      a.clock,
			UID:        a.uid,
			Validator:  a.validator,
		}); err != nil {
			slog.Error("failed to init module transfer", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.verification.enabled") {
		if err := verification.New(verification.Dependency{
			DBConn:     a.dbConn,
			CacheConn:  a.cacheConn,
			Command:    a.router,
			Provider:   a.provider,
			Dialer:     a.dialer,
			Config:     a.config,
			Instrument: a.ins,
			Clock:      a.clock,
			UID:        a.uid,
			Validator:  a.validator,
		}); err != nil {
			slog.Error("failed to init module verification", "error", err)
			os.Exit(1)
		}
	}
}
