package app

import (
	"github.com/spf13/cobra"

	"github.com/shandysiswandi/gotransfer/internal/pkg/command"
	"github.com/shandysiswandi/gotransfer/internal/pkg/goerror"
	"github.com/shandysiswandi/gotransfer/internal/pkg/migration"
)

type migrateResponse struct {
	Version uint `json:"version"`
}

func (migrateResponse) Message() string { return "schema is up to date" }

func (a *App) initCommand() {
	a.root = &cobra.Command{
		Use:   "gotransfer",
		Short: "Execute platform transfers and retrieve e-mailed verification codes",
	}

	a.router = command.NewRouter(a.root, command.Config{
		Config:     a.config,
		UUID:       a.uuid,
		Instrument: a.ins,
	})

	up := &cobra.Command{Use: "up", Short: "Apply every pending schema migration", Args: cobra.NoArgs}
	a.router.Group("migrate", "Manage the database schema").Handle(up, a.migrateUp)
}

func (a *App) migrateUp(*command.Request) (any, error) {
	version, err := migration.Up(a.config.GetString("database.url"))
	if err != nil {
		return nil, goerror.NewServer(err)
	}

	return migrateResponse{Version: version}, nil
}
