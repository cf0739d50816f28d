package inbound

import (
	"context"

	"github.com/shandysiswandi/gotransfer/internal/verification/entity"
	"github.com/shandysiswandi/gotransfer/internal/verification/usecase"
)

type uc interface {
	Send(ctx context.Context, in usecase.SendInput) (*usecase.SendOutput, error)
	Fetch(ctx context.Context, in usecase.FetchInput) (*usecase.FetchOutput, error)
	AddMailbox(ctx context.Context, in usecase.AddMailboxInput) (*entity.Mailbox, error)
	ListMailboxes(ctx context.Context) ([]entity.Mailbox, error)
}
