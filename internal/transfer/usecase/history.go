package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/gotransfer/internal/pkg/goerror"
	"github.com/shandysiswandi/gotransfer/internal/transfer/entity"
)

type GetHistoryInput struct {
	TransferID int64 `validate:"required,gt=0"`
}

type GetHistoryOutput struct {
	Transfer entity.TransferRequest
	// Entries are in ascending (created_at, id) order.
	Entries []entity.HistoryEntry
}

// GetHistory returns a transfer header with its full audit trail.
func (s *Usecase) GetHistory(ctx context.Context, in GetHistoryInput) (*GetHistoryOutput, error) {
	ctx, span := s.startSpan(ctx, "GetHistory")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	tr, err := s.repoDB.GetTransfer(ctx, in.TransferID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "transfer not found", "transfer_id", in.TransferID)
		return nil, goerror.NewBusiness("transfer not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get transfer", "transfer_id", in.TransferID, "error", err)
		return nil, goerror.NewServer(err)
	}

	entries, err := s.repoDB.ListHistory(ctx, tr.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list transfer history", "transfer_id", tr.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &GetHistoryOutput{Transfer: *tr, Entries: entries}, nil
}
