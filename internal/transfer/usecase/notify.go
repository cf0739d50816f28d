package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/gotransfer/internal/transfer/entity"
)

// notify publishes the terminal status and archives the audit trail in the
// background. Both are best effort.
func (s *Usecase) notify(ctx context.Context, tr entity.TransferRequest, outcome entity.Outcome) {
	ctx = context.WithoutCancel(ctx)

	event := TransferStatusEvent{
		TransferID:   tr.ID,
		AccountID:    tr.AccountID,
		Status:       tr.Status,
		Outcome:      outcome,
		Amount:       tr.Amount,
		SourceTag:    tr.SourceTag,
		ErrorMessage: tr.ErrorMessage,
		OccurredAt:   tr.UpdatedAt,
	}

	if !s.goroutine.Go(ctx, "transfer.publish_status", func(ctx context.Context) error {
		if err := s.repoMessaging.PublishTransferStatus(ctx, event); err != nil {
			slog.WarnContext(ctx, "failed to publish transfer status", "transfer_id", tr.ID, "error", err)
			return err
		}
		return nil
	}) {
		slog.WarnContext(ctx, "transfer status event dropped, background manager closed", "transfer_id", tr.ID)
	}

	if s.repoArchive == nil {
		return
	}

	if !s.goroutine.Go(ctx, "transfer.archive", func(ctx context.Context) error {
		return s.archive(ctx, tr)
	}) {
		slog.WarnContext(ctx, "transfer archive dropped, background manager closed", "transfer_id", tr.ID)
	}
}

func (s *Usecase) archive(ctx context.Context, tr entity.TransferRequest) error {
	ctx, span := s.startSpan(ctx, "archive")
	defer span.End()

	entries, err := s.repoDB.ListHistory(ctx, tr.ID)
	if err != nil {
		slog.WarnContext(ctx, "failed to repo list history for archive", "transfer_id", tr.ID, "error", err)
		return err
	}

	if err := s.repoArchive.ArchiveTransfer(ctx, ArchiveDocument{
		Transfer:   tr,
		Entries:    entries,
		ArchivedAt: s.clock.Now(),
	}); err != nil {
		slog.WarnContext(ctx, "failed to archive transfer", "transfer_id", tr.ID, "error", err)
		return err
	}

	return nil
}
