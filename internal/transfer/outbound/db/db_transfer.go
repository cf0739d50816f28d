package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/shandysiswandi/gotransfer/internal/transfer/entity"
)

const transferColumns = `id, account_id, original_destination_kind, original_destination_value,
	destination_kind, destination_value, amount, source_tag, forced, status, second_factor_code,
	matched_account_id, remarks, request_payload, response_payload, error_message,
	created_at, updated_at, completed_at`

func scanTransfer(row pgx.Row) (*entity.TransferRequest, error) {
	var (
		t           entity.TransferRequest
		matched     *int64
		completedAt *time.Time
	)
	if err := row.Scan(&t.ID, &t.AccountID, &t.OriginalDestinationKind, &t.OriginalDestinationValue,
		&t.DestinationKind, &t.DestinationValue, &t.Amount, &t.SourceTag, &t.Forced, &t.Status,
		&t.SecondFactorCode, &matched, &t.Remarks, &t.RequestPayload, &t.ResponsePayload,
		&t.ErrorMessage, &t.CreatedAt, &t.UpdatedAt, &completedAt); err != nil {
		return nil, err
	}
	if matched != nil {
		t.MatchedAccountID = *matched
	}
	if completedAt != nil {
		t.CompletedAt = *completedAt
	}
	return &t, nil
}

func (s *DB) GetTransfer(ctx context.Context, id int64) (_ *entity.TransferRequest, err error) {
	ctx, span := s.startSpan(ctx, "GetTransfer")
	defer func() { s.endSpan(span, err) }()

	t, err := scanTransfer(s.conn.QueryRow(ctx, `SELECT `+transferColumns+` FROM transfer_requests WHERE id = $1`, id))
	if err != nil {
		return nil, s.mapError(err)
	}
	return t, nil
}

// FindPendingTransfer returns the pending request for key, oldest first.
func (s *DB) FindPendingTransfer(ctx context.Context, key entity.DuplicateKey) (_ *entity.TransferRequest, err error) {
	ctx, span := s.startSpan(ctx, "FindPendingTransfer")
	defer func() { s.endSpan(span, err) }()

	t, err := scanTransfer(s.conn.QueryRow(ctx, `SELECT `+transferColumns+` FROM transfer_requests
		WHERE account_id = $1 AND destination_kind = $2 AND destination_value = $3
			AND amount = $4 AND source_tag = $5 AND status = $6
		ORDER BY created_at ASC, id ASC LIMIT 1`,
		key.AccountID, key.DestinationKind, key.DestinationValue, key.Amount, key.SourceTag,
		entity.TransferStatusPending))
	if err != nil {
		return nil, s.mapError(err)
	}
	return t, nil
}

// FindLatestOpenTransfer returns the newest pending or processing request for key.
func (s *DB) FindLatestOpenTransfer(ctx context.Context, key entity.DuplicateKey) (_ *entity.TransferRequest, err error) {
	ctx, span := s.startSpan(ctx, "FindLatestOpenTransfer")
	defer func() { s.endSpan(span, err) }()

	t, err := scanTransfer(s.conn.QueryRow(ctx, `SELECT `+transferColumns+` FROM transfer_requests
		WHERE account_id = $1 AND destination_kind = $2 AND destination_value = $3
			AND amount = $4 AND source_tag = $5 AND status = ANY($6)
		ORDER BY created_at DESC, id DESC LIMIT 1`,
		key.AccountID, key.DestinationKind, key.DestinationValue, key.Amount, key.SourceTag,
		statusArray(entity.TransferStatusPending, entity.TransferStatusProcessing)))
	if err != nil {
		return nil, s.mapError(err)
	}
	return t, nil
}

func (s *DB) ListHistory(ctx context.Context, transferID int64) (_ []entity.HistoryEntry, err error) {
	ctx, span := s.startSpan(ctx, "ListHistory")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `SELECT id, transfer_id, status, message, details, created_at
		FROM transfer_histories WHERE transfer_id = $1 ORDER BY created_at ASC, id ASC`, transferID)
	if err != nil {
		return nil, s.mapError(err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.HistoryEntry, error) {
		var h entity.HistoryEntry
		err := row.Scan(&h.ID, &h.TransferID, &h.Status, &h.Message, &h.Details, &h.CreatedAt)
		return h, err
	})
	if err != nil {
		return nil, s.mapError(err)
	}

	return entries, nil
}

func statusArray(statuses ...entity.TransferStatus) []int16 {
	out := make([]int16, len(statuses))
	for i, st := range statuses {
		out[i] = int16(st)
	}
	return out
}
