package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/shandysiswandi/gotransfer/internal/pkg/goerror"
	"github.com/shandysiswandi/gotransfer/internal/pkg/valueobject"
	"github.com/shandysiswandi/gotransfer/internal/transfer/entity"
)

func (s *DB) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rolback", "error", rErr)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func insertHistory(ctx context.Context, tx pgx.Tx, h entity.HistoryEntry) error {
	details := h.Details
	if details == nil {
		details = valueobject.JSONMap{}
	}
	_, err := tx.Exec(ctx, `INSERT INTO transfer_histories (id, transfer_id, status, message, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`, h.ID, h.TransferID, h.Status, h.Message, details, h.CreatedAt)
	return err
}

// CreateTransfer inserts tr and its first history entry atomically. A racing
// identical pending request surfaces as goerror.ErrConflict.
func (s *DB) CreateTransfer(ctx context.Context, tr entity.TransferRequest, entry entity.HistoryEntry) (err error) {
	ctx, span := s.startSpan(ctx, "CreateTransfer")
	defer func() { s.endSpan(span, err) }()

	err = s.withTx(ctx, func(tx pgx.Tx) error {
		reqPayload, respPayload := tr.RequestPayload, tr.ResponsePayload
		if reqPayload == nil {
			reqPayload = valueobject.JSONMap{}
		}
		if respPayload == nil {
			respPayload = valueobject.JSONMap{}
		}

		if _, err := tx.Exec(ctx, `INSERT INTO transfer_requests (`+transferColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
			tr.ID, tr.AccountID, tr.OriginalDestinationKind, tr.OriginalDestinationValue,
			tr.DestinationKind, tr.DestinationValue, tr.Amount, tr.SourceTag, tr.Forced, tr.Status,
			tr.SecondFactorCode, nullInt64(tr.MatchedAccountID), tr.Remarks, reqPayload, respPayload,
			tr.ErrorMessage, tr.CreatedAt, tr.UpdatedAt, nullTime(tr.CompletedAt)); err != nil {
			return err
		}

		return insertHistory(ctx, tx, entry)
	})

	err = s.mapError(err)
	return err
}

// RecordResponse stores the raw provider response of a processing request
// together with its history entry.
func (s *DB) RecordResponse(ctx context.Context, transferID int64, payload valueobject.JSONMap, entry entity.HistoryEntry) (err error) {
	ctx, span := s.startSpan(ctx, "RecordResponse")
	defer func() { s.endSpan(span, err) }()

	if payload == nil {
		payload = valueobject.JSONMap{}
	}

	err = s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE transfer_requests SET response_payload = $2, updated_at = $3
			WHERE id = $1 AND status = $4`,
			transferID, payload, entry.CreatedAt, entity.TransferStatusProcessing)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return goerror.ErrConflict
		}

		return insertHistory(ctx, tx, entry)
	})

	err = s.mapError(err)
	return err
}

// TransitionTransfer moves the request to t.To only when its current status
// is in t.From. A request in any other state yields goerror.ErrConflict and
// nothing is written.
func (s *DB) TransitionTransfer(ctx context.Context, t entity.Transition) (err error) {
	ctx, span := s.startSpan(ctx, "TransitionTransfer")
	defer func() { s.endSpan(span, err) }()

	for _, from := range t.From {
		if !from.CanTransitionTo(t.To) {
			return goerror.ErrConflict
		}
	}

	err = s.withTx(ctx, func(tx pgx.Tx) error {
		var reqPayload any
		if t.RequestPayload != nil {
			reqPayload = t.RequestPayload
		}

		tag, err := tx.Exec(ctx, `UPDATE transfer_requests SET
				status = $2,
				request_payload = COALESCE($3::jsonb, request_payload),
				error_message = CASE WHEN $4 = '' THEN error_message ELSE $4 END,
				completed_at = COALESCE($5, completed_at),
				updated_at = $6
			WHERE id = $1 AND status = ANY($7)`,
			t.TransferID, t.To, reqPayload, t.ErrorMessage, nullTime(t.CompletedAt), t.UpdatedAt,
			statusArray(t.From...))
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return goerror.ErrConflict
		}

		return insertHistory(ctx, tx, t.Entry)
	})

	err = s.mapError(err)
	return err
}
