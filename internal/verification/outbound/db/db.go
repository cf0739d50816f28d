package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/gotransfer/internal/pkg/goerror"
	"github.com/shandysiswandi/gotransfer/internal/pkg/instrument"
	"github.com/shandysiswandi/gotransfer/internal/verification/entity"
)

type DB struct {
	conn *pgxpool.Pool
	ins  instrument.Instrumentation
}

func NewDB(conn *pgxpool.Pool, ins instrument.Instrumentation) *DB {
	return &DB{conn: conn, ins: ins}
}

func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return goerror.ErrConflict
	}

	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("verification.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

const mailboxColumns = `id, name, address, host, port, username, password, insecure_skip_verify, enabled, created_at`

func (s *DB) ListMailboxes(ctx context.Context, enabledOnly bool) (_ []entity.Mailbox, err error) {
	ctx, span := s.startSpan(ctx, "ListMailboxes")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `SELECT `+mailboxColumns+` FROM verification_mailboxes
		WHERE enabled OR NOT $1 ORDER BY id ASC`, enabledOnly)
	if err != nil {
		return nil, s.mapError(err)
	}

	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Mailbox, error) {
		var mb entity.Mailbox
		err := row.Scan(&mb.ID, &mb.Name, &mb.Address, &mb.Host, &mb.Port, &mb.Username,
			&mb.Password, &mb.InsecureSkipVerify, &mb.Enabled, &mb.CreatedAt)
		return mb, err
	})
	if err != nil {
		return nil, s.mapError(err)
	}

	return list, nil
}

func (s *DB) CreateMailbox(ctx context.Context, mb entity.Mailbox) (err error) {
	ctx, span := s.startSpan(ctx, "CreateMailbox")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `INSERT INTO verification_mailboxes (`+mailboxColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		mb.ID, mb.Name, mb.Address, mb.Host, mb.Port, mb.Username, mb.Password,
		mb.InsecureSkipVerify, mb.Enabled, mb.CreatedAt)

	err = s.mapError(err)
	return err
}
