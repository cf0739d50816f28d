package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/shandysiswandi/gotransfer/internal/pkg/goerror"
	"github.com/shandysiswandi/gotransfer/internal/transfer/entity"
)

const accountColumns = `id, external_user_id, email, credential_secret, cached_session_token,
	session_expiry, second_factor_secret, second_factor_enabled`

func scanAccount(row pgx.Row) (*entity.Account, error) {
	var (
		a      entity.Account
		expiry *time.Time
	)
	if err := row.Scan(&a.ID, &a.ExternalUserID, &a.Email, &a.CredentialSecret, &a.CachedSessionToken,
		&expiry, &a.SecondFactorSecret, &a.SecondFactorEnabled); err != nil {
		return nil, err
	}
	if expiry != nil {
		a.SessionExpiry = *expiry
	}
	return &a, nil
}

func (s *DB) GetAccount(ctx context.Context, id int64) (_ *entity.Account, err error) {
	ctx, span := s.startSpan(ctx, "GetAccount")
	defer func() { s.endSpan(span, err) }()

	a, err := scanAccount(s.conn.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
	if err != nil {
		return nil, s.mapError(err)
	}
	return a, nil
}

func (s *DB) GetAccountByExternalUserID(ctx context.Context, externalUserID string) (_ *entity.Account, err error) {
	ctx, span := s.startSpan(ctx, "GetAccountByExternalUserID")
	defer func() { s.endSpan(span, err) }()

	if externalUserID == "" {
		return nil, goerror.ErrNotFound
	}

	a, err := scanAccount(s.conn.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts
		WHERE external_user_id = $1 ORDER BY id ASC LIMIT 1`, externalUserID))
	if err != nil {
		return nil, s.mapError(err)
	}
	return a, nil
}

func (s *DB) GetAccountByEmail(ctx context.Context, email string) (_ *entity.Account, err error) {
	ctx, span := s.startSpan(ctx, "GetAccountByEmail")
	defer func() { s.endSpan(span, err) }()

	a, err := scanAccount(s.conn.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts
		WHERE LOWER(email) = LOWER($1)`, email))
	if err != nil {
		return nil, s.mapError(err)
	}
	return a, nil
}

// UpdateAccountSession stores the cached session. An empty token clears it.
func (s *DB) UpdateAccountSession(ctx context.Context, id int64, token string, expiry time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateAccountSession")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `UPDATE accounts
		SET cached_session_token = $2, session_expiry = $3, updated_at = NOW()
		WHERE id = $1`, id, token, nullTime(expiry))
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}
	return nil
}
