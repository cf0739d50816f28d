package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shandysiswandi/gotransfer/internal/pkg/goerror"
	"github.com/shandysiswandi/gotransfer/internal/shared/provider"
	"github.com/shandysiswandi/gotransfer/internal/transfer/entity"
)

const defaultSessionTTL = time.Hour

// Session returns a usable session token for account, re-authenticating only
// when the cached token is missing or expired. On refresh the account is
// updated in place. Failures are *entity.SessionError.
func (s *Usecase) Session(ctx context.Context, account *entity.Account) (string, error) {
	ctx, span := s.startSpan(ctx, "Session")
	defer span.End()

	now := s.clock.Now()
	if account.HasValidSession(now) {
		return account.CachedSessionToken, nil
	}

	sess, err := s.provider.Authenticate(ctx, account.Email, account.CredentialSecret)
	if err != nil {
		serr := toSessionError(err)
		slog.WarnContext(ctx, "failed to authenticate account", "account_id", account.ID, "reason", serr.Reason.String(), "error", err)
		return "", serr
	}

	expiry := sess.ExpiresAt
	if expiry.IsZero() {
		ttl := s.cfg.GetMinute("provider.session.default_ttl_minutes")
		if ttl <= 0 {
			ttl = defaultSessionTTL
		}
		expiry = now.Add(ttl)
	}

	if err := s.repoDB.UpdateAccountSession(ctx, account.ID, sess.Token, expiry); err != nil {
		slog.ErrorContext(ctx, "failed to repo persist refreshed session", "account_id", account.ID, "error", err)
	}

	account.CachedSessionToken = sess.Token
	account.SessionExpiry = expiry

	return sess.Token, nil
}

func toSessionError(err error) *entity.SessionError {
	pe, ok := provider.AsError(err)
	if !ok {
		return &entity.SessionError{Reason: entity.SessionFailureTransport, Message: err.Error(), Err: err}
	}

	reason := entity.SessionFailureCredentials
	switch pe.Kind {
	case provider.KindTransport:
		reason = entity.SessionFailureTransport
	case provider.KindMalformed:
		reason = entity.SessionFailureMalformed
	}

	return &entity.SessionError{Reason: reason, Message: pe.Detail(), Err: err}
}

// invalidateSession drops a token the provider refused so the next call
// re-authenticates.
func (s *Usecase) invalidateSession(ctx context.Context, account *entity.Account) {
	account.CachedSessionToken = ""
	account.SessionExpiry = time.Time{}

	if err := s.repoDB.UpdateAccountSession(ctx, account.ID, "", time.Time{}); err != nil {
		slog.ErrorContext(ctx, "failed to repo invalidate session", "account_id", account.ID, "error", err)
	}
}

type GetSessionInput struct {
	AccountID int64 `validate:"required,gt=0"`
}

// GetSessionOutput never carries the token itself.
type GetSessionOutput struct {
	AccountID int64
	ExpiresAt time.Time
	// Refreshed is true when the provider was asked for a new session.
	Refreshed bool
}

// GetSession makes sure account holds a usable session and reports its expiry.
func (s *Usecase) GetSession(ctx context.Context, in GetSessionInput) (*GetSessionOutput, error) {
	ctx, span := s.startSpan(ctx, "GetSession")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	account, err := s.repoDB.GetAccount(ctx, in.AccountID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "account not found", "account_id", in.AccountID)
		return nil, goerror.NewBusiness("account not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get account", "account_id", in.AccountID, "error", err)
		return nil, goerror.NewServer(err)
	}

	refreshed := !account.HasValidSession(s.clock.Now())
	if _, err := s.Session(ctx, account); err != nil {
		var serr *entity.SessionError
		if errors.As(err, &serr) && serr.Reason != entity.SessionFailureTransport {
			return nil, goerror.NewBusiness(serr.Message, goerror.CodeUnauthorized)
		}
		return nil, goerror.NewServer(err)
	}

	return &GetSessionOutput{AccountID: account.ID, ExpiresAt: account.SessionExpiry, Refreshed: refreshed}, nil
}
