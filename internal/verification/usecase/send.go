package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/gotransfer/internal/pkg/goerror"
	"github.com/shandysiswandi/gotransfer/internal/verification/entity"
)

type SendInput struct {
	Email    string `validate:"required,email"`
	CodeType string `validate:"required"`
}

type SendOutput struct {
	Email  string
	SentAt string
}

// Send asks the provider to e-mail a code and records the send time as the
// lower bound of the mailbox search window.
func (s *Usecase) Send(ctx context.Context, in SendInput) (*SendOutput, error) {
	ctx, span := s.startSpan(ctx, "Send")
	defer span.End()

	in.Email = entity.NormalizeEmail(in.Email)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	email := in.Email
	if err := s.provider.RequestVerificationCode(ctx, email, in.CodeType); err != nil {
		return nil, providerFailure(ctx, "request verification code", err)
	}

	req := entity.Request{Email: email, SentAt: s.clock.Now()}
	replaced, err := s.repoStore.Put(ctx, req)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo put verification request", "email", email, "error", err)
		return nil, goerror.NewServer(err)
	}
	if replaced {
		slog.WarnContext(ctx, "pending verification request replaced by a new send", "email", email)
	}

	return &SendOutput{Email: email, SentAt: req.SentAt.UTC().Format(timeLayout)}, nil
}
