package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/gotransfer/internal/pkg/goerror"
	"github.com/shandysiswandi/gotransfer/internal/pkg/otp"
)

type GenerateTOTPInput struct {
	Secret string `validate:"required"`
}

func (s *Usecase) GenerateTOTP(ctx context.Context, in GenerateTOTPInput) (*otp.Code, error) {
	_, span := s.startSpan(ctx, "GenerateTOTP")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	code, err := s.otp.Generate(in.Secret)
	if err != nil {
		slog.WarnContext(ctx, "failed to generate totp code", "error", err)
		return nil, goerror.NewInvalidInput(nil, "secret", "secret is not valid base32")
	}

	return &code, nil
}

type ParseTOTPURIInput struct {
	URI string `validate:"required"`
}

func (s *Usecase) ParseTOTPURI(ctx context.Context, in ParseTOTPURIInput) (*otp.URIParams, error) {
	_, span := s.startSpan(ctx, "ParseTOTPURI")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	params, err := otp.ParseURI(in.URI)
	if errors.Is(err, otp.ErrSecretRequired) {
		return nil, goerror.NewInvalidInput(nil, "uri", "secret is required")
	}
	if err != nil {
		return nil, goerror.NewInvalidInput(nil, "uri", "uri is not a valid otpauth uri")
	}

	return &params, nil
}
