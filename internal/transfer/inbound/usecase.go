package inbound

import (
	"context"

	"github.com/shandysiswandi/gotransfer/internal/pkg/otp"
	"github.com/shandysiswandi/gotransfer/internal/transfer/usecase"
)

type uc interface {
	Execute(ctx context.Context, in usecase.ExecuteInput) (*usecase.ExecuteOutput, error)
	GetHistory(ctx context.Context, in usecase.GetHistoryInput) (*usecase.GetHistoryOutput, error)
	GetSession(ctx context.Context, in usecase.GetSessionInput) (*usecase.GetSessionOutput, error)
	GenerateTOTP(ctx context.Context, in usecase.GenerateTOTPInput) (*otp.Code, error)
	ParseTOTPURI(ctx context.Context, in usecase.ParseTOTPURIInput) (*otp.URIParams, error)
}
