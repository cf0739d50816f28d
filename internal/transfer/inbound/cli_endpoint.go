package inbound

import (
	"github.com/shandysiswandi/gotransfer/internal/pkg/command"
	"github.com/shandysiswandi/gotransfer/internal/transfer/usecase"
)

type CLIEndpoint struct {
	uc uc
}

func (e *CLIEndpoint) Execute(r *command.Request) (any, error) {
	out, err := e.uc.Execute(r.Context(), usecase.ExecuteInput{
		AccountID:        r.GetInt64("account-id"),
		DestinationKind:  r.GetString("destination-kind"),
		DestinationValue: r.GetString("destination-value"),
		Amount:           r.GetString("amount"),
		SourceTag:        r.GetString("source-tag"),
		Forced:           r.GetBool("forced"),
		Remarks:          r.GetString("remarks"),
		Auto2FA:          r.GetBool("auto-2fa"),
		Code:             r.GetString("code"),
	})
	if err != nil {
		return nil, err
	}

	return toExecuteResponse(*out), nil
}

func (e *CLIEndpoint) History(r *command.Request) (any, error) {
	id, err := r.ArgInt64(0)
	if err != nil {
		return nil, err
	}

	out, err := e.uc.GetHistory(r.Context(), usecase.GetHistoryInput{TransferID: id})
	if err != nil {
		return nil, err
	}

	return toHistoryResponse(*out), nil
}

func (e *CLIEndpoint) GetSession(r *command.Request) (any, error) {
	id, err := r.ArgInt64(0)
	if err != nil {
		return nil, err
	}

	out, err := e.uc.GetSession(r.Context(), usecase.GetSessionInput{AccountID: id})
	if err != nil {
		return nil, err
	}

	return toSessionResponse(*out), nil
}

func (e *CLIEndpoint) GenerateTOTP(r *command.Request) (any, error) {
	code, err := e.uc.GenerateTOTP(r.Context(), usecase.GenerateTOTPInput{Secret: r.Arg(0)})
	if err != nil {
		return nil, err
	}

	return TOTPResponse{Code: code.Value, RemainingSeconds: code.RemainingSeconds}, nil
}

func (e *CLIEndpoint) ParseTOTPURI(r *command.Request) (any, error) {
	params, err := e.uc.ParseTOTPURI(r.Context(), usecase.ParseTOTPURIInput{URI: r.Arg(0)})
	if err != nil {
		return nil, err
	}

	return TOTPURIResponse{
		Secret:  params.Secret,
		Issuer:  params.Issuer,
		Account: params.Account,
		Digits:  params.Digits,
		Period:  params.Period,
	}, nil
}
