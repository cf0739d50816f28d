package inbound

import (
	"time"

	"github.com/shandysiswandi/gotransfer/internal/pkg/command"
	"github.com/shandysiswandi/gotransfer/internal/verification/usecase"
)

type CLIEndpoint struct {
	uc uc
}

func (e *CLIEndpoint) Send(r *command.Request) (any, error) {
	out, err := e.uc.Send(r.Context(), usecase.SendInput{
		Email:    r.GetString("email"),
		CodeType: r.GetString("type"),
	})
	if err != nil {
		return nil, err
	}

	return SendResponse{Email: out.Email, SentAt: out.SentAt}, nil
}

func (e *CLIEndpoint) Fetch(r *command.Request) (any, error) {
	out, err := e.uc.Fetch(r.Context(), usecase.FetchInput{
		Email:       r.GetString("email"),
		MailboxHint: r.GetString("mailbox"),
		RetryCount:  r.GetInt("retry-count"),
		Interval:    time.Duration(r.GetInt("interval-seconds")) * time.Second,
	})
	if err != nil {
		return nil, err
	}

	return FetchResponse{Code: out.Code, Mailbox: out.Mailbox, Attempts: out.Attempts}, nil
}

func (e *CLIEndpoint) AddMailbox(r *command.Request) (any, error) {
	mb, err := e.uc.AddMailbox(r.Context(), usecase.AddMailboxInput{
		Name:               r.GetString("name"),
		Address:            r.GetString("address"),
		Host:               r.GetString("host"),
		Port:               r.GetInt("port"),
		Username:           r.GetString("username"),
		Password:           r.GetString("password"),
		InsecureSkipVerify: r.GetBool("insecure-skip-verify"),
	})
	if err != nil {
		return nil, err
	}

	return toMailboxResponse(*mb), nil
}

func (e *CLIEndpoint) ListMailboxes(r *command.Request) (any, error) {
	list, err := e.uc.ListMailboxes(r.Context())
	if err != nil {
		return nil, err
	}

	resp := make([]MailboxResponse, 0, len(list))
	for _, mb := range list {
		resp = append(resp, toMailboxResponse(mb))
	}

	return resp, nil
}
