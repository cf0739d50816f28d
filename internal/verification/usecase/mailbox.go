package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/gotransfer/internal/pkg/goerror"
	"github.com/shandysiswandi/gotransfer/internal/verification/entity"
)

type AddMailboxInput struct {
	Name               string `validate:"required"`
	Address            string `validate:"required,email"`
	Host               string `validate:"required,hostname|ip"`
	Port               int    `validate:"gte=0,lte=65535"`
	Username           string `validate:"required"`
	Password           string `validate:"required"`
	InsecureSkipVerify bool
}

func (s *Usecase) AddMailbox(ctx context.Context, in AddMailboxInput) (*entity.Mailbox, error) {
	ctx, span := s.startSpan(ctx, "AddMailbox")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	port := in.Port
	if port == 0 {
		port = 993
	}

	mb := entity.Mailbox{
		ID:                 s.uid.Generate(),
		Name:               strings.TrimSpace(in.Name),
		Address:            strings.ToLower(strings.TrimSpace(in.Address)),
		Host:               in.Host,
		Port:               port,
		Username:           in.Username,
		Password:           in.Password,
		InsecureSkipVerify: in.InsecureSkipVerify,
		Enabled:            true,
		CreatedAt:          s.clock.Now(),
	}

	if err := s.repoDB.CreateMailbox(ctx, mb); err != nil {
		if errors.Is(err, goerror.ErrConflict) {
			slog.WarnContext(ctx, "mailbox name already registered", "name", mb.Name)
			return nil, goerror.NewBusiness("mailbox name already registered", goerror.CodeConflict)
		}
		slog.ErrorContext(ctx, "failed to repo create mailbox", "name", mb.Name, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &mb, nil
}

func (s *Usecase) ListMailboxes(ctx context.Context) ([]entity.Mailbox, error) {
	ctx, span := s.startSpan(ctx, "ListMailboxes")
	defer span.End()

	list, err := s.repoDB.ListMailboxes(ctx, false)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list mailboxes", "error", err)
		return nil, goerror.NewServer(err)
	}

	return list, nil
}

func (s *Usecase) resolveMailbox(ctx context.Context, hint string) (entity.Mailbox, error) {
	list, err := s.repoDB.ListMailboxes(ctx, true)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list enabled mailboxes", "error", err)
		return entity.Mailbox{}, goerror.NewServer(err)
	}

	mb, ok := selectMailbox(list, hint, s.cfg.GetString("modules.verification.default_mailbox"))
	if !ok {
		slog.WarnContext(ctx, "no mailbox can serve verification fetch", "hint", hint)
		return entity.Mailbox{}, goerror.WrapBusiness(entity.ErrMailboxUnresolvable, goerror.CodeNotFound)
	}

	return mb, nil
}

// selectMailbox picks, in order: an exact hint match on name or address, a
// fuzzy hint match (substring or same domain), the configured default, then
// the first entry. list is expected in ascending id order.
func selectMailbox(list []entity.Mailbox, hint, fallback string) (entity.Mailbox, bool) {
	if len(list) == 0 {
		return entity.Mailbox{}, false
	}

	hint = strings.ToLower(strings.TrimSpace(hint))
	if hint != "" {
		if mb, ok := findExact(list, hint); ok {
			return mb, true
		}

		hintDomain := entity.EmailDomain(hint)
		for _, mb := range list {
			name, addr := strings.ToLower(mb.Name), strings.ToLower(mb.Address)
			if strings.Contains(name, hint) || strings.Contains(addr, hint) {
				return mb, true
			}
			if hintDomain != "" && hintDomain == mb.Domain() {
				return mb, true
			}
		}
	}

	if fallback = strings.ToLower(strings.TrimSpace(fallback)); fallback != "" {
		if mb, ok := findExact(list, fallback); ok {
			return mb, true
		}
	}

	return list[0], true
}

func findExact(list []entity.Mailbox, key string) (entity.Mailbox, bool) {
	for _, mb := range list {
		if strings.EqualFold(mb.Name, key) || strings.EqualFold(mb.Address, key) {
			return mb, true
		}
	}
	return entity.Mailbox{}, false
}
