// Package mail reads verification e-mails from a registered mailbox.
package mail

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/shandysiswandi/gotransfer/internal/pkg/instrument"
	"github.com/shandysiswandi/gotransfer/internal/pkg/mailbox"
	"github.com/shandysiswandi/gotransfer/internal/verification/entity"
)

type Mail struct {
	dialer mailbox.Dialer
	ins    instrument.Instrumentation
}

func NewMail(dialer mailbox.Dialer, ins instrument.Instrumentation) *Mail {
	return &Mail{dialer: dialer, ins: ins}
}

// Search opens one session on mb, runs the query and always closes the
// session before returning.
func (m *Mail) Search(ctx context.Context, mb entity.Mailbox, c entity.SearchCriteria) (_ []entity.Message, err error) {
	ctx, span := m.ins.Tracer("verification.outbound.mail").Start(ctx, "Search")
	span.SetAttributes(attribute.String("mailbox", mb.Name))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	sess, err := m.dialer.Dial(ctx, mailbox.Config{
		Host:               mb.Host,
		Port:               mb.Port,
		Username:           mb.Username,
		Password:           mb.Password,
		InsecureSkipVerify: mb.InsecureSkipVerify,
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		if cErr := sess.Close(); cErr != nil {
			slog.WarnContext(ctx, "failed to close mailbox session", "mailbox", mb.Name, "error", cErr)
		}
	}()

	found, err := sess.Search(ctx, mailbox.Criteria{
		From:            c.From,
		To:              c.To,
		SubjectContains: c.SubjectContains,
		Since:           c.Since,
	})
	if err != nil {
		return nil, err
	}

	out := make([]entity.Message, 0, len(found))
	for _, msg := range found {
		out = append(out, entity.Message{
			Subject:    msg.Subject,
			ReceivedAt: msg.ReceivedAt,
			HTMLBody:   msg.HTMLBody,
			TextBody:   msg.TextBody,
		})
	}

	return out, nil
}
