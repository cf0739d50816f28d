package mq

import (
	"context"
	"encoding/json"
	"strconv"

	"go.opentelemetry.io/otel/codes"

	"github.com/shandysiswandi/gotransfer/internal/pkg/instrument"
	"github.com/shandysiswandi/gotransfer/internal/pkg/messaging"
	"github.com/shandysiswandi/gotransfer/internal/shared/event"
	"github.com/shandysiswandi/gotransfer/internal/transfer/usecase"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Publisher
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

// PublishTransferStatus keys the message by transfer id so brokers that
// partition keep one transfer's events in order.
func (m *Messaging) PublishTransferStatus(ctx context.Context, msg usecase.TransferStatusEvent) error {
	ctx, span := m.ins.Tracer("transfer.outbound.mq").Start(ctx, "PublishTransferStatus")
	defer span.End()

	body, err := json.Marshal(event.TransferStatusMessage{
		TransferID:   msg.TransferID,
		AccountID:    msg.AccountID,
		Status:       msg.Status.String(),
		Outcome:      string(msg.Outcome),
		Amount:       msg.Amount,
		SourceTag:    msg.SourceTag,
		ErrorMessage: msg.ErrorMessage,
		OccurredAt:   msg.OccurredAt,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, event.TransferStatusDestination, messaging.Message{
		Body:    body,
		Key:     []byte(strconv.FormatInt(msg.TransferID, 10)),
		Headers: map[string]string{keyOfCorrelationID: cID},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
