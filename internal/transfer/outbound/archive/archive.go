// Package archive writes finished transfers to object storage as JSON.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/codes"

	"github.com/shandysiswandi/gotransfer/internal/pkg/instrument"
	"github.com/shandysiswandi/gotransfer/internal/pkg/storage"
	"github.com/shandysiswandi/gotransfer/internal/transfer/usecase"
)

type Archive struct {
	client storage.Storage
	bucket string
	ins    instrument.Instrumentation
}

func NewArchive(client storage.Storage, bucket string, ins instrument.Instrumentation) *Archive {
	return &Archive{client: client, bucket: bucket, ins: ins}
}

type transferDoc struct {
	ID                       int64          `json:"id"`
	AccountID                int64          `json:"account_id"`
	OriginalDestinationKind  string         `json:"original_destination_kind"`
	OriginalDestinationValue string         `json:"original_destination_value"`
	DestinationKind          string         `json:"destination_kind"`
	DestinationValue         string         `json:"destination_value"`
	Amount                   string         `json:"amount"`
	SourceTag                string         `json:"source_tag"`
	Forced                   bool           `json:"forced"`
	Status                   string         `json:"status"`
	MatchedAccountID         int64          `json:"matched_account_id,omitempty"`
	Remarks                  string         `json:"remarks,omitempty"`
	RequestPayload           map[string]any `json:"request_payload"`
	ResponsePayload          map[string]any `json:"response_payload"`
	ErrorMessage             string         `json:"error_message,omitempty"`
	CreatedAt                time.Time      `json:"created_at"`
	UpdatedAt                time.Time      `json:"updated_at"`
	CompletedAt              *time.Time     `json:"completed_at,omitempty"`
}

type entryDoc struct {
	ID        int64          `json:"id"`
	Status    string         `json:"status"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details"`
	CreatedAt time.Time      `json:"created_at"`
}

type document struct {
	Transfer   transferDoc `json:"transfer"`
	History    []entryDoc  `json:"history"`
	ArchivedAt time.Time   `json:"archived_at"`
}

// Key is the object key a transfer is archived under.
func Key(transferID int64) string {
	return fmt.Sprintf("transfers/%d.json", transferID)
}

// ArchiveTransfer overwrites any earlier archive of the same transfer.
func (a *Archive) ArchiveTransfer(ctx context.Context, doc usecase.ArchiveDocument) error {
	ctx, span := a.ins.Tracer("transfer.outbound.archive").Start(ctx, "ArchiveTransfer")
	defer span.End()

	body, err := json.Marshal(newDocument(doc))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if _, err := a.client.PutObject(ctx, a.bucket, Key(doc.Transfer.ID), bytes.NewReader(body), storage.PutOptions{
		Size:        int64(len(body)),
		ContentType: "application/json",
		Metadata:    map[string]string{"status": doc.Transfer.Status.String()},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func newDocument(doc usecase.ArchiveDocument) document {
	tr := doc.Transfer
	out := document{
		Transfer: transferDoc{
			ID:                       tr.ID,
			AccountID:                tr.AccountID,
			OriginalDestinationKind:  string(tr.OriginalDestinationKind),
			OriginalDestinationValue: tr.OriginalDestinationValue,
			DestinationKind:          string(tr.DestinationKind),
			DestinationValue:         tr.DestinationValue,
			Amount:                   tr.Amount,
			SourceTag:                tr.SourceTag,
			Forced:                   tr.Forced,
			Status:                   tr.Status.String(),
			MatchedAccountID:         tr.MatchedAccountID,
			Remarks:                  tr.Remarks,
			RequestPayload:           tr.RequestPayload,
			ResponsePayload:          tr.ResponsePayload,
			ErrorMessage:             tr.ErrorMessage,
			CreatedAt:                tr.CreatedAt,
			UpdatedAt:                tr.UpdatedAt,
		},
		History:    make([]entryDoc, 0, len(doc.Entries)),
		ArchivedAt: doc.ArchivedAt,
	}
	if !tr.CompletedAt.IsZero() {
		completedAt := tr.CompletedAt
		out.Transfer.CompletedAt = &completedAt
	}

	for _, e := range doc.Entries {
		out.History = append(out.History, entryDoc{
			ID:        e.ID,
			Status:    e.Status.String(),
			Message:   e.Message,
			Details:   e.Details,
			CreatedAt: e.CreatedAt,
		})
	}

	return out
}
