package archive

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/shandysiswandi/gotransfer/internal/pkg/instrument"
	"github.com/shandysiswandi/gotransfer/internal/pkg/storage"
	"github.com/shandysiswandi/gotransfer/internal/pkg/valueobject"
	"github.com/shandysiswandi/gotransfer/internal/transfer/entity"
	"github.com/shandysiswandi/gotransfer/internal/transfer/usecase"
)

type fakeStorage struct {
	bucket, key string
	body        []byte
	opts        storage.PutOptions
}

func (f *fakeStorage) PutObject(_ context.Context, bucket, key string, r io.Reader, opts storage.PutOptions) (storage.ObjectInfo, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	f.bucket, f.key, f.body, f.opts = bucket, key, body, opts
	return storage.ObjectInfo{Bucket: bucket, Key: key, Size: int64(len(body))}, nil
}

func (f *fakeStorage) Close() error { return nil }

func TestArchiveTransfer(t *testing.T) {
	st := &fakeStorage{}
	a := NewArchive(st, "audit", instrument.NewNoop())
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	err := a.ArchiveTransfer(context.Background(), usecase.ArchiveDocument{
		Transfer: entity.TransferRequest{
			ID: 9, AccountID: 1, Status: entity.TransferStatusFailed, Amount: "5.00",
			ResponsePayload: valueobject.JSONMap{"raw": "<html>"}, ErrorMessage: "insufficient balance",
		},
		Entries: []entity.HistoryEntry{
			{ID: 1, Status: entity.TransferStatusPending, Message: entity.HistoryRequestCreated, CreatedAt: at},
			{ID: 2, Status: entity.TransferStatusFailed, Message: entity.HistoryFailed, CreatedAt: at},
		},
		ArchivedAt: at,
	})
	if err != nil {
		t.Fatalf("ArchiveTransfer() error = %v", err)
	}

	if st.bucket != "audit" || st.key != "transfers/9.json" {
		t.Errorf("object got = %s/%s", st.bucket, st.key)
	}
	if st.opts.ContentType != "application/json" || st.opts.Size != int64(len(st.body)) {
		t.Errorf("options got = %+v", st.opts)
	}

	var doc document
	if err := json.Unmarshal(st.body, &doc); err != nil {
		t.Fatalf("body: %v", err)
	}
	if doc.Transfer.Status != "failed" || len(doc.History) != 2 || doc.History[0].Message != "request created" {
		t.Errorf("document got = %+v", doc)
	}
	if doc.Transfer.CompletedAt != nil {
		t.Errorf("CompletedAt should be omitted for a failed transfer")
	}
}
