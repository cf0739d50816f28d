package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/shandysiswandi/gotransfer/internal/pkg/goerror"
	"github.com/shandysiswandi/gotransfer/internal/transfer/entity"
)

func TestGetHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.uc.Execute(ctx, uidInput(accPlain, "10.00"))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	got, err := f.uc.GetHistory(ctx, GetHistoryInput{TransferID: out.TransferID})
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if got.Transfer.ID != out.TransferID || got.Transfer.Status != entity.TransferStatusCompleted {
		t.Errorf("transfer got = %+v", got.Transfer)
	}
	if len(got.Entries) != 4 || got.Entries[0].Message != entity.HistoryRequestCreated {
		t.Fatalf("entries got = %+v", got.Entries)
	}
	for i := 1; i < len(got.Entries); i++ {
		if got.Entries[i].CreatedAt.Before(got.Entries[i-1].CreatedAt) {
			t.Errorf("entries are not ascending at %d", i)
		}
	}
	if got.Entries[0].Details["source_tag"] != entity.DefaultSourceTag {
		t.Errorf("details got = %v", got.Entries[0].Details)
	}
}

func TestGetHistoryOrdersByTimeThenID(t *testing.T) {
	f := newFixture(t)
	at := f.clock.Now()
	f.db.insert(entity.TransferRequest{ID: 9, AccountID: accPlain, Status: entity.TransferStatusProcessing})
	f.db.history = []entity.HistoryEntry{
		{ID: 3, TransferID: 9, Status: entity.TransferStatusProcessing, CreatedAt: at.Add(time.Second)},
		{ID: 2, TransferID: 9, Status: entity.TransferStatusProcessing, CreatedAt: at},
		{ID: 1, TransferID: 9, Status: entity.TransferStatusPending, CreatedAt: at},
	}

	got, err := f.uc.GetHistory(context.Background(), GetHistoryInput{TransferID: 9})
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	for i, want := range []int64{1, 2, 3} {
		if got.Entries[i].ID != want {
			t.Errorf("entry %d id got = %d, want %d", i, got.Entries[i].ID, want)
		}
	}
}

func TestGetHistoryNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.GetHistory(context.Background(), GetHistoryInput{TransferID: 404})
	if goerror.CodeOf(err) != goerror.CodeNotFound || errorType(err) != goerror.TypeBusiness {
		t.Errorf("GetHistory() error = %v, want business not found", err)
	}

	if _, err := f.uc.GetHistory(context.Background(), GetHistoryInput{}); errorType(err) != goerror.TypeValidation {
		t.Errorf("GetHistory() error = %v, want validation", err)
	}
}
