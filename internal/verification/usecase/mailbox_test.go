package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shandysiswandi/gotransfer/internal/pkg/goerror"
	"github.com/shandysiswandi/gotransfer/internal/verification/entity"
)

func TestSelectMailbox(t *testing.T) {
	list := []entity.Mailbox{
		{ID: 1, Name: "alpha", Address: "alpha@one.test"},
		{ID: 2, Name: "ops-main", Address: "ops@corp.test"},
		{ID: 3, Name: "fallback", Address: "fb@two.test"},
	}

	tests := []struct {
		name     string
		hint     string
		fallback string
		want     int64
	}{
		{name: "exact name case-insensitive", hint: "OPS-MAIN", want: 2},
		{name: "exact address", hint: "fb@two.test", want: 3},
		{name: "substring", hint: "ops", want: 2},
		{name: "same domain", hint: "someone@corp.test", want: 2},
		{name: "configured default", hint: "unknown", fallback: "fallback", want: 3},
		{name: "any enabled", hint: "", want: 1},
		{name: "missing default falls through", hint: "nope", fallback: "ghost", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := selectMailbox(list, tt.hint, tt.fallback)
			if !ok || got.ID != tt.want {
				t.Errorf("selectMailbox() = %d, %v; want %d", got.ID, ok, tt.want)
			}
		})
	}

	if _, ok := selectMailbox(nil, "ops", "fallback"); ok {
		t.Error("selectMailbox(nil) should fail")
	}
}

func TestAddMailbox(t *testing.T) {
	f := newFixture(t)

	mb, err := f.uc.AddMailbox(context.Background(), AddMailboxInput{
		Name: "ops2", Address: "OPS2@corp.test", Host: "imap.corp.test", Username: "u", Password: "p",
	})
	if err != nil {
		t.Fatalf("AddMailbox() error = %v", err)
	}
	if mb.Port != 993 || mb.Address != "ops2@corp.test" || !mb.Enabled || mb.ID == 0 {
		t.Errorf("AddMailbox() got = %+v", mb)
	}
	if len(f.db.created) != 1 {
		t.Errorf("created %d mailboxes, want 1", len(f.db.created))
	}

	f.db.err = goerror.ErrConflict
	_, err = f.uc.AddMailbox(context.Background(), AddMailboxInput{
		Name: "ops2", Address: "ops2@corp.test", Host: "imap.corp.test", Username: "u", Password: "p",
	})
	if goerror.CodeOf(err) != goerror.CodeConflict {
		t.Errorf("AddMailbox(duplicate) code = %s, want conflict", goerror.CodeOf(err))
	}

	f.db.err = nil
	_, err = f.uc.AddMailbox(context.Background(), AddMailboxInput{Name: "x"})
	var ge *goerror.Error
	if !errors.As(err, &ge) || ge.Type() != goerror.TypeValidation {
		t.Errorf("AddMailbox(invalid) error = %v, want validation", err)
	}
}
