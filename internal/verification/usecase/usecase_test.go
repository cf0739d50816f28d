package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/shandysiswandi/gotransfer/internal/pkg/clock"
	"github.com/shandysiswandi/gotransfer/internal/pkg/config"
	"github.com/shandysiswandi/gotransfer/internal/pkg/instrument"
	"github.com/shandysiswandi/gotransfer/internal/pkg/validator"
	"github.com/shandysiswandi/gotransfer/internal/verification/entity"
	"github.com/shandysiswandi/gotransfer/internal/verification/outbound/cache"
)

const testConfig = `
modules:
  verification:
    sender: no-reply@provider.test
    subject_marker: Verification
    default_mailbox: fallback
`

type fakeDB struct {
	mailboxes []entity.Mailbox
	err       error
	created   []entity.Mailbox
}

func (f *fakeDB) ListMailboxes(_ context.Context, enabledOnly bool) ([]entity.Mailbox, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []entity.Mailbox
	for _, mb := range f.mailboxes {
		if mb.Enabled || !enabledOnly {
			out = append(out, mb)
		}
	}
	return out, nil
}

func (f *fakeDB) CreateMailbox(_ context.Context, mb entity.Mailbox) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, mb)
	return nil
}

type fakeMail struct {
	search func(call int, mb entity.Mailbox, c entity.SearchCriteria) ([]entity.Message, error)
	calls  int
}

func (f *fakeMail) Search(_ context.Context, mb entity.Mailbox, c entity.SearchCriteria) ([]entity.Message, error) {
	f.calls++
	return f.search(f.calls, mb, c)
}

type fakeProvider struct {
	err   error
	calls int
}

func (f *fakeProvider) RequestVerificationCode(context.Context, string, string) error {
	f.calls++
	return f.err
}

type fakeID struct{ next int64 }

func (f *fakeID) Generate() int64 {
	f.next++
	return f.next
}

// faultyStore fails Delete on demand.
type faultyStore struct {
	*cache.Memory
	deleteErr error
}

func (f *faultyStore) Delete(ctx context.Context, email string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.Memory.Delete(ctx, email)
}

type fixture struct {
	uc       *Usecase
	clock    *clock.Manual
	store    *cache.Memory
	faults   *faultyStore
	db       *fakeDB
	mail     *fakeMail
	provider *fakeProvider
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(testConfig))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}

	f := &fixture{
		clock:    clock.NewManual(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)),
		db:       &fakeDB{mailboxes: []entity.Mailbox{{ID: 1, Name: "ops", Address: "ops@corp.test", Enabled: true}}},
		mail:     &fakeMail{search: func(int, entity.Mailbox, entity.SearchCriteria) ([]entity.Message, error) { return nil, nil }},
		provider: &fakeProvider{},
	}
	f.store = cache.NewMemory(f.clock, time.Hour)
	f.faults = &faultyStore{Memory: f.store}
	f.uc = New(Dependency{
		RepoDB:     f.db,
		RepoStore:  f.faults,
		RepoMail:   f.mail,
		Provider:   f.provider,
		Validator:  v,
		Config:     cfg,
		Clock:      f.clock,
		UID:        &fakeID{},
		Instrument: instrument.NewNoop(),
	})

	return f
}

func codeMail(code string, at time.Time) entity.Message {
	return entity.Message{
		Subject:    "Verification code",
		ReceivedAt: at,
		HTMLBody:   "<p>Your code is<br/>\r\n<strong>" + code + "</strong></p>",
	}
}
