package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/gotransfer/internal/pkg/clock"
	"github.com/shandysiswandi/gotransfer/internal/pkg/config"
	"github.com/shandysiswandi/gotransfer/internal/pkg/goerror"
	"github.com/shandysiswandi/gotransfer/internal/pkg/goroutine"
	"github.com/shandysiswandi/gotransfer/internal/pkg/instrument"
	"github.com/shandysiswandi/gotransfer/internal/pkg/otp"
	"github.com/shandysiswandi/gotransfer/internal/pkg/validator"
	"github.com/shandysiswandi/gotransfer/internal/pkg/valueobject"
	"github.com/shandysiswandi/gotransfer/internal/shared/provider"
	"github.com/shandysiswandi/gotransfer/internal/transfer/entity"
)

const testConfig = `
provider:
  session:
    default_ttl_minutes: 30
`

// memDB keeps rows in memory and enforces the same guards as the
// postgres repository: the pending unique index and guarded transitions.
type memDB struct {
	mu        sync.Mutex
	accounts  map[int64]entity.Account
	transfers map[int64]*entity.TransferRequest
	order     []int64
	history   []entity.HistoryEntry

	sessionUpdates int

	getAccountErr    error
	updateSessionErr error
	beforeCreate     func(tr entity.TransferRequest) error
	recordErr        error
	listHistoryErr   error
}

func newMemDB(accounts ...entity.Account) *memDB {
	db := &memDB{accounts: map[int64]entity.Account{}, transfers: map[int64]*entity.TransferRequest{}}
	for _, a := range accounts {
		db.accounts[a.ID] = a
	}
	return db
}

func (m *memDB) GetAccount(_ context.Context, id int64) (*entity.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getAccountErr != nil {
		return nil, m.getAccountErr
	}
	a, ok := m.accounts[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &a, nil
}

func (m *memDB) GetAccountByExternalUserID(_ context.Context, uid string) (*entity.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.ExternalUserID != "" && a.ExternalUserID == uid {
			return &a, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (m *memDB) GetAccountByEmail(_ context.Context, email string) (*entity.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (m *memDB) UpdateAccountSession(_ context.Context, id int64, token string, expiry time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionUpdates++
	if m.updateSessionErr != nil {
		return m.updateSessionErr
	}
	a := m.accounts[id]
	a.CachedSessionToken = token
	a.SessionExpiry = expiry
	m.accounts[id] = a
	return nil
}

func (m *memDB) GetTransfer(_ context.Context, id int64) (*entity.TransferRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tr, ok := m.transfers[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	cp := *tr
	return &cp, nil
}

func (m *memDB) FindPendingTransfer(_ context.Context, key entity.DuplicateKey) (*entity.TransferRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order {
		tr := m.transfers[id]
		if tr.Status == entity.TransferStatusPending && tr.DuplicateKey() == key {
			cp := *tr
			return &cp, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (m *memDB) FindLatestOpenTransfer(_ context.Context, key entity.DuplicateKey) (*entity.TransferRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.order) - 1; i >= 0; i-- {
		tr := m.transfers[m.order[i]]
		if !tr.Status.IsTerminal() && tr.DuplicateKey() == key {
			cp := *tr
			return &cp, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (m *memDB) ListHistory(_ context.Context, transferID int64) ([]entity.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listHistoryErr != nil {
		return nil, m.listHistoryErr
	}
	var out []entity.HistoryEntry
	for _, e := range m.history {
		if e.TransferID == transferID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memDB) CreateTransfer(_ context.Context, tr entity.TransferRequest, entry entity.HistoryEntry) error {
	if m.beforeCreate != nil {
		if err := m.beforeCreate(tr); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !tr.Forced {
		for _, cur := range m.transfers {
			if !cur.Forced && cur.Status == entity.TransferStatusPending && cur.DuplicateKey() == tr.DuplicateKey() {
				return goerror.ErrConflict
			}
		}
	}
	m.insert(tr)
	m.history = append(m.history, entry)
	return nil
}

func (m *memDB) insert(tr entity.TransferRequest) {
	m.transfers[tr.ID] = &tr
	m.order = append(m.order, tr.ID)
}

func (m *memDB) RecordResponse(_ context.Context, transferID int64, payload valueobject.JSONMap, entry entity.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recordErr != nil {
		return m.recordErr
	}
	tr, ok := m.transfers[transferID]
	if !ok || tr.Status != entity.TransferStatusProcessing {
		return goerror.ErrConflict
	}
	tr.ResponsePayload = payload
	m.history = append(m.history, entry)
	return nil
}

func (m *memDB) TransitionTransfer(_ context.Context, t entity.Transition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tr, ok := m.transfers[t.TransferID]
	if !ok {
		return goerror.ErrNotFound
	}

	allowed := false
	for _, from := range t.From {
		if from == tr.Status && from.CanTransitionTo(t.To) {
			allowed = true
		}
	}
	if !allowed {
		return goerror.ErrConflict
	}

	tr.Status = t.To
	tr.UpdatedAt = t.UpdatedAt
	if t.RequestPayload != nil {
		tr.RequestPayload = t.RequestPayload
	}
	if t.ErrorMessage != "" {
		tr.ErrorMessage = t.ErrorMessage
	}
	if !t.CompletedAt.IsZero() {
		tr.CompletedAt = t.CompletedAt
	}
	m.history = append(m.history, t.Entry)
	return nil
}

func (m *memDB) transfer(t *testing.T, id int64) entity.TransferRequest {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	tr, ok := m.transfers[id]
	if !ok {
		t.Fatalf("transfer %d not stored", id)
	}
	return *tr
}

func (m *memDB) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.transfers)
}

type fakeProvider struct {
	mu           sync.Mutex
	authenticate func(email, password string) (provider.Session, error)
	execute      func(token string, body provider.TransferBody) (*provider.Response, error)
	authCalls    int
	execCalls    int
	lastToken    string
	lastBody     provider.TransferBody
}

func (f *fakeProvider) Authenticate(_ context.Context, email, password string) (provider.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authCalls++
	return f.authenticate(email, password)
}

func (f *fakeProvider) ExecuteInternalTransfer(_ context.Context, token string, body provider.TransferBody) (*provider.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execCalls++
	f.lastToken, f.lastBody = token, body
	return f.execute(token, body)
}

type fakeOTP struct {
	generate func(secret string) (otp.Code, error)
	calls    int
}

func (f *fakeOTP) Generate(secret string) (otp.Code, error) {
	f.calls++
	return f.generate(secret)
}

func (f *fakeOTP) GenerateCode(secret string, _ time.Time) (string, error) {
	code, err := f.Generate(secret)
	return code.Value, err
}

type fakeMessaging struct {
	mu     sync.Mutex
	events []TransferStatusEvent
}

func (f *fakeMessaging) PublishTransferStatus(_ context.Context, msg TransferStatusEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, msg)
	return nil
}

type fakeArchive struct {
	mu   sync.Mutex
	docs []ArchiveDocument
}

func (f *fakeArchive) ArchiveTransfer(_ context.Context, doc ArchiveDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs = append(f.docs, doc)
	return nil
}

type fakeID struct {
	mu   sync.Mutex
	next int64
}

func (f *fakeID) Generate() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	return 1000 + f.next
}

// Accounts available in every fixture.
const (
	accPlain       int64 = 1 // no second factor
	acc2FA         int64 = 2 // second factor with secret on file
	accNoUID       int64 = 3 // no platform uid
	acc2FANoSecret int64 = 4
)

type fixture struct {
	uc        *Usecase
	clock     *clock.Manual
	db        *memDB
	provider  *fakeProvider
	otp       *fakeOTP
	messaging *fakeMessaging
	archive   *fakeArchive
	worker    *goroutine.Manager
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
		clock: clock.NewManual(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)),
		db: newMemDB(
			entity.Account{ID: accPlain, ExternalUserID: "u-1", Email: "one@corp.test", CredentialSecret: "pw1"},
			entity.Account{ID: acc2FA, ExternalUserID: "u-2", Email: "two@corp.test", CredentialSecret: "pw2",
				SecondFactorEnabled: true, SecondFactorSecret: "JBSWY3DPEHPK3PXP"},
			entity.Account{ID: accNoUID, Email: "three@corp.test", CredentialSecret: "pw3"},
			entity.Account{ID: acc2FANoSecret, ExternalUserID: "u-4", Email: "four@corp.test", CredentialSecret: "pw4",
				SecondFactorEnabled: true},
		),
		provider: &fakeProvider{
			authenticate: func(email, _ string) (provider.Session, error) {
				return provider.Session{Token: "tok-" + email}, nil
			},
			execute: func(string, provider.TransferBody) (*provider.Response, error) {
				raw := []byte(`{"success":true,"message":"transfer accepted","data":{"ref":"TRX-1"}}`)
				return &provider.Response{StatusCode: 200, Message: "transfer accepted", Data: []byte(`{"ref":"TRX-1"}`), Raw: raw}, nil
			},
		},
		otp: &fakeOTP{generate: func(string) (otp.Code, error) {
			return otp.Code{Value: "654321", RemainingSeconds: 20}, nil
		}},
		messaging: &fakeMessaging{},
		archive:   &fakeArchive{},
		worker:    goroutine.NewManager(8),
	}

	f.uc = New(Dependency{
		RepoDB:        f.db,
		RepoMessaging: f.messaging,
		RepoArchive:   f.archive,
		Provider:      f.provider,
		OTP:           f.otp,
		Validator:     v,
		Config:        cfg,
		Clock:         f.clock,
		UID:           &fakeID{},
		Instrument:    instrument.NewNoop(),
		Goroutine:     f.worker,
	})

	return f
}

func errorType(err error) goerror.Type {
	var gerr *goerror.Error
	if errors.As(err, &gerr) {
		return gerr.Type()
	}
	return -1
}
