package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/shandysiswandi/gotransfer/internal/pkg/goerror"
	"github.com/shandysiswandi/gotransfer/internal/pkg/valueobject"
	"github.com/shandysiswandi/gotransfer/internal/shared/provider"
	"github.com/shandysiswandi/gotransfer/internal/transfer/entity"
)

type ExecuteInput struct {
	AccountID        int64  `validate:"required,gt=0"`
	DestinationKind  string `validate:"required,oneof=uid email internal_account_id"`
	DestinationValue string `validate:"required,max=255"`
	Amount           string `validate:"required,amount"`
	SourceTag        string `validate:"max=64"`
	Forced           bool
	Remarks          string `validate:"max=255"`
	Auto2FA          bool
	Code             string `validate:"omitempty,numeric,max=12"`
}

type ExecuteOutput struct {
	Outcome entity.Outcome
	Message string
	// TransferID is the created request, or the pending one on a duplicate.
	// Zero when nothing was persisted.
	TransferID int64
	Status     entity.TransferStatus
	// Data is the provider payload when one was received.
	Data json.RawMessage
}

type destination struct {
	kind             entity.DestinationKind
	value            string
	matchedAccountID int64
}

// Execute runs one transfer end to end. Business results, including
// provider rejections, are reported through ExecuteOutput.Outcome; an error
// is returned only for invalid input or an infrastructure failure.
func (s *Usecase) Execute(ctx context.Context, in ExecuteInput) (*ExecuteOutput, error) {
	ctx, span := s.startSpan(ctx, "Execute")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	out, err := s.execute(ctx, in)
	if out != nil {
		span.SetAttributes(attribute.String("outcome", string(out.Outcome)), attribute.Int64("transfer_id", out.TransferID))
		if s.outcomes != nil {
			s.outcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(out.Outcome))))
		}
	}

	return out, err
}

func (s *Usecase) execute(ctx context.Context, in ExecuteInput) (*ExecuteOutput, error) {
	account, err := s.repoDB.GetAccount(ctx, in.AccountID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "transfer source account not found", "account_id", in.AccountID)
		return &ExecuteOutput{Outcome: entity.OutcomeAccountNotFound, Message: "account not found"}, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get account", "account_id", in.AccountID, "error", err)
		return nil, goerror.NewServer(err)
	}

	originalKind := entity.ParseDestinationKind(in.DestinationKind)
	originalValue := strings.TrimSpace(in.DestinationValue)

	dest, ok, err := s.resolveDestination(ctx, originalKind, originalValue)
	if err != nil {
		return nil, goerror.NewServer(err)
	}
	if !ok {
		return &ExecuteOutput{Outcome: entity.OutcomeDestinationUnresolvable, Message: "destination cannot be resolved to a platform user"}, nil
	}

	code, blocked := s.secondFactor(ctx, account, in)
	if blocked != nil {
		return blocked, nil
	}

	sourceTag := strings.TrimSpace(in.SourceTag)
	if sourceTag == "" {
		sourceTag = entity.DefaultSourceTag
	}

	now := s.clock.Now()
	tr := entity.TransferRequest{
		ID:                       s.uid.Generate(),
		AccountID:                account.ID,
		OriginalDestinationKind:  originalKind,
		OriginalDestinationValue: originalValue,
		DestinationKind:          dest.kind,
		DestinationValue:         dest.value,
		Amount:                   in.Amount,
		SourceTag:                sourceTag,
		Forced:                   in.Forced,
		Status:                   entity.TransferStatusPending,
		SecondFactorCode:         code,
		MatchedAccountID:         dest.matchedAccountID,
		Remarks:                  strings.TrimSpace(in.Remarks),
		CreatedAt:                now,
		UpdatedAt:                now,
	}
	key := tr.DuplicateKey()

	if !in.Forced {
		existing, err := s.repoDB.FindPendingTransfer(ctx, key)
		if err == nil {
			return duplicateOf(existing), nil
		}
		if !errors.Is(err, goerror.ErrNotFound) {
			slog.ErrorContext(ctx, "failed to repo find pending transfer", "account_id", account.ID, "error", err)
			return nil, goerror.NewServer(err)
		}
	}

	created := s.newEntry(tr.ID, entity.TransferStatusPending, entity.HistoryRequestCreated, valueobject.JSONMap{
		"original_destination_kind":  string(originalKind),
		"original_destination_value": originalValue,
		"destination_kind":           string(dest.kind),
		"destination_value":          dest.value,
		"matched_account_id":         dest.matchedAccountID,
		"amount":                     tr.Amount,
		"source_tag":                 sourceTag,
		"forced":                     in.Forced,
	})
	if err := s.repoDB.CreateTransfer(ctx, tr, created); err != nil {
		if errors.Is(err, goerror.ErrConflict) && !in.Forced {
			// lost the race against an identical submission
			existing, rErr := s.repoDB.FindPendingTransfer(ctx, key)
			if rErr == nil {
				return duplicateOf(existing), nil
			}
			slog.ErrorContext(ctx, "failed to repo re-read conflicting transfer", "account_id", account.ID, "error", rErr)
			return nil, goerror.NewServer(rErr)
		}
		slog.ErrorContext(ctx, "failed to repo create transfer", "account_id", account.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	out, err := s.submit(ctx, account, &tr)
	if err != nil {
		slog.ErrorContext(ctx, "transfer execution failed unexpectedly", "transfer_id", tr.ID, "error", err)
		s.cleanup(ctx, key, err)
		return nil, goerror.NewServer(err)
	}

	return out, nil
}

// submit covers everything after the request row exists. Any error it
// returns is unexpected and triggers cleanup.
func (s *Usecase) submit(ctx context.Context, account *entity.Account, tr *entity.TransferRequest) (*ExecuteOutput, error) {
	token, err := s.Session(ctx, account)
	if err != nil {
		var serr *entity.SessionError
		if !errors.As(err, &serr) {
			return nil, err
		}
		if err := s.finish(ctx, tr, entity.TransferStatusFailed, entity.OutcomeAuthenticationFailure, serr.Message,
			entity.HistoryAuthFailed, valueobject.JSONMap{"reason": serr.Reason.String(), "error": serr.Message}); err != nil {
			return nil, err
		}
		return &ExecuteOutput{Outcome: entity.OutcomeAuthenticationFailure, Message: serr.Message, TransferID: tr.ID, Status: tr.Status}, nil
	}

	body := provider.TransferBody{
		DestinationKind:  string(tr.DestinationKind),
		DestinationValue: tr.DestinationValue,
		Amount:           tr.Amount,
		Code:             tr.SecondFactorCode,
		Remarks:          tr.Remarks,
	}
	reqPayload, err := toJSONMap(body)
	if err != nil {
		return nil, err
	}

	if err := s.advance(ctx, tr, entity.Transition{
		To:             entity.TransferStatusProcessing,
		RequestPayload: reqPayload,
		Entry:          s.newEntry(tr.ID, entity.TransferStatusProcessing, entity.HistoryProcessing, valueobject.JSONMap{"request": map[string]any(reqPayload)}),
	}); err != nil {
		return nil, err
	}

	resp, callErr := s.provider.ExecuteInternalTransfer(ctx, token, body)

	// the provider may have moved money; the audit trail is written even
	// when the caller has gone away
	ctx = context.WithoutCancel(ctx)

	raw, statusCode := responseRaw(resp, callErr)
	payload := valueobject.FromRaw(raw)
	if len(raw) == 0 && callErr != nil {
		payload = valueobject.JSONMap{"error": errorDetail(callErr)}
	}

	if err := s.repoDB.RecordResponse(ctx, tr.ID, payload, s.newEntry(tr.ID, entity.TransferStatusProcessing,
		entity.HistoryResponseReceived, valueobject.JSONMap{"status_code": statusCode, "payload": map[string]any(payload)})); err != nil {
		slog.ErrorContext(ctx, "failed to repo record provider response", "transfer_id", tr.ID, "error", err)
		return nil, err
	}
	tr.ResponsePayload = payload

	if callErr == nil {
		if err := s.finish(ctx, tr, entity.TransferStatusCompleted, entity.OutcomeSuccess, "",
			entity.HistoryCompleted, valueobject.JSONMap{"message": resp.Message}); err != nil {
			return nil, err
		}
		return &ExecuteOutput{Outcome: entity.OutcomeSuccess, Message: resp.Message, TransferID: tr.ID, Status: tr.Status, Data: resp.Data}, nil
	}

	outcome, kind := providerOutcome(callErr)
	if kind == provider.KindUnauthorized {
		s.invalidateSession(ctx, account)
	}

	msg := errorDetail(callErr)
	slog.WarnContext(ctx, "provider did not complete transfer", "transfer_id", tr.ID, "outcome", string(outcome), "error", callErr)

	if err := s.finish(ctx, tr, entity.TransferStatusFailed, outcome, msg, entity.HistoryFailed,
		valueobject.JSONMap{"kind": kind.String(), "status_code": statusCode, "error": msg}); err != nil {
		return nil, err
	}

	out := &ExecuteOutput{Outcome: outcome, Message: msg, TransferID: tr.ID, Status: tr.Status}
	if json.Valid(raw) {
		out.Data = raw
	}
	return out, nil
}

// advance applies a non-terminal transition.
func (s *Usecase) advance(ctx context.Context, tr *entity.TransferRequest, t entity.Transition) error {
	if !tr.Status.CanTransitionTo(t.To) {
		return fmt.Errorf("transfer %d: illegal transition %s -> %s", tr.ID, tr.Status, t.To)
	}

	t.TransferID = tr.ID
	t.From = []entity.TransferStatus{tr.Status}
	t.UpdatedAt = s.clock.Now()

	if err := s.repoDB.TransitionTransfer(ctx, t); err != nil {
		slog.ErrorContext(ctx, "failed to repo transition transfer", "transfer_id", tr.ID, "to", t.To.String(), "error", err)
		return err
	}

	tr.Status = t.To
	tr.UpdatedAt = t.UpdatedAt
	if t.RequestPayload != nil {
		tr.RequestPayload = t.RequestPayload
	}

	return nil
}

// finish applies a terminal transition and schedules the status event and
// archive.
func (s *Usecase) finish(ctx context.Context, tr *entity.TransferRequest, to entity.TransferStatus, outcome entity.Outcome,
	errMsg, message string, details valueobject.JSONMap,
) error {
	t := entity.Transition{
		To:           to,
		ErrorMessage: errMsg,
		Entry:        s.newEntry(tr.ID, to, message, details),
	}
	if to == entity.TransferStatusCompleted {
		t.CompletedAt = s.clock.Now()
	}

	if err := s.advance(ctx, tr, t); err != nil {
		return err
	}

	tr.ErrorMessage = errMsg
	tr.CompletedAt = t.CompletedAt
	s.notify(ctx, *tr, outcome)

	return nil
}

// cleanup marks the most recent open request matching key as failed with
// cause. It runs detached from ctx cancellation and only logs its own errors.
func (s *Usecase) cleanup(ctx context.Context, key entity.DuplicateKey, cause error) {
	ctx = context.WithoutCancel(ctx)

	open, err := s.repoDB.FindLatestOpenTransfer(ctx, key)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "no open transfer left to clean up", "account_id", key.AccountID)
		return
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo find open transfer for cleanup", "account_id", key.AccountID, "error", err)
		return
	}

	now := s.clock.Now()
	if err := s.repoDB.TransitionTransfer(ctx, entity.Transition{
		TransferID:   open.ID,
		From:         entity.PreviousOf(entity.TransferStatusFailed),
		To:           entity.TransferStatusFailed,
		ErrorMessage: cause.Error(),
		UpdatedAt:    now,
		Entry:        s.newEntry(open.ID, entity.TransferStatusFailed, entity.HistoryCleanup, valueobject.JSONMap{"error": cause.Error()}),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo mark transfer failed during cleanup", "transfer_id", open.ID, "error", err)
		return
	}

	open.Status = entity.TransferStatusFailed
	open.ErrorMessage = cause.Error()
	open.UpdatedAt = now
	s.notify(ctx, *open, "")
}

func (s *Usecase) resolveDestination(ctx context.Context, kind entity.DestinationKind, value string) (destination, bool, error) {
	if kind != entity.DestinationKindInternalAccountID {
		return destination{kind: kind, value: value, matchedAccountID: s.annotateDestination(ctx, kind, value)}, true, nil
	}

	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		slog.WarnContext(ctx, "internal account destination is not an id", "value", value)
		return destination{}, false, nil
	}

	target, err := s.repoDB.GetAccount(ctx, id)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "destination account not found", "account_id", id)
		return destination{}, false, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get destination account", "account_id", id, "error", err)
		return destination{}, false, err
	}
	if target.ExternalUserID == "" {
		slog.WarnContext(ctx, "destination account has no platform uid", "account_id", id)
		return destination{}, false, nil
	}

	return destination{kind: entity.DestinationKindUID, value: target.ExternalUserID, matchedAccountID: target.ID}, true, nil
}

// annotateDestination returns the id of a same-system account behind a uid
// or e-mail destination, zero when there is none. Lookup errors never fail
// the transfer.
func (s *Usecase) annotateDestination(ctx context.Context, kind entity.DestinationKind, value string) int64 {
	var (
		account *entity.Account
		err     error
	)
	switch kind {
	case entity.DestinationKindUID:
		account, err = s.repoDB.GetAccountByExternalUserID(ctx, value)
	case entity.DestinationKindEmail:
		account, err = s.repoDB.GetAccountByEmail(ctx, value)
	default:
		return 0
	}

	if err != nil {
		if !errors.Is(err, goerror.ErrNotFound) {
			slog.WarnContext(ctx, "failed to repo annotate destination", "kind", string(kind), "error", err)
		}
		return 0
	}

	return account.ID
}

// secondFactor returns the code to send, or a non-nil output when the
// transfer must stop before anything is persisted.
func (s *Usecase) secondFactor(ctx context.Context, account *entity.Account, in ExecuteInput) (string, *ExecuteOutput) {
	if !account.SecondFactorEnabled {
		return "", nil
	}
	if code := strings.TrimSpace(in.Code); code != "" {
		return code, nil
	}
	if !in.Auto2FA {
		return "", &ExecuteOutput{Outcome: entity.OutcomeRequiresSecondFactor, Message: "second factor code required"}
	}
	if account.SecondFactorSecret == "" {
		slog.WarnContext(ctx, "second factor secret not on file", "account_id", account.ID)
		return "", &ExecuteOutput{Outcome: entity.OutcomeSecondFactorUnavailable, Message: "second factor secret not on file"}
	}

	code, err := s.otp.Generate(account.SecondFactorSecret)
	if err != nil {
		slog.WarnContext(ctx, "failed to generate second factor code", "account_id", account.ID, "error", err)
		return "", &ExecuteOutput{Outcome: entity.OutcomeSecondFactorUnavailable, Message: "second factor code cannot be generated"}
	}

	return code.Value, nil
}

func (s *Usecase) newEntry(transferID int64, status entity.TransferStatus, message string, details valueobject.JSONMap) entity.HistoryEntry {
	if details == nil {
		details = valueobject.JSONMap{}
	}
	return entity.HistoryEntry{
		ID:         s.uid.Generate(),
		TransferID: transferID,
		Status:     status,
		Message:    message,
		Details:    details,
		CreatedAt:  s.clock.Now(),
	}
}

func duplicateOf(existing *entity.TransferRequest) *ExecuteOutput {
	return &ExecuteOutput{
		Outcome:    entity.OutcomeDuplicate,
		Message:    "an identical transfer is already pending: " + strconv.FormatInt(existing.ID, 10),
		TransferID: existing.ID,
		Status:     existing.Status,
	}
}

func providerOutcome(err error) (entity.Outcome, provider.Kind) {
	pe, ok := provider.AsError(err)
	if !ok {
		return entity.OutcomeTransportError, provider.KindTransport
	}
	switch pe.Kind {
	case provider.KindUnauthorized, provider.KindRejected:
		return entity.OutcomeProviderRejected, pe.Kind
	default:
		return entity.OutcomeTransportError, pe.Kind
	}
}

// errorDetail prefers the provider message over the transport error.
func errorDetail(err error) string {
	if pe, ok := provider.AsError(err); ok {
		return pe.Detail()
	}
	return err.Error()
}

func responseRaw(resp *provider.Response, err error) ([]byte, int) {
	if resp != nil {
		return resp.Raw, resp.StatusCode
	}
	if pe, ok := provider.AsError(err); ok {
		return pe.Payload, pe.StatusCode
	}
	return nil, 0
}

func toJSONMap(v any) (valueobject.JSONMap, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return valueobject.FromRaw(raw), nil
}
