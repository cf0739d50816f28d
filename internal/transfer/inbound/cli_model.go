package inbound

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/shandysiswandi/gotransfer/internal/transfer/entity"
	"github.com/shandysiswandi/gotransfer/internal/transfer/usecase"
)

const timeLayout = time.RFC3339

type ExecuteResponse struct {
	Outcome    string          `json:"outcome"`
	Detail     string          `json:"detail,omitempty"`
	TransferID string          `json:"transfer_id,omitempty"`
	Status     string          `json:"status,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
}

func (r ExecuteResponse) Message() string {
	if r.Outcome == string(entity.OutcomeSuccess) {
		return "transfer completed"
	}
	return "transfer not completed: " + r.Outcome
}

func toExecuteResponse(out usecase.ExecuteOutput) ExecuteResponse {
	resp := ExecuteResponse{
		Outcome: string(out.Outcome),
		Detail:  out.Message,
		Data:    out.Data,
	}
	if out.TransferID != 0 {
		resp.TransferID = strconv.FormatInt(out.TransferID, 10)
		resp.Status = out.Status.String()
	}
	return resp
}

type TransferResponse struct {
	ID                       string         `json:"id"`
	AccountID                string         `json:"account_id"`
	OriginalDestinationKind  string         `json:"original_destination_kind"`
	OriginalDestinationValue string         `json:"original_destination_value"`
	DestinationKind          string         `json:"destination_kind"`
	DestinationValue         string         `json:"destination_value"`
	Amount                   string         `json:"amount"`
	SourceTag                string         `json:"source_tag"`
	Forced                   bool           `json:"forced"`
	Status                   string         `json:"status"`
	Remarks                  string         `json:"remarks,omitempty"`
	RequestPayload           map[string]any `json:"request_payload,omitempty"`
	ResponsePayload          map[string]any `json:"response_payload,omitempty"`
	ErrorMessage             string         `json:"error_message,omitempty"`
	CreatedAt                string         `json:"created_at"`
	UpdatedAt                string         `json:"updated_at"`
	CompletedAt              string         `json:"completed_at,omitempty"`
}

type HistoryEntryResponse struct {
	ID        string         `json:"id"`
	Status    string         `json:"status"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details"`
	CreatedAt string         `json:"created_at"`
}

type HistoryResponse struct {
	Transfer TransferResponse       `json:"transfer"`
	Entries  []HistoryEntryResponse `json:"entries"`
}

func (HistoryResponse) Message() string { return "transfer history" }

func toHistoryResponse(out usecase.GetHistoryOutput) HistoryResponse {
	tr := out.Transfer
	resp := HistoryResponse{
		Transfer: TransferResponse{
			ID:                       strconv.FormatInt(tr.ID, 10),
			AccountID:                strconv.FormatInt(tr.AccountID, 10),
			OriginalDestinationKind:  string(tr.OriginalDestinationKind),
			OriginalDestinationValue: tr.OriginalDestinationValue,
			DestinationKind:          string(tr.DestinationKind),
			DestinationValue:         tr.DestinationValue,
			Amount:                   tr.Amount,
			SourceTag:                tr.SourceTag,
			Forced:                   tr.Forced,
			Status:                   tr.Status.String(),
			Remarks:                  tr.Remarks,
			RequestPayload:           tr.RequestPayload,
			ResponsePayload:          tr.ResponsePayload,
			ErrorMessage:             tr.ErrorMessage,
			CreatedAt:                tr.CreatedAt.Format(timeLayout),
			UpdatedAt:                tr.UpdatedAt.Format(timeLayout),
		},
		Entries: make([]HistoryEntryResponse, 0, len(out.Entries)),
	}
	if !tr.CompletedAt.IsZero() {
		resp.Transfer.CompletedAt = tr.CompletedAt.Format(timeLayout)
	}

	for _, e := range out.Entries {
		resp.Entries = append(resp.Entries, HistoryEntryResponse{
			ID:        strconv.FormatInt(e.ID, 10),
			Status:    e.Status.String(),
			Message:   e.Message,
			Details:   e.Details,
			CreatedAt: e.CreatedAt.Format(timeLayout),
		})
	}

	return resp
}

type SessionResponse struct {
	AccountID string `json:"account_id"`
	ExpiresAt string `json:"expires_at"`
	Refreshed bool   `json:"refreshed"`
}

func (SessionResponse) Message() string { return "session ready" }

func toSessionResponse(out usecase.GetSessionOutput) SessionResponse {
	return SessionResponse{
		AccountID: strconv.FormatInt(out.AccountID, 10),
		ExpiresAt: out.ExpiresAt.Format(timeLayout),
		Refreshed: out.Refreshed,
	}
}

type TOTPResponse struct {
	Code             string `json:"code"`
	RemainingSeconds int    `json:"remaining_seconds"`
}

func (TOTPResponse) Message() string { return "totp code generated" }

type TOTPURIResponse struct {
	Secret  string `json:"secret"`
	Issuer  string `json:"issuer,omitempty"`
	Account string `json:"account,omitempty"`
	Digits  int    `json:"digits"`
	Period  uint   `json:"period"`
}

func (TOTPURIResponse) Message() string { return "otpauth uri parsed" }
