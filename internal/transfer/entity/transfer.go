package entity

import (
	"time"

	"github.com/shandysiswandi/gotransfer/internal/pkg/valueobject"
)

// DefaultSourceTag is used when the caller does not name a source.
const DefaultSourceTag = "manual"

// History messages, one per step of an execution.
const (
	HistoryRequestCreated   = "request created"
	HistoryAuthFailed       = "authentication failed"
	HistoryProcessing       = "processing"
	HistoryResponseReceived = "response received"
	HistoryCompleted        = "completed"
	HistoryFailed           = "failed"
	HistoryCleanup          = "marked failed after unexpected error"
)

type TransferRequest struct {
	ID                       int64
	AccountID                int64
	OriginalDestinationKind  DestinationKind
	OriginalDestinationValue string
	DestinationKind          DestinationKind
	DestinationValue         string
	Amount                   string
	SourceTag                string
	Forced                   bool
	Status                   TransferStatus
	SecondFactorCode         string
	// MatchedAccountID is the same-system account the destination points at,
	// zero when none was found. Audit only.
	MatchedAccountID int64
	Remarks          string
	RequestPayload   valueobject.JSONMap
	ResponsePayload  valueobject.JSONMap
	ErrorMessage     string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	CompletedAt      time.Time
}

// DuplicateKey returns the tuple duplicate suppression matches on.
func (t TransferRequest) DuplicateKey() DuplicateKey {
	return DuplicateKey{
		AccountID:        t.AccountID,
		DestinationKind:  t.DestinationKind,
		DestinationValue: t.DestinationValue,
		Amount:           t.Amount,
		SourceTag:        t.SourceTag,
	}
}

type DuplicateKey struct {
	AccountID        int64
	DestinationKind  DestinationKind
	DestinationValue string
	Amount           string
	SourceTag        string
}

// HistoryEntry is immutable once written.
type HistoryEntry struct {
	ID         int64
	TransferID int64
	Status     TransferStatus
	Message    string
	Details    valueobject.JSONMap
	CreatedAt  time.Time
}

// Transition moves a transfer to To, provided its current status is one of
// From, and appends Entry in the same unit of work. Zero-valued optional
// fields leave the stored columns untouched.
type Transition struct {
	TransferID     int64
	From           []TransferStatus
	To             TransferStatus
	RequestPayload valueobject.JSONMap
	ErrorMessage   string
	CompletedAt    time.Time
	UpdatedAt      time.Time
	Entry          HistoryEntry
}
