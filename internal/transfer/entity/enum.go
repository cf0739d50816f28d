package entity

import "strings"

type TransferStatus int16

const (
	TransferStatusUnknown    TransferStatus = 0
	TransferStatusPending    TransferStatus = 1
	TransferStatusProcessing TransferStatus = 2
	TransferStatusCompleted  TransferStatus = 3
	TransferStatusFailed     TransferStatus = 4
)

func (s TransferStatus) String() string {
	switch s {
	case TransferStatusPending:
		return "pending"
	case TransferStatusProcessing:
		return "processing"
	case TransferStatusCompleted:
		return "completed"
	case TransferStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further transition is possible.
func (s TransferStatus) IsTerminal() bool {
	return s == TransferStatusCompleted || s == TransferStatusFailed
}

// CanTransitionTo allows pending→processing, processing→{completed,failed}
// and pending→failed. Nothing moves backwards or out of a terminal state.
func (s TransferStatus) CanTransitionTo(next TransferStatus) bool {
	switch s {
	case TransferStatusPending:
		return next == TransferStatusProcessing || next == TransferStatusFailed
	case TransferStatusProcessing:
		return next == TransferStatusCompleted || next == TransferStatusFailed
	default:
		return false
	}
}

// PreviousOf lists the statuses that may move to next.
func PreviousOf(next TransferStatus) []TransferStatus {
	var out []TransferStatus
	for _, s := range []TransferStatus{TransferStatusPending, TransferStatusProcessing} {
		if s.CanTransitionTo(next) {
			out = append(out, s)
		}
	}
	return out
}

type DestinationKind string

const (
	DestinationKindUID               DestinationKind = "uid"
	DestinationKindEmail             DestinationKind = "email"
	DestinationKindInternalAccountID DestinationKind = "internal_account_id"
)

func ParseDestinationKind(v string) DestinationKind {
	switch k := DestinationKind(strings.ToLower(strings.TrimSpace(v))); k {
	case DestinationKindUID, DestinationKindEmail, DestinationKindInternalAccountID:
		return k
	default:
		return ""
	}
}

// Outcome is the result of an execute call that reached a decision.
type Outcome string

const (
	OutcomeSuccess                 Outcome = "success"
	OutcomeRequiresSecondFactor    Outcome = "requires_second_factor"
	OutcomeDuplicate               Outcome = "duplicate"
	OutcomeAccountNotFound         Outcome = "account_not_found"
	OutcomeDestinationUnresolvable Outcome = "destination_unresolvable"
	OutcomeSecondFactorUnavailable Outcome = "second_factor_unavailable"
	OutcomeAuthenticationFailure   Outcome = "authentication_failure"
	OutcomeProviderRejected        Outcome = "provider_rejected"
	OutcomeTransportError          Outcome = "transport_error"
)

// Success is true only for OutcomeSuccess.
func (o Outcome) Success() bool {
	return o == OutcomeSuccess
}
