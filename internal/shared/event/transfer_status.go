package event

import "time"

const TransferStatusDestination string = "transfer.status"

type TransferStatusMessage struct {
	TransferID   int64     `json:"transfer_id"`
	AccountID    int64     `json:"account_id"`
	Status       string    `json:"status"`
	Outcome      string    `json:"outcome"`
	Amount       string    `json:"amount"`
	SourceTag    string    `json:"source_tag"`
	ErrorMessage string    `json:"error_message,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}
