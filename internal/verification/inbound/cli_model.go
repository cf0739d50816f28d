package inbound

import (
	"strconv"

	"github.com/shandysiswandi/gotransfer/internal/verification/entity"
)

type SendResponse struct {
	Email  string `json:"email"`
	SentAt string `json:"sent_at"`
}

func (SendResponse) Message() string { return "verification code requested" }

type FetchResponse struct {
	Code     string `json:"code"`
	Mailbox  string `json:"mailbox,omitempty"`
	Attempts int    `json:"attempts"`
}

func (FetchResponse) Message() string { return "verification code found" }

// MailboxResponse never carries the mailbox password.
type MailboxResponse struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Address            string `json:"address"`
	Host               string `json:"host"`
	Port               int    `json:"port"`
	Username           string `json:"username"`
	InsecureSkipVerify bool   `json:"insecure_skip_verify"`
	Enabled            bool   `json:"enabled"`
}

func toMailboxResponse(mb entity.Mailbox) MailboxResponse {
	return MailboxResponse{
		ID:                 strconv.FormatInt(mb.ID, 10),
		Name:               mb.Name,
		Address:            mb.Address,
		Host:               mb.Host,
		Port:               mb.Port,
		Username:           mb.Username,
		InsecureSkipVerify: mb.InsecureSkipVerify,
		Enabled:            mb.Enabled,
	}
}
