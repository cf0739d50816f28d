package inbound

import (
	"github.com/spf13/cobra"

	"github.com/shandysiswandi/gotransfer/internal/pkg/command"
)

func RegisterCommand(r *command.Router, uc uc) {
	end := &CLIEndpoint{uc: uc}
	g := r.Group("verification", "Request and read e-mailed verification codes")

	send := &cobra.Command{Use: "send", Short: "Ask the provider to e-mail a verification code", Args: cobra.NoArgs}
	send.Flags().String("email", "", "target e-mail address")
	send.Flags().String("type", "transfer", "verification code type")
	g.Handle(send, end.Send)

	fetch := &cobra.Command{Use: "fetch", Short: "Poll the mailbox for the code of the last send", Args: cobra.NoArgs}
	fetch.Flags().String("email", "", "target e-mail address")
	fetch.Flags().String("mailbox", "", "mailbox name or address hint")
	fetch.Flags().Int("retry-count", 1, "number of mailbox polls")
	fetch.Flags().Int("interval-seconds", 5, "seconds between polls")
	g.Handle(fetch, end.Fetch)

	mb := g.Group("mailbox", "Manage polled mailboxes")

	add := &cobra.Command{Use: "add", Short: "Register a mailbox", Args: cobra.NoArgs}
	add.Flags().String("name", "", "unique mailbox name")
	add.Flags().String("address", "", "mailbox e-mail address")
	add.Flags().String("host", "", "IMAP host")
	add.Flags().Int("port", 993, "IMAP TLS port")
	add.Flags().String("username", "", "IMAP username")
	add.Flags().String("password", "", "IMAP password")
	add.Flags().Bool("insecure-skip-verify", false, "accept self-signed certificates")
	mb.Handle(add, end.AddMailbox)

	list := &cobra.Command{Use: "list", Short: "List registered mailboxes", Args: cobra.NoArgs}
	mb.Handle(list, end.ListMailboxes)
}
