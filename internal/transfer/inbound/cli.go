package inbound

import (
	"github.com/spf13/cobra"

	"github.com/shandysiswandi/gotransfer/internal/pkg/command"
)

func RegisterCommand(r *command.Router, uc uc) {
	end := &CLIEndpoint{uc: uc}

	tr := r.Group("transfer", "Execute internal transfers and read their audit trail")

	execute := &cobra.Command{Use: "execute", Short: "Execute one internal transfer", Args: cobra.NoArgs}
	execute.Flags().Int64("account-id", 0, "source account id")
	execute.Flags().String("destination-kind", "uid", "uid, email or internal_account_id")
	execute.Flags().String("destination-value", "", "destination identifier")
	execute.Flags().String("amount", "", "decimal amount, up to 2 fraction digits")
	execute.Flags().String("source-tag", "", "origin label used for duplicate matching")
	execute.Flags().Bool("forced", false, "skip duplicate suppression")
	execute.Flags().String("remarks", "", "free-form note sent to the provider")
	execute.Flags().Bool("auto-2fa", false, "generate the second factor code from the stored secret")
	execute.Flags().String("code", "", "explicit second factor code")
	tr.Handle(execute, end.Execute)

	history := &cobra.Command{Use: "history <transfer-id>", Short: "Show a transfer and its history", Args: cobra.ExactArgs(1)}
	tr.Handle(history, end.History)

	sess := r.Group("session", "Inspect provider sessions")
	get := &cobra.Command{Use: "get <account-id>", Short: "Return a usable session token, refreshing it if needed", Args: cobra.ExactArgs(1)}
	sess.Handle(get, end.GetSession)

	totp := r.Group("totp", "Time-based one-time passwords")
	generate := &cobra.Command{Use: "generate <secret>", Short: "Generate the current code for a base32 secret", Args: cobra.ExactArgs(1)}
	totp.Handle(generate, end.GenerateTOTP)
	parse := &cobra.Command{Use: "parse <otpauth-uri>", Short: "Decode an otpauth URI", Args: cobra.ExactArgs(1)}
	totp.Handle(parse, end.ParseTOTPURI)
}
