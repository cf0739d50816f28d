// Package mailbox reads messages from an IMAP inbox over TLS.
//
// A Session is short-lived: dial, search once or a few times, close. The
// session is bound to the dial context; cancelling it tears the connection
// down so blocked protocol calls return.
package mailbox
