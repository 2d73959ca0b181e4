// Package cmd implements the cobra command tree of the mailshot CLI: sending
// and previewing campaigns, managing the campaign file and the SMTP
// credential, and shell completion.
package cmd
