package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/telekom/mailshot/pkg/contacts"
	"github.com/telekom/mailshot/pkg/mailshot/output"
)

func NewPreviewCommand() *cobra.Command {
	var (
		src   sourceFlags
		limit int
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the contacts and the first email without sending anything",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			log := rt.Logger()
			w := rt.Writer()

			cfg := src.apply(*rt.cfg)
			if err := cfg.Validate(); err != nil {
				return &ExitError{Code: 1, Err: fmt.Errorf("invalid campaign %s: %w", rt.configPathValue(), err)}
			}
			composer, err := newComposer(cfg, log)
			if err != nil {
				return &ExitError{Code: 1, Err: err}
			}

			res := contactLoader(cfg, log)()
			output.WriteLoadReport(w, cfg.Source.Path, res)
			switch res.Status {
			case contacts.StatusConfigError:
				return &ExitError{Code: 1}
			case contacts.StatusEmpty:
				_, _ = fmt.Fprintln(w, "❌ No valid email addresses found. Please check your contact source.")
				return &ExitError{Code: 3}
			}

			_, _ = fmt.Fprintln(w, "\n📋 Contacts to email:")
			output.WriteContactPreview(w, res.Contacts, limit)

			first := res.Contacts[0]
			msg, notices, err := composer.Compose(first)
			if err != nil {
				return &ExitError{Code: 1, Err: err}
			}
			_, _ = fmt.Fprintf(w, "\n%s\n", output.Rule)
			_, _ = fmt.Fprintf(w, "From: %s <%s>\n", msg.From.Name, msg.From.Email)
			_, _ = fmt.Fprintf(w, "To: %s\n", msg.To)
			_, _ = fmt.Fprintf(w, "Subject: %s\n", msg.Subject)
			for _, a := range msg.Attachments {
				_, _ = fmt.Fprintf(w, "Attachment: %s (%s, %d bytes)\n", a.Filename, a.ContentType, len(a.Data))
			}
			for _, n := range notices {
				_, _ = fmt.Fprintf(w, "⚠️  %s\n", n.Message)
			}
			_, _ = fmt.Fprintf(w, "%s\n%s\n", output.Rule, strings.TrimRight(msg.Body, "\n"))
			return nil
		},
	}

	src.register(cmd.Flags())
	cmd.Flags().IntVar(&limit, "limit", output.PreviewLimit, "Number of contacts to list, 0 lists all")

	return cmd
}
